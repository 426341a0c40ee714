// Package redisstore is a redis-backed implementation of token.Storage for
// headless/service deployments where the token pair must survive process
// restarts without local disk.
package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix      = "authclient:"
	defaultTimeout = 3 * time.Second
)

var _ token.Storage = (*Store)(nil)

// Store adapts a redis client to the synchronous token.Storage contract;
// each call runs under its own deadline.
type Store struct {
	client  *redis.Client
	log     zerolog.Logger
	timeout time.Duration
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithTimeout overrides the per-call deadline.
func WithTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = timeout
	}
}

// New initializes a Store over the given redis client.
func New(client *redis.Client, logger zerolog.Logger, options ...StoreOption) (*Store, error) {
	if client == nil {
		return nil, errors.New("[redisstore.New] redis client is required")
	}

	store := &Store{
		client:  client,
		log:     logger,
		timeout: defaultTimeout,
	}

	for _, opt := range options {
		opt(store)
	}

	return store, nil
}

func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := s.callContext()
	defer cancel()

	value, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		return "", false
	}
	return value, true
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := s.callContext()
	defer cancel()

	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Set]")
	}
	return nil
}

func (s *Store) Remove(key string) error {
	ctx, cancel := s.callContext()
	defer cancel()

	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Remove]")
	}
	return nil
}

func (s *Store) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
