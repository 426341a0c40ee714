// Package filestore is a file-backed implementation of token.Storage: a
// single JSON document under the data folder, written with 0600 perms.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const fileName = "tokens.json"

var _ token.Storage = (*Store)(nil)

// Store persists key-value pairs to a JSON file. Reads are served from an
// in-memory copy loaded at construction; every write rewrites the file.
type Store struct {
	path   string
	log    zerolog.Logger
	lock   sync.Mutex
	values map[string]string
}

// New loads (or creates) the store under the given data folder.
func New(dataFolder string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filestore.New] creating data folder")
	}

	store := &Store{
		path:   filepath.Join(dataFolder, fileName),
		log:    logger,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(store.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "[filestore.New] reading store file")
		}
		return store, nil
	}
	if err := json.Unmarshal(data, &store.values); err != nil {
		// A corrupt store file means the tokens are unusable anyway;
		// start fresh rather than failing construction.
		logger.Warn().Err(err).Str("path", store.path).Msg("discarding corrupt token store file")
		store.values = make(map[string]string)
	}
	return store, nil
}

func (s *Store) Get(key string) (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *Store) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
	return s.flush()
}

func (s *Store) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.values, key)
	return s.flush()
}

func (s *Store) flush() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return errors.Wrap(err, "[filestore.flush] marshal")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[filestore.flush] write")
	}
	return nil
}
