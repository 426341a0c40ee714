package token

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Storage keys for the persisted token pair.
const (
	accessTokenKey  = "auth.access_token"
	refreshTokenKey = "auth.refresh_token"
)

// DefaultRenewalBuffer is the window before expiry during which a proactive
// refresh is triggered.
const DefaultRenewalBuffer = 300 * time.Second

// Store owns the persisted token pair: parsing, validation, expiry
// computation and removal. It is the only component that decodes token
// bytes; everything else goes through its accessors.
type Store struct {
	storage       Storage
	renewalBuffer time.Duration
	log           zerolog.Logger
	nowTime       func() time.Time // nowTime function (injectable for testing)
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithRenewalBuffer overrides the proactive-renewal window.
func WithRenewalBuffer(buffer time.Duration) StoreOption {
	return func(s *Store) {
		s.renewalBuffer = buffer
	}
}

// NewStore initializes a Store over the given storage backend.
func NewStore(storage Storage, logger zerolog.Logger, options ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, errors.New("[NewStore] storage is required")
	}

	store := &Store{
		storage:       storage,
		renewalBuffer: DefaultRenewalBuffer,
		log:           logger,
		nowTime:       time.Now,
	}

	for _, opt := range options {
		opt(store)
	}

	return store, nil
}

// AccessToken returns the stored access token after validating structure and
// expiry. Structurally invalid or expired tokens are purged from storage
// before the failure is returned, so a follow-up call reports the token as
// missing rather than invalid.
func (s *Store) AccessToken() (string, error) {
	raw, ok := s.storage.Get(accessTokenKey)
	if !ok || raw == "" {
		return "", AccessTokenMissingErr
	}

	claims, err := DecodeClaims(raw)
	if err != nil {
		s.purge(accessTokenKey)
		return "", errors.Wrap(AccessTokenInvalidErr, err.Error())
	}

	if !claims.ExpiresAt.After(s.nowTime()) {
		s.purge(accessTokenKey)
		return "", AccessTokenExpiredErr
	}

	return raw, nil
}

// RefreshToken returns the stored refresh token after a shape check only;
// refresh tokens are opaque to this layer beyond basic structure.
func (s *Store) RefreshToken() (string, error) {
	raw, ok := s.storage.Get(refreshTokenKey)
	if !ok || raw == "" {
		return "", RefreshTokenMissingErr
	}

	if err := validateRefreshTokenShape(raw); err != nil {
		return "", errors.Wrap(RefreshTokenInvalidErr, err.Error())
	}

	return raw, nil
}

// SetTokens persists a token pair. The pair is rejected as a whole if either
// token fails structural validation; there is never a partial write.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	if _, err := DecodeClaims(accessToken); err != nil {
		return errors.Wrap(InvalidAccessTokenFormatErr, err.Error())
	}
	if err := validateRefreshTokenShape(refreshToken); err != nil {
		return errors.Wrap(InvalidRefreshTokenFormatErr, err.Error())
	}

	if err := s.storage.Set(accessTokenKey, accessToken); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist access token")
	}
	if err := s.storage.Set(refreshTokenKey, refreshToken); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist refresh token")
	}
	return nil
}

// DecodeClaims decodes the claims of the given raw token.
func (s *Store) DecodeClaims(raw string) (*Claims, error) {
	return DecodeClaims(raw)
}

// ShouldRefresh reports whether a valid, non-expired access token exists
// whose remaining lifetime is within the renewal buffer. An already-expired
// token returns false; that condition is handled by a different path.
func (s *Store) ShouldRefresh() bool {
	raw, err := s.AccessToken()
	if err != nil {
		return false
	}
	remaining := s.RemainingLifetime(raw)
	return remaining > 0 && remaining <= s.renewalBuffer
}

// RemainingLifetime returns the time until the token expires, clamped to
// zero for expired or undecodable tokens.
func (s *Store) RemainingLifetime(raw string) time.Duration {
	claims, err := DecodeClaims(raw)
	if err != nil {
		return 0
	}
	remaining := claims.ExpiresAt.Sub(s.nowTime())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clear unconditionally erases both tokens. Storage errors are logged, not
// propagated - the tokens are presumed gone either way.
func (s *Store) Clear() {
	s.purge(accessTokenKey)
	s.purge(refreshTokenKey)
}

func (s *Store) purge(key string) {
	if err := s.storage.Remove(key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to remove token from storage")
	}
}

func validateRefreshTokenShape(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("refresh token is empty")
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return errors.New("refresh token contains whitespace")
	}
	return nil
}
