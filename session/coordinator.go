package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultValidityCacheTTL is how long a confirmed-valid access token is
// trusted without re-decoding it on the hot path.
const DefaultValidityCacheTTL = 30 * time.Second

// Coordinator orchestrates login, logout and refresh against the token
// store and the external credential endpoint. It owns the refresh lock and
// sequences every session state transition; all other components only read
// through it.
type Coordinator struct {
	tokens   *token.Store
	endpoint Endpoint
	log      zerolog.Logger
	nowTime  func() time.Time // nowTime function (injectable for testing)
	cacheTTL time.Duration

	lock refreshLock

	mu        sync.Mutex
	state     State
	listeners []Listener
	lastCheck time.Time
	lastToken string
}

// CoordinatorOption defines a function type to modify the Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.nowTime = nowFunc
	}
}

// WithValidityCacheTTL overrides how long a validity check is trusted.
func WithValidityCacheTTL(ttl time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.cacheTTL = ttl
	}
}

// NewCoordinator initializes a Coordinator with required dependencies.
func NewCoordinator(tokens *token.Store, endpoint Endpoint, logger zerolog.Logger, options ...CoordinatorOption) (*Coordinator, error) {
	if tokens == nil {
		return nil, errors.New("[NewCoordinator] token store is required")
	}
	if endpoint == nil {
		return nil, errors.New("[NewCoordinator] endpoint is required")
	}

	coordinator := &Coordinator{
		tokens:   tokens,
		endpoint: endpoint,
		log:      logger,
		nowTime:  time.Now,
		cacheTTL: DefaultValidityCacheTTL,
		state:    StateAnonymous,
	}

	for _, opt := range options {
		opt(coordinator)
	}

	return coordinator, nil
}

// AddListener registers a state transition listener. Listeners are called
// synchronously in registration order after each transition is applied.
func (c *Coordinator) AddListener(listener Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Restore validates whatever token pair survived the previous process and
// settles the initial state. Call once at startup.
func (c *Coordinator) Restore() *token.Claims {
	raw, err := c.tokens.AccessToken()
	if err != nil {
		c.transition(StateAnonymous, nil, nil)
		return nil
	}
	claims, err := token.DecodeClaims(raw)
	if err != nil {
		c.transition(StateAnonymous, nil, nil)
		return nil
	}
	c.markChecked(raw)
	c.transition(StateAuthenticated, claims, nil)
	return claims
}

// Login validates credentials locally, exchanges them at the endpoint and
// persists the resulting pair. Credential format failures resolve without a
// network round-trip.
func (c *Coordinator) Login(ctx context.Context, email, password string) (*token.Pair, error) {
	email = NormalizeEmail(email)
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	c.transition(StateAuthenticating, nil, nil)

	pair, err := c.endpoint.Login(ctx, email, password)
	if err != nil {
		err = mapLoginError(err)
		c.transition(StateAnonymous, nil, err)
		return nil, err
	}
	if pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		err := errors.Wrap(InvalidServerResponseErr, "[Login] token pair incomplete")
		c.transition(StateAnonymous, nil, err)
		return nil, err
	}

	if err := c.tokens.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		err = fmt.Errorf("%w: %w", InvalidServerResponseErr, err)
		c.transition(StateAnonymous, nil, err)
		return nil, err
	}

	c.markChecked(pair.AccessToken)
	claims, _ := token.DecodeClaims(pair.AccessToken)
	c.transition(StateAuthenticated, claims, nil)
	return pair, nil
}

// Logout invalidates the session server-side on a best-effort basis and
// then unconditionally clears local state. A failed or timed-out server
// call is logged and swallowed; the local teardown always runs.
func (c *Coordinator) Logout(ctx context.Context) error {
	if refreshToken, err := c.tokens.RefreshToken(); err == nil {
		if err := c.endpoint.Logout(ctx, refreshToken); err != nil {
			c.log.Warn().Err(errors.Wrap(LogoutErr, err.Error())).Msg("server-side logout failed, clearing local session anyway")
		}
	}

	// Terminal steps, regardless of server outcome.
	c.tokens.Clear()
	c.clearChecked()
	c.lock.reset()
	c.transition(StateAnonymous, nil, nil)
	return nil
}

// Refresh exchanges the stored refresh token for a new pair. Strictly
// single-flight: concurrent callers during an in-flight refresh are queued
// on the refresh lock and resolved from the one outcome without a second
// network call. Any failure clears both tokens - a broken refresh
// invalidates the whole session rather than leaving it half-valid.
func (c *Coordinator) Refresh(ctx context.Context) (*token.Pair, error) {
	leader, wait, gen := c.lock.begin()
	if !leader {
		select {
		case result := <-wait:
			return result.pair, result.err
		case <-ctx.Done():
			return nil, errors.Wrap(NetworkErr, ctx.Err().Error())
		}
	}

	c.transition(StateRefreshing, nil, nil)

	refreshToken, err := c.tokens.RefreshToken()
	if err != nil {
		return nil, c.failRefresh(gen, err)
	}

	pair, err := c.endpoint.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, c.failRefresh(gen, fmt.Errorf("%w: %w", RefreshFailedErr, err))
	}
	if pair == nil || pair.AccessToken == "" {
		return nil, c.failRefresh(gen, errors.Wrap(RefreshFailedErr, InvalidServerResponseErr.Error()))
	}
	// Rotation is optional server-side: keep the previous refresh token
	// when the response omits a new one.
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}

	if !c.lock.active(gen) {
		// A logout raced this refresh. Its cleared state wins and the
		// network response is abandoned.
		c.log.Debug().Msg("discarding refresh result that completed after logout")
		return nil, AuthenticationRequiredErr
	}

	if err := c.tokens.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, c.failRefresh(gen, fmt.Errorf("%w: %w", RefreshFailedErr, err))
	}

	c.markChecked(pair.AccessToken)
	claims, _ := token.DecodeClaims(pair.AccessToken)
	c.lock.complete(gen, pair, nil)
	c.transition(StateAuthenticated, claims, nil)
	return pair, nil
}

// GetValidToken is the hot path used before every outbound call. Normal
// expiry is an expected condition here, handled by a single refresh
// attempt; AuthenticationRequiredErr is the signal that re-login is needed.
func (c *Coordinator) GetValidToken(ctx context.Context) (string, error) {
	if raw, ok := c.cachedToken(); ok {
		return raw, nil
	}

	raw, err := c.tokens.AccessToken()
	if err == nil {
		if c.tokens.ShouldRefresh() {
			pair, refreshErr := c.Refresh(ctx)
			if refreshErr != nil {
				return "", fmt.Errorf("%w: %w", AuthenticationRequiredErr, refreshErr)
			}
			return pair.AccessToken, nil
		}
		c.markChecked(raw)
		return raw, nil
	}

	// Access token expired, invalid or missing: one refresh attempt if a
	// refresh token is on hand, otherwise re-login is required.
	if _, rtErr := c.tokens.RefreshToken(); rtErr != nil {
		return "", AuthenticationRequiredErr
	}
	pair, refreshErr := c.Refresh(ctx)
	if refreshErr != nil {
		return "", fmt.Errorf("%w: %w", AuthenticationRequiredErr, refreshErr)
	}
	return pair.AccessToken, nil
}

// IsAuthenticated reports whether a structurally valid, unexpired access
// token currently exists. It never triggers a refresh.
func (c *Coordinator) IsAuthenticated() bool {
	_, err := c.tokens.AccessToken()
	return err == nil
}

// CurrentUser decodes the current access token's claims without refreshing.
func (c *Coordinator) CurrentUser() (*token.Claims, error) {
	raw, err := c.tokens.AccessToken()
	if err != nil {
		return nil, err
	}
	return token.DecodeClaims(raw)
}

// failRefresh applies the fail-closed policy: clear both tokens, resolve
// queued waiters with the failure and settle back in StateAnonymous.
func (c *Coordinator) failRefresh(gen uint64, err error) error {
	c.tokens.Clear()
	c.clearChecked()
	c.lock.complete(gen, nil, err)
	c.transition(StateAnonymous, nil, err)
	return err
}

func (c *Coordinator) transition(state State, claims *token.Claims, err error) {
	c.mu.Lock()
	c.state = state
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	event := Event{State: state, Claims: claims, Err: err}
	for _, listener := range listeners {
		listener(event)
	}
}

func (c *Coordinator) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastToken == "" {
		return "", false
	}
	if c.nowTime().Sub(c.lastCheck) > c.cacheTTL {
		return "", false
	}
	return c.lastToken, true
}

func (c *Coordinator) markChecked(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastToken = raw
	c.lastCheck = c.nowTime()
}

func (c *Coordinator) clearChecked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastToken = ""
	c.lastCheck = time.Time{}
}

func mapLoginError(err error) error {
	switch {
	case HasStatus(err, http.StatusUnauthorized):
		return errors.Wrap(InvalidCredentialsErr, err.Error())
	case HasStatus(err, http.StatusTooManyRequests):
		return errors.Wrap(TooManyAttemptsErr, err.Error())
	default:
		return err
	}
}
