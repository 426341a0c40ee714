// Package gatekeeper wraps an http.RoundTripper so every outbound request
// carries a valid bearer token and every 401 triggers one coordinated
// refresh-and-retry before the session is torn down.
package gatekeeper

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// DefaultAuthPathSuffixes lists the endpoints that never get a bearer token
// attached and whose 401s are never retried: they are the authentication
// flow itself.
var DefaultAuthPathSuffixes = []string{
	"/auth/login",
	"/auth/refresh",
	"/auth/logout",
	"/auth/register",
}

// DefaultLoginPath is where terminal authentication failures navigate to.
const DefaultLoginPath = "/login"

// Gatekeeper is an http.RoundTripper. Outbound, it attaches the current
// access token as a bearer credential; a request for which no valid token
// can be produced is sent without one, letting the server reject it through
// the normal 401 path rather than failing client-side on a stale local
// check. Inbound, a 401 on a non-auth endpoint is retried exactly once
// after a coordinated refresh.
type Gatekeeper struct {
	base         http.RoundTripper
	sessions     *session.Coordinator
	navigator    Navigator
	log          zerolog.Logger
	authSuffixes []string
	loginPath    string
}

// Option defines a function type to modify the Gatekeeper instance.
type Option func(*Gatekeeper)

// WithBase sets the wrapped transport (default http.DefaultTransport).
func WithBase(base http.RoundTripper) Option {
	return func(g *Gatekeeper) {
		g.base = base
	}
}

// WithAuthPathSuffixes overrides the auth endpoint allow-list.
func WithAuthPathSuffixes(suffixes []string) Option {
	return func(g *Gatekeeper) {
		g.authSuffixes = suffixes
	}
}

// WithLoginPath overrides the login entry point used for redirects.
func WithLoginPath(path string) Option {
	return func(g *Gatekeeper) {
		g.loginPath = path
	}
}

// New initializes a Gatekeeper around the session coordinator.
func New(sessions *session.Coordinator, navigator Navigator, logger zerolog.Logger, options ...Option) (*Gatekeeper, error) {
	if sessions == nil {
		return nil, errors.New("[gatekeeper.New] session coordinator is required")
	}
	if navigator == nil {
		navigator = NopNavigator{}
	}

	gatekeeper := &Gatekeeper{
		base:         http.DefaultTransport,
		sessions:     sessions,
		navigator:    navigator,
		log:          logger,
		authSuffixes: DefaultAuthPathSuffixes,
		loginPath:    DefaultLoginPath,
	}

	for _, opt := range options {
		opt(gatekeeper)
	}

	return gatekeeper, nil
}

// Client returns an *http.Client using the gatekeeper as its transport.
func (g *Gatekeeper) Client() *http.Client {
	return &http.Client{Transport: g}
}

// RoundTrip implements http.RoundTripper.
func (g *Gatekeeper) RoundTrip(req *http.Request) (*http.Response, error) {
	if g.isAuthPath(req.URL.Path) {
		return g.base.RoundTrip(req)
	}

	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	logger := g.log.With().Str("request_id", requestID).Str("path", req.URL.Path).Logger()

	outbound := req.Clone(req.Context())
	outbound.Header.Set(requestIDHeader, requestID)
	if accessToken, err := g.sessions.GetValidToken(req.Context()); err != nil {
		// Proceed without a credential and let the server decide; a
		// stale local check must not produce a false negative.
		logger.Debug().Err(err).Msg("no valid token available, sending request unauthenticated")
	} else {
		outbound.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := g.base.RoundTrip(outbound)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	retry, ok := g.rewind(req, requestID)
	if !ok {
		logger.Debug().Msg("401 response with non-replayable body, not retrying")
		return resp, nil
	}

	// One coordinated refresh, then one replay. Concurrent 401s during an
	// in-flight refresh are queued inside the coordinator and replayed
	// with the shared outcome.
	drain(resp)
	pair, refreshErr := g.sessions.Refresh(req.Context())
	if refreshErr != nil {
		logger.Debug().Err(refreshErr).Msg("refresh after 401 failed, tearing down session")
		g.teardown(req)
		return nil, fmt.Errorf("%w: %w", session.AuthenticationRequiredErr, refreshErr)
	}

	retry.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	retryResp, err := g.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	if retryResp.StatusCode == http.StatusUnauthorized {
		// A 401 on the already-retried request is terminal: no third
		// attempt.
		logger.Debug().Msg("401 after retry, tearing down session")
		g.teardown(req)
	}
	return retryResp, nil
}

// rewind builds a replayable copy of the original request. Requests with a
// consumed body and no GetBody cannot be retried.
func (g *Gatekeeper) rewind(req *http.Request, requestID string) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	retry.Header.Set(requestIDHeader, requestID)
	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

// teardown forces a full session teardown and navigates to the login entry
// point with the original destination preserved, unless already there.
func (g *Gatekeeper) teardown(req *http.Request) {
	if err := g.sessions.Logout(req.Context()); err != nil {
		g.log.Warn().Err(err).Msg("session teardown failed")
	}
	if g.navigator.CurrentPath() == g.loginPath {
		return
	}
	g.navigator.RedirectToLogin(req.URL.Path)
}

func (g *Gatekeeper) isAuthPath(path string) bool {
	for _, suffix := range g.authSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
