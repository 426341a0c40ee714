// Package authapi is the HTTP client for the credential/token endpoint.
// It implements session.Endpoint: transport failures surface as
// session.NetworkErr, malformed bodies as session.InvalidServerResponseErr
// and non-2xx statuses as *session.StatusError.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Auth endpoint paths, relative to the base URL.
const (
	RouteLogin   = "/auth/login"
	RouteRefresh = "/auth/refresh"
	RouteLogout  = "/auth/logout"
)

const defaultTimeout = 15 * time.Second

var _ session.Endpoint = (*Client)(nil)

// Client talks to the authentication server's credential endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying *http.Client (transport
// timeouts are its concern).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient initializes a Client against the given base URL.
func NewClient(baseURL string, logger zerolog.Logger, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewClient] base URL is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logger,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*token.Pair, error) {
	body, err := c.post(ctx, RouteLogin, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	pair, err := decodeTokenPair(body)
	if err != nil {
		return nil, errors.Wrap(err, "[Login]")
	}
	if pair.RefreshToken == "" {
		return nil, errors.Wrap(session.InvalidServerResponseErr, "[Login] response missing refreshToken")
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The response may omit
// the refresh token when the server does not rotate it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	body, err := c.post(ctx, RouteRefresh, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	pair, err := decodeTokenPair(body)
	if err != nil {
		return nil, errors.Wrap(err, "[Refresh]")
	}
	return pair, nil
}

// Logout asks the server to invalidate the refresh token. Best-effort from
// the coordinator's point of view; any 2xx is success.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	_, err := c.post(ctx, RouteLogout, logoutRequest{RefreshToken: refreshToken})
	return err
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(session.InvalidServerResponseErr, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return nil, errors.Wrap(session.NetworkErr, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("auth endpoint call failed")
		return nil, errors.Wrap(session.NetworkErr, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(session.NetworkErr, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &session.StatusError{Code: resp.StatusCode}
	}
	return body, nil
}

func decodeTokenPair(body []byte) (*token.Pair, error) {
	var response tokenPairResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(session.InvalidServerResponseErr, err.Error())
	}
	if response.AccessToken == "" {
		return nil, errors.Wrap(session.InvalidServerResponseErr, "response missing accessToken")
	}
	return &token.Pair{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
	}, nil
}
