package session

import "errors"

var (
	MissingCredentialsErr     = errors.New("missing credentials")
	InvalidEmailFormatErr     = errors.New("invalid email format")
	InvalidCredentialsErr     = errors.New("invalid credentials")
	TooManyAttemptsErr        = errors.New("too many login attempts")
	InvalidServerResponseErr  = errors.New("invalid server response")
	NetworkErr                = errors.New("network error")
	RefreshFailedErr          = errors.New("token refresh failed")
	AuthenticationRequiredErr = errors.New("authentication required")
	LogoutErr                 = errors.New("logout failed")
)
