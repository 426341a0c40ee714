package token

import "errors"

var (
	AccessTokenMissingErr        = errors.New("access token missing")
	AccessTokenInvalidErr        = errors.New("access token invalid")
	AccessTokenExpiredErr        = errors.New("access token expired")
	RefreshTokenMissingErr       = errors.New("refresh token missing")
	RefreshTokenInvalidErr       = errors.New("refresh token invalid")
	InvalidAccessTokenFormatErr  = errors.New("invalid access token format")
	InvalidRefreshTokenFormatErr = errors.New("invalid refresh token format")
	DecodeFailedErr              = errors.New("token decode failed")
	MissingRequiredClaimsErr     = errors.New("token missing required claims")
)
