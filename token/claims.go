package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/pkg/errors"
)

// Claims is the decoded payload of an access token. Subject, Email, IssuedAt
// and ExpiresAt are required; a token missing any of them is structurally
// invalid. Role and Permissions are optional.
type Claims struct {
	Subject     string    // Users unique ID ("sub")
	Email       string    // "email"
	IssuedAt    time.Time // "iat"
	ExpiresAt   time.Time // "exp"
	Role        string    // "role", optional
	Permissions []string  // "permissions", optional
}

// Pair holds an access token and the refresh token that can mint its
// successor. The refresh token is never attached to outbound application
// requests; only the access token is.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// DecodeClaims validates the structural shape of a raw access token (three
// non-empty dot-separated segments) and decodes its claims payload. The
// signature is not verified here - the client trusts transport-level checks
// and the server's own verification; validity is structure plus expiry.
func DecodeClaims(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, errors.Wrap(DecodeFailedErr, "[DecodeClaims] token must have three segments")
	}
	for _, part := range parts {
		if part == "" {
			return nil, errors.Wrap(DecodeFailedErr, "[DecodeClaims] empty token segment")
		}
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(DecodeFailedErr, err.Error())
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(DecodeFailedErr, "[DecodeClaims] error extracting claims")
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)
	iat, iatOK := mapClaims["iat"].(float64)
	exp, expOK := mapClaims["exp"].(float64)

	if sub == "" {
		return nil, errors.Wrap(MissingRequiredClaimsErr, "[DecodeClaims] sub")
	}
	if email == "" {
		return nil, errors.Wrap(MissingRequiredClaimsErr, "[DecodeClaims] email")
	}
	if !iatOK {
		return nil, errors.Wrap(MissingRequiredClaimsErr, "[DecodeClaims] iat")
	}
	if !expOK {
		return nil, errors.Wrap(MissingRequiredClaimsErr, "[DecodeClaims] exp")
	}
	if int64(exp) <= int64(iat) {
		return nil, errors.Wrap(DecodeFailedErr, "[DecodeClaims] expiry not after issued-at")
	}

	role, _ := mapClaims["role"].(string)

	var permissions []string
	if claimPermissions, ok := mapClaims["permissions"].([]any); ok {
		permissions = utils.ToStringSlice(claimPermissions)
	}

	return &Claims{
		Subject:     sub,
		Email:       email,
		IssuedAt:    time.Unix(int64(iat), 0),
		ExpiresAt:   time.Unix(int64(exp), 0),
		Role:        role,
		Permissions: permissions,
	}, nil
}
