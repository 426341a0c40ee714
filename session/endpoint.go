package session

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
)

// Endpoint is the external credential/token endpoint the coordinator talks
// to. Implementations wrap transport failures in NetworkErr, malformed
// bodies in InvalidServerResponseErr, and non-2xx statuses in *StatusError.
type Endpoint interface {
	Login(ctx context.Context, email, password string) (*token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (*token.Pair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// StatusError carries the HTTP status of a rejected endpoint call so the
// coordinator can map it into the error taxonomy (401, 429, ...).
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Code)
}

// HasStatus reports whether err's chain contains a StatusError with the
// given HTTP status code.
func HasStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}
