package session

import (
	"strings"

	"github.com/pkg/errors"
)

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Applied before validation and before transmission.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks login credentials locally before any network
// call. The email must already be normalized.
func ValidateCredentials(email, password string) error {
	if email == "" || password == "" {
		return MissingCredentialsErr
	}
	return ValidateEmail(email)
}

// ValidateEmail checks local-part@domain shape: exactly one '@', no
// embedded whitespace, and at least one '.' in the domain.
func ValidateEmail(email string) error {
	if strings.ContainsAny(email, " \t\r\n") {
		return errors.Wrap(InvalidEmailFormatErr, "[ValidateEmail] embedded whitespace")
	}
	if strings.Count(email, "@") != 1 {
		return errors.Wrap(InvalidEmailFormatErr, "[ValidateEmail] expected a single @")
	}

	at := strings.Index(email, "@")
	localPart, domain := email[:at], email[at+1:]
	if localPart == "" {
		return errors.Wrap(InvalidEmailFormatErr, "[ValidateEmail] empty local part")
	}
	if domain == "" || !strings.Contains(domain, ".") {
		return errors.Wrap(InvalidEmailFormatErr, "[ValidateEmail] domain must contain a dot")
	}
	return nil
}
