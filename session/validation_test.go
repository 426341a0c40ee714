package session_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/session"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "user@example.com", session.NormalizeEmail("  User@EXAMPLE.com\t"))
	require.Equal(t, "", session.NormalizeEmail("   "))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "plain address", email: "user@example.com", wantErr: false},
		{name: "subdomain", email: "a.b@mail.example.co.uk", wantErr: false},
		{name: "plus addressing", email: "user+tag@example.com", wantErr: false},
		{name: "no at sign", email: "userexample.com", wantErr: true},
		{name: "two at signs", email: "user@@example.com", wantErr: true},
		{name: "empty local part", email: "@example.com", wantErr: true},
		{name: "empty domain", email: "user@", wantErr: true},
		{name: "domain without dot", email: "user@localhost", wantErr: true},
		{name: "embedded space", email: "us er@example.com", wantErr: true},
		{name: "embedded tab", email: "user@exam\tple.com", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := session.ValidateEmail(tc.email)
			if tc.wantErr {
				require.ErrorIs(t, err, session.InvalidEmailFormatErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	require.NoError(t, session.ValidateCredentials("user@example.com", "secret1"))
	require.ErrorIs(t, session.ValidateCredentials("", "secret1"), session.MissingCredentialsErr)
	require.ErrorIs(t, session.ValidateCredentials("user@example.com", ""), session.MissingCredentialsErr)
	require.ErrorIs(t, session.ValidateCredentials("nope", "secret1"), session.InvalidEmailFormatErr)
}
