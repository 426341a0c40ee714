package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/token/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

const (
	testSubject      = "user-1"
	testEmail        = "john.doe@example.com"
	testRefreshToken = "rt-0123456789abcdef"
	testSigningKey   = "test-signing-key"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// testFixture holds all test dependencies
type testFixture struct {
	storage *repofake.FakeStorage
	store   *token.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	storage := repofake.NewFakeStorage()
	store, err := token.NewStore(storage, testLogger(), token.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)

	return &testFixture{storage: storage, store: store}
}

func mintToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()

	if _, ok := claims["sub"]; !ok {
		claims["sub"] = testSubject
	}
	if _, ok := claims["email"]; !ok {
		claims["email"] = testEmail
	}
	if _, ok := claims["iat"]; !ok {
		claims["iat"] = testNow.Add(-time.Hour).Unix()
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return signed
}

func TestAccessTokenRoundTrip(t *testing.T) {
	f := setupTestFixture(t)

	accessToken := mintToken(t, jwtlib.MapClaims{
		"exp":         testNow.Add(time.Hour).Unix(),
		"role":        "admin",
		"permissions": []string{"pages:read", "pages:write"},
	})

	require.NoError(t, f.store.SetTokens(accessToken, testRefreshToken))

	got, err := f.store.AccessToken()
	require.NoError(t, err)
	require.Equal(t, accessToken, got)

	claims, err := f.store.DecodeClaims(got)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Equal(t, testEmail, claims.Email)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, []string{"pages:read", "pages:write"}, claims.Permissions)
	require.Equal(t, testNow.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	refreshToken, err := f.store.RefreshToken()
	require.NoError(t, err)
	require.Equal(t, testRefreshToken, refreshToken)
}

func TestAccessTokenMissing(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.AccessToken()
	require.ErrorIs(t, err, token.AccessTokenMissingErr)
}

func TestExpiredAccessTokenIsPurged(t *testing.T) {
	f := setupTestFixture(t)

	expired := mintToken(t, jwtlib.MapClaims{"exp": testNow.Add(-time.Minute).Unix()})
	require.NoError(t, f.store.SetTokens(expired, testRefreshToken))

	_, err := f.store.AccessToken()
	require.ErrorIs(t, err, token.AccessTokenExpiredErr)

	// The expired token was removed from storage, so a second read reports
	// it missing rather than expired.
	_, err = f.store.AccessToken()
	require.ErrorIs(t, err, token.AccessTokenMissingErr)

	// The refresh token survives the purge.
	_, err = f.store.RefreshToken()
	require.NoError(t, err)
}

func TestMalformedAccessTokenIsPurged(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.storage.Set("auth.access_token", "not-a-jwt"))

	_, err := f.store.AccessToken()
	require.ErrorIs(t, err, token.AccessTokenInvalidErr)

	_, err = f.store.AccessToken()
	require.ErrorIs(t, err, token.AccessTokenMissingErr)
}

func TestSetTokensRejectsPairAsAWhole(t *testing.T) {
	f := setupTestFixture(t)

	valid := mintToken(t, jwtlib.MapClaims{"exp": testNow.Add(time.Hour).Unix()})

	err := f.store.SetTokens("only.two", testRefreshToken)
	require.ErrorIs(t, err, token.InvalidAccessTokenFormatErr)
	require.Zero(t, f.storage.Len())

	err = f.store.SetTokens(valid, "has whitespace")
	require.ErrorIs(t, err, token.InvalidRefreshTokenFormatErr)
	require.Zero(t, f.storage.Len())
}

func TestShouldRefreshBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      bool
	}{
		{name: "inside renewal buffer", remaining: 299 * time.Second, want: true},
		{name: "exactly at renewal buffer", remaining: 300 * time.Second, want: true},
		{name: "just outside renewal buffer", remaining: 301 * time.Second, want: false},
		{name: "already expired", remaining: 0, want: false},
		{name: "far from expiry", remaining: time.Hour, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			accessToken := mintToken(t, jwtlib.MapClaims{"exp": testNow.Add(tc.remaining).Unix()})
			require.NoError(t, f.store.SetTokens(accessToken, testRefreshToken))
			require.Equal(t, tc.want, f.store.ShouldRefresh())
		})
	}
}

func TestRemainingLifetimeClamped(t *testing.T) {
	f := setupTestFixture(t)

	expired := mintToken(t, jwtlib.MapClaims{"exp": testNow.Add(-time.Hour).Unix()})
	require.Equal(t, time.Duration(0), f.store.RemainingLifetime(expired))
	require.Equal(t, time.Duration(0), f.store.RemainingLifetime("garbage"))

	live := mintToken(t, jwtlib.MapClaims{"exp": testNow.Add(90 * time.Second).Unix()})
	require.Equal(t, 90*time.Second, f.store.RemainingLifetime(live))
}

func TestDecodeClaimsRequiredFields(t *testing.T) {
	exp := testNow.Add(time.Hour).Unix()
	iat := testNow.Add(-time.Hour).Unix()

	tests := []struct {
		name    string
		claims  jwtlib.MapClaims
		wantErr error
	}{
		{name: "missing sub", claims: jwtlib.MapClaims{"sub": "", "exp": exp}, wantErr: token.MissingRequiredClaimsErr},
		{name: "missing email", claims: jwtlib.MapClaims{"email": "", "exp": exp}, wantErr: token.MissingRequiredClaimsErr},
		{name: "missing exp", claims: jwtlib.MapClaims{"iat": iat}, wantErr: token.MissingRequiredClaimsErr},
		{name: "expiry before issued-at", claims: jwtlib.MapClaims{"iat": exp, "exp": iat}, wantErr: token.DecodeFailedErr},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := token.DecodeClaims(mintToken(t, tc.claims))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("wrong segment count", func(t *testing.T) {
		_, err := token.DecodeClaims("one.two")
		require.ErrorIs(t, err, token.DecodeFailedErr)
	})
}

func TestRefreshTokenShape(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.RefreshToken()
	require.ErrorIs(t, err, token.RefreshTokenMissingErr)

	require.NoError(t, f.storage.Set("auth.refresh_token", "bad token"))
	_, err = f.store.RefreshToken()
	require.ErrorIs(t, err, token.RefreshTokenInvalidErr)
}

func TestClearSwallowsStorageFailures(t *testing.T) {
	f := setupTestFixture(t)

	accessToken := mintToken(t, jwtlib.MapClaims{"exp": testNow.Add(time.Hour).Unix()})
	require.NoError(t, f.store.SetTokens(accessToken, testRefreshToken))

	f.storage.FailWrites = true
	f.store.Clear() // must not panic or propagate

	f.storage.FailWrites = false
	f.store.Clear()
	require.Zero(t, f.storage.Len())
}
