package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	signed, err := tokens.Issue("Tutor@Example.com", "Tutor")
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "tutor@example.com", claims.Email)
	require.Equal(t, "Tutor", claims.Name)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenExpired(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, err := tokens.Issue("student@example.com", "")
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsBadInput(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	other := NewTokenService("other-secret", time.Hour)

	foreign, err := other.Issue("student@example.com", "")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "student@example.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":       "",
		"malformed":     "not-a-token",
		"bad signature": foreign,
		"alg none":      none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = tokens.Issue("  ", "")
	require.Equal(t, KindValidation, KindOf(err))
}
