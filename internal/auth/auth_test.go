package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(4)

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, hasher.Compare(hash, "correct horse"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong horse"), ErrPasswordMismatch)
}

func TestPasswordHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).cost)
}

func TestTokensIssueAndVerify(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	signed, expiresAt, err := tokens.Issue("user-1", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestTokensRejectExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	signed, _, err := tokens.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	tokens.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectForeignSecret(t *testing.T) {
	signed, _, err := NewTokens("other", time.Hour).Issue("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectUnsignedToken(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectGarbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
