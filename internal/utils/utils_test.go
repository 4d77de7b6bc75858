package utils

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Password1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "Password1", hash)
	assert.True(t, CheckPasswordHash("Password1", hash))
	assert.False(t, CheckPasswordHash("Password2", hash))

	again, err := HashPassword("Password1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must differ per call")
	assert.Len(t, again, len(hash))
}

func TestRefreshTokenHash(t *testing.T) {
	h := HashRefreshToken("token-a")
	assert.Len(t, h, 64)
	assert.True(t, CompareRefreshTokenHash("token-a", h))
	assert.False(t, CompareRefreshTokenHash("token-b", h))
	assert.False(t, CompareRefreshTokenHash("token-a", ""))
}

func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 1000000)
	}

	_, err := GenerateNumericCode(0)
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	now := time.Now()
	tok, exp, err := GenerateJWT("acc-1", "secret", time.Minute, "issuer", "access", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), exp)

	claims, err := ParseAndValidateJWT(tok, "secret", "issuer", nil)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.Subject)
	assert.Equal(t, "access", claims.Class)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTFailures(t *testing.T) {
	now := time.Now()
	tok, _, err := GenerateJWT("acc-1", "secret", time.Minute, "issuer", "access", now)
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(tok, "other-secret", "issuer", nil)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	later := func() time.Time { return now.Add(2 * time.Minute) }
	_, err = ParseAndValidateJWT(tok, "secret", "issuer", later)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ParseAndValidateJWT("not-a-jwt", "secret", "issuer", nil)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)

	parts := strings.Split(tok, ".")
	_, err = ParseAndValidateJWT(parts[0]+"."+parts[1]+".", "secret", "issuer", nil)
	assert.Error(t, err)
}
