package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	"github.com/SscSPs/account_auth_service/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	clock := newFakeClock()
	svc := services.NewTokenService(testConfig(), services.WithTokenClock(clock.Now))

	pair, err := svc.IssueTokenPair(context.Background(), "account-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenClassAccess, pair.Access.Class)
	assert.Equal(t, domain.TokenClassRefresh, pair.Refresh.Class)
	assert.Equal(t, clock.Now().Add(15*time.Minute), pair.Access.ExpiresAt)

	id, err := svc.VerifyAccessToken(pair.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", id)

	id, err = svc.VerifyRefreshToken(pair.Refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", id)
}

func TestTokenService_TokensIssuedTogetherDiffer(t *testing.T) {
	svc := services.NewTokenService(testConfig(), services.WithTokenClock(newFakeClock().Now))

	a, err := svc.IssueAccessToken(context.Background(), "account-1")
	require.NoError(t, err)
	b, err := svc.IssueAccessToken(context.Background(), "account-1")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestTokenService_Expired(t *testing.T) {
	clock := newFakeClock()
	svc := services.NewTokenService(testConfig(), services.WithTokenClock(clock.Now))

	issued, err := svc.IssueAccessToken(context.Background(), "account-1")
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	_, err = svc.VerifyAccessToken(issued.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenService_WrongKeyOrTampered(t *testing.T) {
	clock := newFakeClock()
	svc := services.NewTokenService(testConfig(), services.WithTokenClock(clock.Now))

	pair, err := svc.IssueTokenPair(context.Background(), "account-1")
	require.NoError(t, err)

	// Refresh tokens are signed with their own secret.
	_, err = svc.VerifyAccessToken(pair.Refresh.Token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	parts := strings.Split(pair.Access.Token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)
	_, err = svc.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestTokenService_WrongClassWithSharedSecret(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshTokenSecret = cfg.JWTSecret
	svc := services.NewTokenService(cfg, services.WithTokenClock(newFakeClock().Now))

	refresh, err := svc.IssueRefreshToken(context.Background(), "account-1")
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(refresh.Token)
	assert.ErrorIs(t, err, apperrors.ErrMalformedToken)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := services.NewTokenService(testConfig())

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.VerifyAccessToken(raw)
		assert.ErrorIs(t, err, apperrors.ErrMalformedToken, raw)
	}
}

func TestPasswordHasher(t *testing.T) {
	hasher := services.NewPasswordHasher(4)

	digest, err := hasher.Hash(context.Background(), "password1")
	require.NoError(t, err)
	assert.True(t, hasher.Verify(context.Background(), "password1", digest))
	assert.False(t, hasher.Verify(context.Background(), "password2", digest))
	assert.False(t, hasher.Verify(context.Background(), "password1", ""))

	other, err := hasher.Hash(context.Background(), "password1")
	require.NoError(t, err)
	assert.NotEqual(t, digest, other)

	_, err = hasher.Hash(context.Background(), strings.Repeat("x", 73))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = hasher.Hash(ctx, "password1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOTPGenerator(t *testing.T) {
	gen := services.NewOTPGenerator()
	for i := 0; i < 50; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Len(t, code, services.OTPDigits)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
