package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestGoogleOAuth_DisabledWithoutClientID(t *testing.T) {
	svc := NewGoogleOAuthHandlerService(&config.Config{})
	require.False(t, svc.Enabled())

	_, err := svc.ExchangeCodeForToken(context.Background(), "code")
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.FromError(err).Code)

	_, err = svc.ValidateGoogleIDToken(context.Background(), "token")
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.FromError(err).Code)
}

func TestGoogleOAuth_ValidateUsesClientIDAsAudience(t *testing.T) {
	svc := NewGoogleOAuthHandlerService(&config.Config{GoogleClientID: "client-123"}).(*googleOAuthHandlerService)
	var gotAudience string
	svc.validate = func(_ context.Context, idToken, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		if idToken != "good" {
			return nil, errors.New("idtoken: invalid token")
		}
		return &idtoken.Payload{Subject: "sub-1", Claims: map[string]any{"email": "a@example.com"}}, nil
	}

	payload, err := svc.ValidateGoogleIDToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "client-123", gotAudience)
	assert.Equal(t, "sub-1", payload.Subject)

	_, err = svc.ValidateGoogleIDToken(context.Background(), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, apperrors.FromError(err).Code)
}
