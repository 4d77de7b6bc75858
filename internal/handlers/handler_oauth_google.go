package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
)

// GoogleOAuthHandler signs in accounts whose email Google has verified.
// It never creates accounts; the email must already be registered.
type GoogleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	sessionService     portssvc.SessionSvcFacade
	cookies            cookieWriter
	metrics            *middleware.Metrics
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade,
	sessionService portssvc.SessionSvcFacade,
	cookies cookieWriter,
	metrics *middleware.Metrics,
) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		googleOAuthService: googleOAuthService,
		sessionService:     sessionService,
		cookies:            cookies,
		metrics:            metrics,
	}
}

// ExchangeCodeGoogle godoc
// @Summary Sign in with a Google authorization code
// @Description Exchanges the code with Google, validates the returned ID token and starts a session for its email.
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body dto.GoogleCodeRequest true "Authorization code"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "Google sign-in not configured"
// @Router /users/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req dto.GoogleCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	oauth2Token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		logger.Warn("Google code exchange failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	idTokenString, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		respondError(c, apperrors.NewInternalServerError("Google did not return an ID token"))
		return
	}

	h.signInWithIDToken(c, idTokenString)
}

// SignInWithIDToken godoc
// @Summary Sign in with a Google ID token
// @Tags oauth
// @Accept json
// @Produce json
// @Param token body dto.GoogleIDTokenRequest true "Google ID token"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No account with this email"
// @Failure 503 {object} dto.ErrorResponse "Google sign-in not configured"
// @Router /users/google/id-token [post]
func (h *GoogleOAuthHandler) SignInWithIDToken(c *gin.Context) {
	var req dto.GoogleIDTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.signInWithIDToken(c, req.IDToken)
}

func (h *GoogleOAuthHandler) signInWithIDToken(c *gin.Context, idTokenString string) {
	ctx := c.Request.Context()

	payload, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		respondError(c, err)
		return
	}

	email, verified := verifiedEmail(payload)
	if email == "" {
		respondError(c, apperrors.NewUnauthorizedError("Google token carries no email"))
		return
	}
	if !verified {
		respondError(c, apperrors.NewUnauthorizedError("Google email is not verified"))
		return
	}

	session, err := h.sessionService.LoginWithVerifiedEmail(ctx, email)
	h.metrics.RecordAuthEvent("google_login", err)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.GetLoggerFromCtx(ctx).Info("User signed in with Google",
		slog.String("account_id", session.Account.AccountID), slog.String("google_user_id", payload.Subject))
	h.cookies.setSession(c, session.Tokens)
	respondSuccess(c, http.StatusOK, dto.ToLoginResponse(session), "User logged in successfully")
}

// verifiedEmail reads the email claims. A token without email_verified is
// treated as verified since Google omits it for Workspace accounts.
func verifiedEmail(payload *idtoken.Payload) (string, bool) {
	email, _ := payload.Claims["email"].(string)
	verified, present := payload.Claims["email_verified"].(bool)
	return email, verified || !present
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(users *gin.RouterGroup, h *GoogleOAuthHandler) {
	googleRoutes := users.Group("/google")
	{
		googleRoutes.POST("/exchange-code", h.ExchangeCodeGoogle)
		googleRoutes.POST("/id-token", h.SignInWithIDToken)
	}
}
