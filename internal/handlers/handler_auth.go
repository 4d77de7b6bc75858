package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"github.com/SscSPs/account_auth_service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration and the session lifecycle.
type AuthHandler struct {
	accountService portssvc.AccountSvcFacade
	sessionService portssvc.SessionSvcFacade
	cookies        cookieWriter
	metrics        *middleware.Metrics
	posthog        *utils.PosthogClientWrapper
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	accountService portssvc.AccountSvcFacade,
	sessionService portssvc.SessionSvcFacade,
	cfg *config.Config,
	metrics *middleware.Metrics,
	posthog *utils.PosthogClientWrapper,
) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		sessionService: sessionService,
		cookies:        newCookieWriter(cfg),
		metrics:        metrics,
		posthog:        posthog,
	}
}

// Register godoc
// @Summary Register new user
// @Description Creates a new account. Role must be admin, manager or user.
// @Tags users
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Registration info"
// @Success 201 {object} dto.APIResponse{data=dto.AccountResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), req)
	h.metrics.RecordAuthEvent("register", err)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackAccountEvent(c, h.posthog, account.AccountID, "account_registered")
	respondSuccess(c, http.StatusCreated, dto.ToAccountResponse(account), "User registered successfully")
}

// Login godoc
// @Summary User login
// @Description Verifies credentials, starts a session and sets the accessToken and refreshToken cookies.
// @Tags users
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.sessionService.Login(c.Request.Context(), req.Email, req.Password)
	h.metrics.RecordAuthEvent("login", err)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.setSession(c, session.Tokens)
	middleware.TrackAccountEvent(c, h.posthog, session.Account.AccountID, "account_logged_in")
	respondSuccess(c, http.StatusOK, dto.ToLoginResponse(session), "User logged in successfully")
}

// Refresh godoc
// @Summary Refresh session tokens
// @Description Exchanges the current refresh token (cookie or body) for a new token pair.
// @Tags users
// @Accept json
// @Produce json
// @Param refresh body dto.RefreshTokenRequest false "Refresh token, when not sent as a cookie"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(RefreshTokenCookie)
	if err != nil || token == "" {
		var req dto.RefreshTokenRequest
		// An empty body is fine here; the missing token is reported below.
		_ = c.ShouldBindJSON(&req)
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		respondError(c, apperrors.NewUnauthorizedError("Unauthorized request"))
		return
	}

	session, err := h.sessionService.Refresh(c.Request.Context(), token)
	h.metrics.RecordAuthEvent("refresh", err)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.setSession(c, session.Tokens)
	respondSuccess(c, http.StatusOK, dto.ToLoginResponse(session), "Access token refreshed")
}

// Logout godoc
// @Summary Log out
// @Description Ends the current session and clears both cookies. Calling it twice is fine.
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	err := h.sessionService.Logout(c.Request.Context(), userID)
	h.metrics.RecordAuthEvent("logout", err)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.clearSession(c)
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("User logged out", slog.String("account_id", userID))
	respondSuccess(c, http.StatusOK, nil, "User logged out")
}

func registerAuthRoutes(users *gin.RouterGroup, authenticated gin.HandlerFunc, h *AuthHandler, loginLimit gin.HandlerFunc) {
	users.POST("/register", h.Register)
	users.POST("/login", loginLimit, h.Login)
	users.POST("/refresh", h.Refresh)
	users.GET("/logout", authenticated, h.Logout)
}
