package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// PasswordHandler handles the password change and reset flows.
type PasswordHandler struct {
	accountService portssvc.AccountSvcFacade
	sessionService portssvc.SessionSvcFacade
	metrics        *middleware.Metrics
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(accountService portssvc.AccountSvcFacade, sessionService portssvc.SessionSvcFacade, metrics *middleware.Metrics) *PasswordHandler {
	return &PasswordHandler{accountService: accountService, sessionService: sessionService, metrics: metrics}
}

// RequestReset godoc
// @Summary Request a password-reset code
// @Description Mails a 6-digit one-time code to the account's address.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Account email"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Mail could not be delivered"
// @Router /users/changePassword [post]
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.sessionService.RequestPasswordReset(c.Request.Context(), req.Email)
	h.metrics.RecordAuthEvent("password_reset_request", err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "OTP sent successfully")
}

// ConfirmReset godoc
// @Summary Confirm a password reset
// @Description Consumes the mailed code and sets the new password.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.ConfirmPasswordResetRequest true "Email, code and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired code"
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/updatePassword [post]
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req dto.ConfirmPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.sessionService.ConfirmPasswordReset(c.Request.Context(), req.Email, req.OTPCode, req.NewPassword)
	h.metrics.RecordAuthEvent("password_reset_confirm", err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "Password updated successfully")
}

// ChangePassword godoc
// @Summary Change password while logged in
// @Description Replaces the caller's password after checking the old one. The email must be the caller's own.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Email, old and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/changePasswordAfterUserLogin [put]
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	caller, err := h.accountService.GetAccountByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if email := domain.NormalizeIdentifier(req.Email); email != "" && email != caller.Email {
		middleware.GetLoggerFromCtx(ctx).Warn("Password change rejected: email belongs to another account", slog.String("account_id", userID))
		respondError(c, apperrors.NewForbiddenError("You can only change your own password"))
		return
	}

	err = h.sessionService.ChangePassword(ctx, req.Email, req.OldPassword, req.NewPassword)
	h.metrics.RecordAuthEvent("password_change", err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "Password changed successfully")
}

func registerPasswordRoutes(users *gin.RouterGroup, authenticated gin.HandlerFunc, h *PasswordHandler, resetLimit gin.HandlerFunc) {
	users.POST("/changePassword", resetLimit, h.RequestReset)
	users.POST("/updatePassword", h.ConfirmReset)
	users.PUT("/changePasswordAfterUserLogin", authenticated, h.ChangePassword)
}
