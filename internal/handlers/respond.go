package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondSuccess writes the success envelope.
func respondSuccess(c *gin.Context, status int, data any, message string) {
	c.JSON(status, dto.NewAPIResponse(status, data, message))
}

// respondError maps err onto the error envelope. Server-side failures are
// logged with their cause; the client only sees the message.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromContext(c)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Request cancelled", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse(http.StatusServiceUnavailable, apperrors.KindServiceUnavailable, "Request was cancelled"))
		return
	}

	appErr := apperrors.FromError(err)
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Request rejected", slog.String("kind", appErr.Kind), slog.String("message", appErr.Message))
	}
	c.AbortWithStatusJSON(appErr.Code, dto.NewErrorResponse(appErr.Code, appErr.Kind, appErr.Message))
}

// respondBindError reports a malformed or incomplete request body.
func respondBindError(c *gin.Context, err error) {
	msg := "Invalid request body"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			msg = fe.Field() + " is required"
		case "email":
			msg = fe.Field() + " must be a valid email address"
		default:
			msg = fe.Field() + " is invalid"
		}
	}
	middleware.GetLoggerFromContext(c).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, apperrors.KindValidation, msg))
}

// requireUserID returns the authenticated account ID or answers 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.NewUnauthorizedError("Unauthorized request"))
		return "", false
	}
	return userID, true
}
