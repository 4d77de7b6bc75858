package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie the access token is delivered in.
const AccessTokenCookie = "accessToken"

// AuthMiddleware creates a Gin middleware handler that resolves the access token
// to an account ID. The cookie is tried first; when it does not verify, a
// Bearer header on the same request is tried before giving up.
func AuthMiddleware(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		candidates := accessTokenCandidates(c)
		if len(candidates) == 0 {
			logger.Warn("Access token missing")
			abortUnauthorized(c, "Unauthorized request")
			return
		}

		var userID string
		var err error
		for _, tokenString := range candidates {
			if userID, err = verifier.VerifyAccessToken(tokenString); err == nil {
				break
			}
		}
		if err != nil {
			logger.Warn("Invalid access token", slog.String("error", err.Error()))
			abortUnauthorized(c, apperrors.FromError(err).Message)
			return
		}

		enrichedLogger := logger.With(slog.String("user_id", userID))
		ctx := WithLogger(WithUserID(c.Request.Context(), userID), enrichedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(userIDKey), userID)
		c.Set(string(loggerKey), enrichedLogger)

		c.Next()
	}
}

// accessTokenCandidates returns the cookie token and the Bearer token, in that order, when present.
func accessTokenCandidates(c *gin.Context) []string {
	var tokens []string
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		tokens = append(tokens, cookie)
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return tokens
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return tokens
	}
	return append(tokens, strings.TrimSpace(parts[1]))
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, apperrors.KindUnauthorized, msg))
}
