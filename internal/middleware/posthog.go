package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/account_auth_service/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// PosthogMiddleware tracks successful authenticated API calls with PostHog.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// Set by AuthMiddleware; anonymous calls are not tracked here.
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := RouteEventName(c.FullPath())
		if eventName == "" {
			return
		}

		posthogClient.Enqueue(userID, eventName, map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		})
	}
}

// RouteEventName turns a route path into an event name,
// e.g. "/api/v1/users/me" -> "api_v1_users_me".
func RouteEventName(fullPath string) string {
	eventName := strings.TrimPrefix(fullPath, "/")
	return strings.ReplaceAll(eventName, "/", "_")
}

// TrackAccountEvent sends a named event for accountID. Login and registration
// use it because the caller is not yet authenticated when the request starts.
func TrackAccountEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, accountID, eventName string) {
	if !posthogClient.IsInitialized() || accountID == "" {
		return
	}
	posthogClient.Enqueue(accountID, eventName, map[string]any{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	})
}
