package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-market/internal/auth"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// RequireAuth is the single capability check for state-mutating endpoints:
// it verifies the bearer token and, when roles are given, requires the
// caller to hold one of them. On success the verified userID and role are
// attached to the request context.
func RequireAuth(verifier auth.Verifier, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid authorization header"), "authentication required")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "token expired"
			}
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", err, message)
			c.Abort()
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			utils.JSONError(c, http.StatusForbidden, "forbidden", errors.New("insufficient role"), "operation not permitted for role")
			utils.Warn("authorization denied", map[string]any{
				"user_id": claims.UserID,
				"role":    claims.Role,
				"path":    c.Request.URL.Path,
			})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
