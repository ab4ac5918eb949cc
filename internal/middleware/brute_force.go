package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FailureTracker is the lockout surface the auth middleware consults.
// *security.CredentialGuard satisfies it.
type FailureTracker interface {
	IsBlocked(credential string) bool
	RecordFailure(credential string)
	Reset(credential string)
}

// BruteForceMiddleware rejects requests whose bearer credential is locked out.
func BruteForceMiddleware(guard FailureTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		if guard.IsBlocked(token) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		c.Next()
	}
}
