package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/models"
)

// IdentityKey is the gin context key holding the verified *models.Identity.
const IdentityKey = "identity"

// authTimingFloor is the minimum response time for rejected credentials, so
// timing does not distinguish unknown tokens from slow lookups.
const authTimingFloor = 50 * time.Millisecond

// IdentityVerifier turns a bearer credential into an identity.
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.Identity, error)
}

// truncateToken returns at most the first 4 characters of token followed by "...".
func truncateToken(token string) string {
	if len(token) > 4 {
		return token[:4] + "..."
	}
	return token
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware authenticates requests via Bearer token and stores the
// identity under IdentityKey. Role checks happen in the services.
// If a FailureTracker is provided, rejected credentials are counted against it.
func AuthMiddleware(verifier IdentityVerifier, log *logrus.Logger, guards ...FailureTracker) gin.HandlerFunc {
	var guard FailureTracker
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		token := ExtractBearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		id, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrUnauthenticated) {
				log.WithError(err).WithField("request_id", c.GetString(RequestIDKey)).Error("credential verification failed")
				respondError(c, http.StatusServiceUnavailable, "unavailable", "credential verification unavailable")
				return
			}

			logAuthFailure(log, c, token)

			if guard != nil {
				guard.RecordFailure(token)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid credential")
			return
		}

		if guard != nil {
			guard.Reset(token)
		}

		c.Set(IdentityKey, id)
		c.Next()
	}
}

// ExtractBearerToken extracts the credential from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// ActorFrom returns the verified identity plus request context for c.
// Without an identity the returned actor is anonymous.
func ActorFrom(c *gin.Context) models.Actor {
	actor := models.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(*models.Identity); ok && id != nil {
			actor.Identity = *id
		}
	}

	return actor
}

// logAuthFailure logs a rejected credential.
func logAuthFailure(log *logrus.Logger, c *gin.Context, token string) {
	log.WithFields(logrus.Fields{
		"client_ip":    c.ClientIP(),
		"method":       c.Request.Method,
		"path":         c.Request.URL.Path,
		"user_agent":   c.Request.UserAgent(),
		"request_id":   c.GetString(RequestIDKey),
		"token_prefix": truncateToken(token),
	}).Warn("authentication failed: invalid credential")
}
