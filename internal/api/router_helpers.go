package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/middleware"
	"github.com/learnhub/auditkeeper/internal/models"
)

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if actor := middleware.ActorFrom(c); actor.Subject != "" {
			fields["actor"] = actor.Name()
		}
		log.WithFields(fields).Info("request")
	}
}

// reservedQueryKeys are request parameters that are not log filters.
var reservedQueryKeys = map[string]bool{
	"category":  true,
	"page":      true,
	"page_size": true,
}

// filtersFromQuery collects every non-reserved query parameter as a filter.
// Repeated keys keep their first value.
func filtersFromQuery(c *gin.Context) models.FilterSpec {
	f := make(models.FilterSpec)
	for k, vs := range c.Request.URL.Query() {
		if reservedQueryKeys[k] || len(vs) == 0 {
			continue
		}
		f[k] = vs[0]
	}

	return f
}

// parsePage reads page and page_size; bad values fall back to the defaults.
func parsePage(c *gin.Context) models.PageRequest {
	return models.PageRequest{
		Page:     parseInt(c.Query("page")),
		PageSize: parseInt(c.Query("page_size")),
	}.Normalize()
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}

	return v
}
