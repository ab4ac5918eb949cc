package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnhub/auditkeeper/internal/middleware"
)

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	expected := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
		"Strict-Transport-Security":    "max-age=63072000; includeSubDomains",
		"Cross-Origin-Resource-Policy": "same-origin",
		"Cache-Control":                "no-store",
		"Pragma":                       "no-cache",
	}

	for header, want := range expected {
		got := w.Header().Get(header)
		if got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID(quietLogger()))

	var gotID, gotClient string
	r.GET("/test", func(c *gin.Context) {
		gotID = c.GetString(middleware.RequestIDKey)
		gotClient = c.GetString("client_request_id")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 200))
	r.ServeHTTP(w, req)

	if _, err := uuid.Parse(gotID); err != nil {
		t.Errorf("request id %q is not a UUID", gotID)
	}
	if w.Header().Get(middleware.RequestIDHeader) != gotID {
		t.Errorf("response header = %q, want %q", w.Header().Get(middleware.RequestIDHeader), gotID)
	}
	if len(gotClient) != 64 {
		t.Errorf("client request id length = %d, want 64", len(gotClient))
	}
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.Use(middleware.MaxBodySize(16))
	r.DELETE("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "within limit", body: `{"a":1}`, want: http.StatusOK},
		{name: "declared too large", body: strings.Repeat("a", 17), want: http.StatusRequestEntityTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/test", strings.NewReader(tc.body))
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
			if tc.want != http.StatusOK && !strings.Contains(w.Body.String(), "payload_too_large") {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}
