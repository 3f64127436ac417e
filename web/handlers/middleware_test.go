package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindredgraph/kindred/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_DevelopmentPassthrough(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Security.SecurityMode = "development"

	handler := RequireAuth(okHandler(), cfg)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/persons", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Production(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Security.SecurityMode = "production"
	cfg.Security.APIToken = "secret-token"

	handler := RequireAuth(okHandler(), cfg)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/persons", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing token")

	req := httptest.NewRequest(http.MethodGet, "/api/persons", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong token")

	req = httptest.NewRequest(http.MethodGet, "/api/persons", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "valid token")
}

func TestRequireAuth_ProductionWithoutToken(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Security.SecurityMode = "production"
	cfg.Security.APIToken = ""

	handler := RequireAuth(okHandler(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/persons", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code,
		"production without a configured token rejects everything")
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := RateLimitMiddleware(okHandler(), rl)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "burst exhausted")
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
}
