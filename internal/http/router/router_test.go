package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellologin/internal/auth/strategy"
	"github.com/dropDatabas3/hellologin/internal/cache"
	authctrl "github.com/dropDatabas3/hellologin/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/hellologin/internal/http/controllers/health"
	"github.com/dropDatabas3/hellologin/internal/metrics"
	"github.com/dropDatabas3/hellologin/internal/rate"
	"github.com/dropDatabas3/hellologin/internal/session"
	"github.com/dropDatabas3/hellologin/internal/store/adapters/memory"
)

func newHandler(t *testing.T, limit int) http.Handler {
	t.Helper()
	users := memory.New()
	reg, err := strategy.NewRegistry(strategy.Config{Users: users, BaseURL: "http://localhost"})
	require.NoError(t, err)

	c := cache.NewMemory("test", time.Minute)
	sessions := session.NewManager(c, session.NewBridge([]byte("router-test-key-0123456789abcdef"), time.Hour), session.Config{})

	metricsHandler, err := metrics.Register(prometheus.NewRegistry())
	require.NoError(t, err)

	return New(Deps{
		Auth:         authctrl.NewControllers(authctrl.Deps{Strategies: reg, Sessions: sessions, Users: users}),
		Health:       healthctrl.NewHealthController(map[string]healthctrl.Pinger{"cache": c}, nil),
		Sessions:     sessions,
		LoginLimiter: rate.NewMemoryLimiter(limit, time.Minute),
		Metrics:      metricsHandler,
	})
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "203.0.113.7:4321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(context.Background()))
	return rec
}

func TestRouter_Basics(t *testing.T) {
	h := newHandler(t, 10)

	rec := serve(h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(h, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")

	rec = serve(h, http.MethodDelete, "/login", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(h, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	// No provider is configured.
	rec = serve(h, http.MethodGet, "/login/google", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	h := newHandler(t, 2)
	body := `{"email":"a@b.com","password":"x"}`

	for i := 0; i < 2; i++ {
		rec := serve(h, http.MethodPost, "/login", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := serve(h, http.MethodPost, "/login", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
