// Package router mounts the controllers on a chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellologin/internal/auth/strategy"
	authctrl "github.com/dropDatabas3/hellologin/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/hellologin/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/hellologin/internal/http/errors"
	mw "github.com/dropDatabas3/hellologin/internal/http/middlewares"
	"github.com/dropDatabas3/hellologin/internal/rate"
	"github.com/dropDatabas3/hellologin/internal/session"
)

// Deps are the router's collaborators.
type Deps struct {
	Auth     *authctrl.Controllers
	Health   *healthctrl.HealthController
	Sessions *session.Manager
	// LoginLimiter throttles POST /login; nil disables it.
	LoginLimiter rate.Limiter
	// Metrics serves /metrics; nil leaves the route unmounted.
	Metrics http.Handler
	// TrustedProxies may set X-Forwarded-For; nil trusts nobody.
	TrustedProxies *mw.TrustedProxies
}

// New builds the HTTP handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", mw.Chain(d.Metrics, mw.WithNoStore()))
	}

	registerAuthRoutes(r, d)
	return r
}

// registerAuthRoutes registra las rutas de login, registro y sesión.
func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Auth

	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())

		// Logout deletes the session itself and must work without one.
		r.Get("/logout", c.Logout.Logout)
		r.Post("/logout", c.Logout.Logout)

		r.Group(func(r chi.Router) {
			r.Use(mw.WithSession(d.Sessions))

			// POST /login (rate limit por IP)
			r.With(mw.WithRateLimit(d.LoginLimiter, d.TrustedProxies.IPPathRateKey)).Post("/login", c.Login.Login)
			r.Get("/login/{provider}", c.Social.Start(strategy.IntentLogin))
			r.Get("/login/{provider}/return", c.Social.Return(strategy.IntentLogin))

			// Registro pendiente tras un login social sin cuenta vinculada
			r.Get("/register/pending", c.Register.Pending)
			r.Post("/register", c.Register.Register)
			r.Get("/register/{provider}", c.Social.Start(strategy.IntentRegister))
			r.Get("/register/{provider}/return", c.Social.Return(strategy.IntentRegister))

			r.Get("/me", c.Me.Me)
		})
	})
}
