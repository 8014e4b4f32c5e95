package middlewares

import (
	"net/http"

	httperrors "github.com/dropDatabas3/hellologin/internal/http/errors"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	"github.com/dropDatabas3/hellologin/internal/session"
)

// WithSession loads the caller's session into the context. When the
// session store is down the request fails with 503.
func WithSession(m *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Load(r.Context(), r)
			if err != nil {
				logger.From(r.Context()).Error("session load failed", logger.Layer("middleware"), logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.ToContext(r.Context(), s)))
		})
	}
}
