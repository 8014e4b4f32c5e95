package auth

import (
	"net/http"

	"github.com/dropDatabas3/hellologin/internal/audit"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	"github.com/dropDatabas3/hellologin/internal/session"
)

type LogoutController struct {
	sessions *session.Manager
}

func NewLogoutController(sessions *session.Manager) *LogoutController {
	return &LogoutController{sessions: sessions}
}

// Logout deletes the caller's session and expires the cookie. It always
// answers 204, also when there is no session.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := c.sessions.Destroy(ctx, w, r); err != nil {
		logger.From(ctx).Warn("session destroy failed",
			logger.Layer("controller"), logger.Op("LogoutController.Logout"), logger.Err(err))
	} else {
		audit.Log(ctx, audit.EventLogout)
	}
	w.WriteHeader(http.StatusNoContent)
}
