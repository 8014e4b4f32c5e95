package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/hellologin/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/hellologin/internal/http/errors"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	"github.com/dropDatabas3/hellologin/internal/session"
)

type MeController struct {
	sessions *session.Manager
}

func NewMeController(sessions *session.Manager) *MeController {
	return &MeController{sessions: sessions}
}

// Me returns the logged-in user. A token that no longer verifies is dropped
// from the session and treated as anonymous.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	u, err := c.sessions.User(sess)
	if err != nil {
		log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MeController.Me"))
		log.Warn("discarding unreadable identity", logger.Err(err))
		if err := c.sessions.Save(ctx, w, sess); err != nil {
			log.Error("session save failed", logger.Err(err))
		}
	}
	if u == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(u))
}
