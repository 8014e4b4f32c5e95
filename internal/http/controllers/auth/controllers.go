// Package auth contains the login, social, registration and logout handlers.
package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/hellologin/internal/auth/strategy"
	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/i18n"
	"github.com/dropDatabas3/hellologin/internal/security/password"
	"github.com/dropDatabas3/hellologin/internal/session"
)

// Deps are the collaborators shared by the auth controllers.
type Deps struct {
	Strategies      *strategy.Registry
	Sessions        *session.Manager
	Users           repository.UserRepository
	PasswordPolicy  password.Policy
	HashParams      password.Params
	DefaultLanguage *i18n.Language
	OAuthStateTTL   time.Duration
}

// Controllers groups the auth controllers.
type Controllers struct {
	Login    *LoginController
	Social   *SocialController
	Register *RegisterController
	Logout   *LogoutController
	Me       *MeController
}

// NewControllers wires every controller from d.
func NewControllers(d Deps) *Controllers {
	if d.OAuthStateTTL <= 0 {
		d.OAuthStateTTL = 10 * time.Minute
	}
	if d.HashParams == (password.Params{}) {
		d.HashParams = password.Default
	}
	return &Controllers{
		Login:    NewLoginController(d.Strategies, d.Sessions, d.DefaultLanguage),
		Social:   NewSocialController(d.Strategies, d.Sessions, d.OAuthStateTTL),
		Register: NewRegisterController(d.Users, d.Sessions, d.PasswordPolicy, d.HashParams),
		Logout:   NewLogoutController(d.Sessions),
		Me:       NewMeController(d.Sessions),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
