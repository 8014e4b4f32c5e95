package auth

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/dropDatabas3/hellologin/internal/audit"
	"github.com/dropDatabas3/hellologin/internal/auth/strategy"
	dto "github.com/dropDatabas3/hellologin/internal/http/dto/auth"
	"github.com/dropDatabas3/hellologin/internal/i18n"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	"github.com/dropDatabas3/hellologin/internal/session"
	"github.com/dropDatabas3/hellologin/internal/util"
)

// LoginController handles POST /login.
type LoginController struct {
	strategies  *strategy.Registry
	sessions    *session.Manager
	defaultLang *i18n.Language
}

func NewLoginController(strategies *strategy.Registry, sessions *session.Manager, defaultLang *i18n.Language) *LoginController {
	return &LoginController{strategies: strategies, sessions: sessions, defaultLang: defaultLang}
}

// Login answers with exactly one of:
//
//	200 {"success": true}       credentials verified, session established
//	401 {"error": "Login failed"} expected rejection
//	500 {"error": "Login error"}  fault
//
// Messages are localized from Accept-Language.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))
	lang := i18n.Negotiate(r.Header.Get("Accept-Language"), c.defaultLang)

	fault := func() {
		writeJSON(w, http.StatusInternalServerError, dto.LoginError{Error: i18n.T(lang, i18n.MsgLoginError)})
	}

	sess := session.FromContext(ctx)
	local, ok := c.strategies.Get(strategy.Local)
	if sess == nil || !ok {
		log.Error("login handler misconfigured", logger.Bool("session", sess != nil), logger.Bool("strategy", ok))
		fault()
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10)
	req := parseLoginRequest(r)

	out := strategy.Resolve(ctx, local, strategy.Credentials{Email: req.Email, Password: req.Password})
	switch {
	case out.IsFault():
		fault()
		return
	case out.IsRejected():
		log.Debug("login rejected", logger.Email(util.MaskEmail(req.Email)))
		writeJSON(w, http.StatusUnauthorized, dto.LoginError{Error: i18n.T(lang, i18n.MsgLoginFailed)})
		return
	}

	if err := c.sessions.Login(sess, out.User()); err != nil {
		log.Error("session login failed", logger.Err(err))
		fault()
		return
	}
	if err := c.sessions.Save(ctx, w, sess); err != nil {
		log.Error("session save failed", logger.Err(err))
		fault()
		return
	}
	audit.Log(ctx, audit.EventLogin, logger.UserID(out.User().ID), logger.Strategy(strategy.Local.String()))
	writeJSON(w, http.StatusOK, dto.LoginSuccess{Success: true})
}

// parseLoginRequest reads a JSON or form body. An unreadable body yields
// empty credentials, which the strategy rejects.
func parseLoginRequest(r *http.Request) dto.LoginRequest {
	var req dto.LoginRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		_ = json.NewDecoder(r.Body).Decode(&req)
		return req
	}
	if err := r.ParseForm(); err == nil {
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	}
	return req
}
