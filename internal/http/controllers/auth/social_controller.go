package auth

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/dropDatabas3/hellologin/internal/audit"
	"github.com/dropDatabas3/hellologin/internal/auth/provider"
	"github.com/dropDatabas3/hellologin/internal/auth/strategy"
	httperrors "github.com/dropDatabas3/hellologin/internal/http/errors"
	"github.com/dropDatabas3/hellologin/internal/metrics"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	tokens "github.com/dropDatabas3/hellologin/internal/security/token"
	"github.com/dropDatabas3/hellologin/internal/session"
)

// SocialController drives the provider redirect and return routes for both
// the login and register intents.
type SocialController struct {
	strategies *strategy.Registry
	sessions   *session.Manager
	stateTTL   time.Duration
}

func NewSocialController(strategies *strategy.Registry, sessions *session.Manager, stateTTL time.Duration) *SocialController {
	return &SocialController{strategies: strategies, sessions: sessions, stateTTL: stateTTL}
}

// Start returns the handler for GET /{intent}/{provider}.
func (c *SocialController) Start(intent strategy.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SocialController.Start"))

		ext, ok := c.lookup(r, intent)
		if !ok {
			httperrors.WriteError(w, httperrors.ErrUnknownProvider)
			return
		}
		sess := session.FromContext(ctx)
		if sess == nil {
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
			return
		}

		state, err := tokens.Opaque(24)
		if err != nil {
			log.Error("state generation failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
			return
		}
		verifier := oauth2.GenerateVerifier()
		sess.SetOAuth(&session.OAuthState{
			State:     state,
			Verifier:  verifier,
			Provider:  ext.Kind().Slug(),
			Intent:    intent.String(),
			ExpiresAt: c.sessions.Now().Add(c.stateTTL),
		})
		if err := c.sessions.Save(ctx, w, sess); err != nil {
			log.Error("session save failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
			return
		}

		log.Debug("redirecting to provider", logger.Provider(ext.Kind().Slug()), logger.String("intent", intent.String()))
		http.Redirect(w, r, ext.Connector().AuthCodeURL(state, verifier), http.StatusFound)
	}
}

// Return returns the handler for GET /{intent}/{provider}/return.
//
// Success establishes the session and redirects to "/". A login failure
// redirects to /login?fail=<Provider>, a register failure to /register.
// A rejected unknown identity leaves its pending registration in the session.
func (c *SocialController) Return(intent strategy.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SocialController.Return"))

		ext, ok := c.lookup(r, intent)
		if !ok {
			httperrors.WriteError(w, httperrors.ErrUnknownProvider)
			return
		}
		sess := session.FromContext(ctx)
		if sess == nil {
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
			return
		}
		log = log.With(logger.Provider(ext.Kind().Slug()), logger.Strategy(ext.Name().String()))
		failure := failureURL(ext.Kind(), intent)

		// The state is consumed here; only a saved session makes that stick.
		st := sess.TakeOAuth(c.sessions.Now())

		out := c.exchange(r, ext, st)
		if out.IsFault() {
			log.Error("provider return failed", logger.Err(out.Err()))
			// Nothing from a faulted attempt is persisted, so the state
			// stays usable until it expires.
			http.Redirect(w, r, failure, http.StatusFound)
			return
		}

		dest := "/"
		if out.IsAuthenticated() {
			if err := c.sessions.Login(sess, out.User()); err != nil {
				log.Error("session login failed", logger.Err(err))
				http.Redirect(w, r, failure, http.StatusFound)
				return
			}
		} else {
			if p := out.Pending(); p != nil {
				sess.SetPending(p)
			}
			dest = failure
		}

		if err := c.sessions.Save(ctx, w, sess); err != nil {
			log.Error("session save failed", logger.Err(err))
			dest = failure
		} else if out.IsAuthenticated() {
			audit.Log(ctx, audit.EventLogin, logger.UserID(out.User().ID), logger.Strategy(ext.Name().String()))
		}
		http.Redirect(w, r, dest, http.StatusFound)
	}
}

// exchange validates the callback, trades the code for an assertion and
// resolves it. Callback problems and codes the provider refuses are
// rejections; other exchange errors are faults.
func (c *SocialController) exchange(r *http.Request, ext *strategy.ExternalStrategy, st *session.OAuthState) strategy.Outcome {
	ctx := r.Context()
	q := r.URL.Query()

	reject := func(reason strategy.Reason) strategy.Outcome {
		out := strategy.Rejected(reason, nil)
		metrics.RecordAuthAttempt(ext.Name().String(), out.Label())
		logger.From(ctx).Info("provider callback rejected",
			logger.Strategy(ext.Name().String()),
			logger.Reason(string(reason)),
		)
		return out
	}

	if q.Get("error") != "" {
		return reject(strategy.ReasonProviderDenied)
	}
	if st == nil || st.State == "" || q.Get("state") != st.State ||
		st.Provider != ext.Kind().Slug() || st.Intent != ext.Intent().String() {
		return reject(strategy.ReasonStateMismatch)
	}
	code := q.Get("code")
	if code == "" {
		return reject(strategy.ReasonProviderDenied)
	}

	assertion, err := ext.Connector().Exchange(ctx, code, st.Verifier)
	if errors.Is(err, provider.ErrCodeRejected) {
		return reject(strategy.ReasonProviderDenied)
	}
	if err != nil {
		metrics.RecordAuthAttempt(ext.Name().String(), "fault")
		return strategy.Fault(err)
	}
	return strategy.Resolve(ctx, ext, strategy.Credentials{Assertion: assertion})
}

func (c *SocialController) lookup(r *http.Request, intent strategy.Intent) (*strategy.ExternalStrategy, bool) {
	kind, ok := provider.ParseKind(chi.URLParam(r, "provider"))
	if !ok {
		return nil, false
	}
	return c.strategies.External(kind, intent)
}

func failureURL(kind provider.Kind, intent strategy.Intent) string {
	if intent == strategy.IntentRegister {
		return "/register"
	}
	return "/login?" + url.Values{"fail": {kind.Title()}}.Encode()
}
