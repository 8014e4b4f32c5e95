package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/hellologin/internal/audit"
	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	dto "github.com/dropDatabas3/hellologin/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/hellologin/internal/http/errors"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	"github.com/dropDatabas3/hellologin/internal/security/password"
	"github.com/dropDatabas3/hellologin/internal/session"
	"github.com/dropDatabas3/hellologin/internal/util"
	"github.com/dropDatabas3/hellologin/internal/validation"
)

// RegisterController completes account creation for a social identity that
// matched no account.
type RegisterController struct {
	users      repository.UserRepository
	sessions   *session.Manager
	policy     password.Policy
	hashParams password.Params
}

func NewRegisterController(users repository.UserRepository, sessions *session.Manager, policy password.Policy, hashParams password.Params) *RegisterController {
	return &RegisterController{users: users, sessions: sessions, policy: policy, hashParams: hashParams}
}

// Pending handles GET /register/pending.
func (c *RegisterController) Pending(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}
	p := sess.Pending(c.sessions.Now())
	if p == nil {
		httperrors.WriteError(w, httperrors.ErrNoPendingRegistration)
		return
	}
	writeJSON(w, http.StatusOK, dto.PendingResponse{
		Provider:   p.Provider,
		Identifier: p.Identifier,
		Profile:    p.Profile,
		ExpiresAt:  p.ExpiresAt,
	})
}

// Register handles POST /register. The new account is linked to the pending
// external identifier and the caller is logged in.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	sess := session.FromContext(ctx)
	if sess == nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}
	pending := sess.Pending(c.sessions.Now())
	if pending == nil {
		httperrors.WriteError(w, httperrors.ErrNoPendingRegistration)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email is required"))
		return
	}
	if !validation.ValidEmail(req.Email) {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid email"))
		return
	}

	var hash string
	if req.Password != "" {
		if ok, reasons := c.policy.Validate(req.Password); !ok {
			httperrors.WriteError(w, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(reasons, ",")))
			return
		}
		h, err := password.Hash(c.hashParams, req.Password)
		if err != nil {
			log.Error("password hash failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
			return
		}
		hash = h
	}

	u, err := c.users.Create(ctx, repository.CreateUserInput{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Language:     req.Language,
		ExternalIDs:  []string{pending.Identifier},
	})
	switch {
	case errors.Is(err, repository.ErrConflict):
		httperrors.WriteError(w, httperrors.ErrAlreadyExists)
		return
	case errors.Is(err, repository.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithCause(err))
		return
	case err != nil:
		log.Error("user create failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		return
	}

	if err := c.sessions.Login(sess, u); err != nil {
		log.Error("session login failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}
	if err := c.sessions.Save(ctx, w, sess); err != nil {
		log.Error("session save failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		return
	}

	audit.Log(ctx, audit.EventRegister, logger.UserID(u.ID), logger.Provider(pending.Provider), logger.Email(util.MaskEmail(u.Email)))
	writeJSON(w, http.StatusCreated, dto.RegisterResponse{Success: true, User: dto.NewUserResponse(u)})
}
