package strategy

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/security/password"
)

// Strategy resolves credentials into an Outcome.
type Strategy interface {
	Name() Name
	Resolve(ctx context.Context, creds Credentials) Outcome
}

// dummyHash is verified against when there is no real hash, so unknown
// accounts cost the same KDF work as known ones.
var dummyHash = sync.OnceValue(func() string {
	h, err := password.Hash(password.Default, "hellologin-dummy-password")
	if err != nil {
		return ""
	}
	return h
})

// LocalStrategy checks an email and password against the directory.
type LocalStrategy struct {
	users  repository.UserRepository
	verify func(plain, stored string) bool
}

// NewLocal returns the password strategy.
func NewLocal(users repository.UserRepository) *LocalStrategy {
	return &LocalStrategy{users: users, verify: password.Verify}
}

func (s *LocalStrategy) Name() Name { return Local }

// Resolve authenticates only when the account exists, has a password hash
// and the password verifies. Every other negative is ReasonInvalidCredentials.
func (s *LocalStrategy) Resolve(ctx context.Context, creds Credentials) Outcome {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return Rejected(ReasonInvalidCredentials, nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Fault(ctxErr)
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.verify(creds.Password, dummyHash())
		return Rejected(ReasonInvalidCredentials, nil)
	case err != nil:
		return Fault(err)
	}

	if u.PasswordHash == "" {
		s.verify(creds.Password, dummyHash())
		return Rejected(ReasonInvalidCredentials, nil)
	}
	if !s.verify(creds.Password, u.PasswordHash) {
		return Rejected(ReasonInvalidCredentials, nil)
	}
	return Authenticated(u)
}
