package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/hellologin/internal/auth/provider"
	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// DefaultPendingTTL is how long an unmatched social identity stays
// available for registration.
const DefaultPendingTTL = 30 * time.Minute

// ExternalStrategy maps a provider assertion to a linked account.
type ExternalStrategy struct {
	name       Name
	kind       provider.Kind
	connector  provider.Connector
	users      repository.UserRepository
	pendingTTL time.Duration
	now        func() time.Time
}

// NewExternal builds the strategy for kind and intent.
func NewExternal(kind provider.Kind, intent Intent, conn provider.Connector, users repository.UserRepository, pendingTTL time.Duration) (*ExternalStrategy, error) {
	name, ok := ExternalName(kind, intent)
	if !ok {
		return nil, fmt.Errorf("strategy: unknown provider %q", kind)
	}
	if pendingTTL <= 0 {
		pendingTTL = DefaultPendingTTL
	}
	return &ExternalStrategy{
		name:       name,
		kind:       kind,
		connector:  conn,
		users:      users,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}, nil
}

func (s *ExternalStrategy) Name() Name                    { return s.name }
func (s *ExternalStrategy) Kind() provider.Kind           { return s.kind }
func (s *ExternalStrategy) Intent() Intent                { return s.name.Intent() }
func (s *ExternalStrategy) Connector() provider.Connector { return s.connector }

// Resolve looks up "<provider>://<id>". An unknown identity is rejected with
// a PendingRegistration; an empty id is rejected without one. If ctx ended
// while the lookup ran, the result is a Fault with no pending value.
func (s *ExternalStrategy) Resolve(ctx context.Context, creds Credentials) Outcome {
	a := creds.Assertion
	if a == nil || a.ProviderUserID == "" {
		return Rejected(ReasonMalformedAssertion, nil)
	}

	identifier := types.FormatExternalID(s.kind.Slug(), a.ProviderUserID)
	u, err := s.users.GetByExternalID(ctx, identifier)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Fault(ctxErr)
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return Rejected(ReasonNotLinked, &types.PendingRegistration{
			Provider:   s.kind.Slug(),
			Identifier: identifier,
			Profile:    a.Profile,
			ExpiresAt:  s.now().Add(s.pendingTTL),
		})
	case err != nil:
		return Fault(err)
	}
	return Authenticated(u)
}
