package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
	"github.com/dropDatabas3/hellologin/internal/metrics"
)

// DefaultLookupTimeout bounds a single directory lookup.
const DefaultLookupTimeout = 3 * time.Second

// ErrLookupTimeout is returned when the backend does not answer within the
// lookup timeout. It also matches context.DeadlineExceeded.
var ErrLookupTimeout = errors.New("store: lookup timed out")

// Guarded wraps a UserRepository with a per-lookup timeout and collapses
// concurrent identical lookups into one backend call.
//
// The shared call runs detached from any single caller: a caller whose
// context ends stops waiting and gets ctx.Err(), while the other waiters
// still receive the result. Nothing is retried.
type Guarded struct {
	next    repository.UserRepository
	timeout time.Duration
	sf      singleflight.Group
}

var _ repository.UserRepository = (*Guarded)(nil)

// NewGuarded wraps next. A non-positive timeout uses DefaultLookupTimeout.
func NewGuarded(next repository.UserRepository, timeout time.Duration) *Guarded {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Guarded{next: next, timeout: timeout}
}

func (g *Guarded) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	key := "email:" + strings.ToLower(strings.TrimSpace(email))
	return g.lookup(ctx, "email", key, func(ctx context.Context) (*types.User, error) {
		return g.next.GetByEmail(ctx, email)
	})
}

func (g *Guarded) GetByExternalID(ctx context.Context, identifier string) (*types.User, error) {
	return g.lookup(ctx, "external_id", "ext:"+identifier, func(ctx context.Context) (*types.User, error) {
		return g.next.GetByExternalID(ctx, identifier)
	})
}

// Create is not collapsed; it only gets the timeout.
func (g *Guarded) Create(ctx context.Context, in repository.CreateUserInput) (*types.User, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	u, err := g.next.Create(ctx, in)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", ErrLookupTimeout, err)
	}
	return u, err
}

func (g *Guarded) lookup(ctx context.Context, op, key string, fn func(context.Context) (*types.User, error)) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	ch := g.sf.DoChan(key, func() (any, error) {
		// Keep request values (logger, ids) but not the caller's cancellation.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		u, err := fn(lctx)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrLookupTimeout, err)
		}
		return u, err
	})

	select {
	case <-ctx.Done():
		metrics.ObserveStoreLookup(op, "cancelled", time.Since(start))
		return nil, ctx.Err()
	case res := <-ch:
		metrics.ObserveStoreLookup(op, lookupResult(res.Err), time.Since(start))
		if res.Err != nil {
			return nil, res.Err
		}
		// Users are immutable, so waiters can share one value.
		return res.Val.(*types.User), nil
	}
}

func lookupResult(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrLookupTimeout):
		return "timeout"
	default:
		return "error"
	}
}
