package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/hellologin/internal/auth/provider"
	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/metrics"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
)

// ConnectorFactory builds a provider connector. provider.New is the default;
// tests swap in fakes.
type ConnectorFactory func(kind provider.Kind, creds provider.Credentials, redirectURL string) (provider.Connector, error)

// Config is everything the registry needs at startup.
type Config struct {
	Users      repository.UserRepository
	BaseURL    string // e.g. https://example.org
	PendingTTL time.Duration
	// Providers holds credentials for the enabled providers only.
	Providers        map[provider.Kind]provider.Credentials
	ConnectorFactory ConnectorFactory
}

// Registry holds the configured strategies.
type Registry struct {
	strategies [numNames]Strategy
}

// NewRegistry builds the local strategy and, for every enabled provider,
// its login and register strategies.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Users == nil {
		return nil, fmt.Errorf("strategy: users repository is required")
	}
	factory := cfg.ConnectorFactory
	if factory == nil {
		factory = func(kind provider.Kind, creds provider.Credentials, redirectURL string) (provider.Connector, error) {
			return provider.New(kind, creds, redirectURL, provider.Options{})
		}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	r := &Registry{}
	r.strategies[Local] = NewLocal(cfg.Users)

	for _, kind := range provider.Kinds() {
		creds, ok := cfg.Providers[kind]
		if !ok {
			continue
		}
		for _, intent := range []Intent{IntentLogin, IntentRegister} {
			conn, err := factory(kind, creds, base+CallbackPath(kind, intent))
			if err != nil {
				return nil, fmt.Errorf("strategy: %s connector: %w", kind, err)
			}
			s, err := NewExternal(kind, intent, conn, cfg.Users, cfg.PendingTTL)
			if err != nil {
				return nil, err
			}
			r.strategies[s.Name()] = s
		}
	}
	return r, nil
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name Name) (Strategy, bool) {
	if name < 0 || name >= numNames || r.strategies[name] == nil {
		return nil, false
	}
	return r.strategies[name], true
}

// External returns the provider strategy for kind and intent.
func (r *Registry) External(kind provider.Kind, intent Intent) (*ExternalStrategy, bool) {
	name, ok := ExternalName(kind, intent)
	if !ok {
		return nil, false
	}
	s, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	ext, ok := s.(*ExternalStrategy)
	return ext, ok
}

// Enabled lists the providers with registered strategies.
func (r *Registry) Enabled() []provider.Kind {
	var out []provider.Kind
	for _, k := range provider.Kinds() {
		if _, ok := r.External(k, IntentLogin); ok {
			out = append(out, k)
		}
	}
	return out
}

// Resolve runs s and records the outcome in logs and metrics.
func Resolve(ctx context.Context, s Strategy, creds Credentials) Outcome {
	out := s.Resolve(ctx, creds)
	metrics.RecordAuthAttempt(s.Name().String(), out.Label())

	log := logger.From(ctx).With(logger.Strategy(s.Name().String()), logger.Outcome(out.Label()))
	switch {
	case out.IsFault():
		log.Error("authentication fault", logger.Err(out.Err()))
	case out.IsRejected():
		log.Info("authentication rejected",
			logger.Reason(string(out.Reason())),
			logger.Bool("pending", out.Pending() != nil),
		)
	default:
		log.Info("authenticated", logger.UserID(out.User().ID))
	}
	return out
}
