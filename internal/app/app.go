// Package app wires configuration, storage, sessions, strategies and the
// HTTP router into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellologin/internal/auth/provider"
	"github.com/dropDatabas3/hellologin/internal/auth/strategy"
	"github.com/dropDatabas3/hellologin/internal/cache"
	"github.com/dropDatabas3/hellologin/internal/config"
	authctrl "github.com/dropDatabas3/hellologin/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/hellologin/internal/http/controllers/health"
	mw "github.com/dropDatabas3/hellologin/internal/http/middlewares"
	"github.com/dropDatabas3/hellologin/internal/http/router"
	"github.com/dropDatabas3/hellologin/internal/i18n"
	"github.com/dropDatabas3/hellologin/internal/metrics"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	"github.com/dropDatabas3/hellologin/internal/rate"
	"github.com/dropDatabas3/hellologin/internal/security/password"
	"github.com/dropDatabas3/hellologin/internal/session"
	"github.com/dropDatabas3/hellologin/internal/store"
)

// Options are test hooks. The zero value builds the production wiring.
type Options struct {
	// Registerer receives the collectors; nil means the default registry.
	Registerer prometheus.Registerer
	// ConnectorFactory replaces the OAuth connectors.
	ConnectorFactory strategy.ConnectorFactory
}

// App is the wired application.
type App struct {
	Config    *config.Config
	Handler   http.Handler
	Directory *store.Directory
	Sessions  *session.Manager

	cache cache.Client
}

// New builds the application from cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	log := logger.Named("app")

	dir, err := store.Open(ctx, store.Config{
		Driver:        cfg.Storage.Driver,
		DSN:           cfg.Storage.DSN,
		MaxConns:      cfg.Storage.MaxConns,
		LookupTimeout: cfg.Storage.LookupTimeout,
		Migrate:       cfg.Storage.Migrate,
	})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Directory: dir}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	limiter, err := a.openCache(ctx)
	if err != nil {
		return nil, err
	}

	metricsHandler, err := metrics.Register(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	policy, err := passwordPolicy(cfg)
	if err != nil {
		return nil, err
	}

	bridge := session.NewBridge([]byte(cfg.Auth.Session.SigningKey), cfg.Auth.Session.TTL)
	a.Sessions = session.NewManager(a.cache, bridge, session.Config{
		Cookie: session.CookieConfig{
			Name:     cfg.Auth.Session.CookieName,
			Domain:   cfg.Auth.Session.Domain,
			SameSite: session.ParseSameSite(cfg.Auth.Session.SameSite),
			Secure:   cfg.Auth.Session.Secure,
		},
		TTL: cfg.Auth.Session.TTL,
	})

	proxies, err := mw.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	reg, err := strategy.NewRegistry(strategy.Config{
		Users:            dir.Users,
		BaseURL:          cfg.App.BaseURL,
		PendingTTL:       cfg.Auth.PendingRegistrationTTL,
		Providers:        Providers(cfg),
		ConnectorFactory: opts.ConnectorFactory,
	})
	if err != nil {
		return nil, err
	}

	enabled := make([]string, 0, 3)
	for _, k := range reg.Enabled() {
		enabled = append(enabled, k.Slug())
	}

	a.Handler = router.New(router.Deps{
		Auth: authctrl.NewControllers(authctrl.Deps{
			Strategies:      reg,
			Sessions:        a.Sessions,
			Users:           dir.Users,
			PasswordPolicy:  policy,
			HashParams:      password.Default,
			DefaultLanguage: i18n.Lookup(cfg.App.DefaultLanguage),
			OAuthStateTTL:   cfg.Auth.OAuthStateTTL,
		}),
		Health: healthctrl.NewHealthController(map[string]healthctrl.Pinger{
			"store": healthctrl.PingFunc(dir.Ping),
			"cache": a.cache,
		}, enabled),
		Sessions:       a.Sessions,
		LoginLimiter:   limiter,
		Metrics:        metricsHandler,
		TrustedProxies: proxies,
	})

	log.Info("application wired",
		logger.String("storage", dir.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.Any("providers", enabled),
		logger.Bool("rate_limit", limiter != nil),
	)
	return a, nil
}

// openCache opens the session cache and returns the matching login limiter,
// or nil when rate limiting is off.
func (a *App) openCache(ctx context.Context) (rate.Limiter, error) {
	cfg := a.Config
	prefix := cfg.Cache.Redis.Prefix

	if cfg.Cache.Kind == "redis" {
		client, err := cache.DialRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.cache = cache.NewRedis(client, prefix)
		if !cfg.Rate.Enabled {
			return nil, nil
		}
		return rate.NewRedisLimiter(client, prefix+":rl:", cfg.Rate.Limit, cfg.Rate.Window), nil
	}

	a.cache = cache.NewMemory(prefix, time.Minute)
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	return rate.NewMemoryLimiter(cfg.Rate.Limit, cfg.Rate.Window), nil
}

// Providers returns the credentials of the enabled providers.
func Providers(cfg *config.Config) map[provider.Kind]provider.Credentials {
	out := map[provider.Kind]provider.Credentials{}
	for kind, p := range map[provider.Kind]config.ProviderConfig{
		provider.Google:   cfg.Providers.Google,
		provider.Twitter:  cfg.Providers.Twitter,
		provider.Facebook: cfg.Providers.Facebook,
	} {
		if !p.Enabled {
			continue
		}
		out[kind] = provider.Credentials{ClientID: p.ClientID, ClientSecret: p.ClientSecret, Scopes: p.Scopes}
	}
	return out
}

func passwordPolicy(cfg *config.Config) (password.Policy, error) {
	bl, err := password.LoadBlacklist(cfg.Auth.PasswordBlacklistPath)
	if err != nil {
		return password.Policy{}, fmt.Errorf("app: password blacklist: %w", err)
	}
	return password.Policy{
		MinLength:    cfg.Auth.PasswordMinLength,
		RequireLower: true,
		RequireDigit: true,
		Blacklist:    bl,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("app: listen %s: %w", a.Config.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	srv := &http.Server{
		Handler:           a.Handler,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the cache and the store.
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Named("app").Warn("cache close failed", logger.Err(err))
		}
	}
	if a.Directory != nil {
		a.Directory.Close()
	}
}
