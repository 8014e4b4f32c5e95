// Package health contains the health check controller.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	dto "github.com/dropDatabas3/hellologin/internal/http/dto/health"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthController answers GET /healthz.
type HealthController struct {
	components map[string]Pinger
	providers  []string
	timeout    time.Duration
}

// NewHealthController checks every component on each request. providers is
// reported as-is.
func NewHealthController(components map[string]Pinger, providers []string) *HealthController {
	return &HealthController{components: components, providers: providers, timeout: 2 * time.Second}
}

func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Healthz"))

	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, p := i, c.components[name]
		g.Go(func() error {
			results[i] = p.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	resp := dto.Response{Status: "ready", Components: make(map[string]string, len(names)), Providers: c.providers}
	if resp.Providers == nil {
		resp.Providers = []string{}
	}
	status := http.StatusOK
	for i, name := range names {
		if results[i] != nil {
			log.Warn("health check failed", logger.Component(name), logger.Err(results[i]))
			resp.Components[name] = "down"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
