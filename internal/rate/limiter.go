// Package rate implements fixed-window rate limiting. The redis limiter is
// shared across instances; the memory limiter serves single-node and dev
// deployments.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Result is the verdict for one hit.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter counts a hit for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// window returns the bucket key for now and the time left in the window.
func window(prefix, key string, size time.Duration, now time.Time) (string, time.Duration) {
	start := now.Truncate(size)
	bucket := fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())
	return bucket, start.Add(size).Sub(now)
}

func verdict(hits, max int64, ttl, size time.Duration) Result {
	res := Result{
		Allowed:     hits <= max,
		Remaining:   max - hits,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = size
		}
	}
	return res
}
