package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter is a per-process fixed window on go-cache counters.
type MemoryLimiter struct {
	c      *gocache.Cache
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		prefix: "rl:",
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	bucket, left := window(l.prefix, key, l.window, l.now())

	// Add fails when the bucket exists, which is fine.
	_ = l.c.Add(bucket, int64(0), left)
	hits, err := l.c.IncrementInt64(bucket, 1)
	if err != nil {
		return Result{}, err
	}
	return verdict(hits, l.max, left, l.window), nil
}
