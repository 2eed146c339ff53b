package scraper

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Limiter paces successive page fetches. Wait blocks for the pacing
// interval or until ctx is canceled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// randomDelayLimiter blocks for a duration drawn uniformly from
// [min, max]. Purely probabilistic spacing against burstiness, not a
// guarantee against upstream blocking.
type randomDelayLimiter struct {
	min   time.Duration
	max   time.Duration
	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRandomDelayLimiter builds a limiter over the [min, max] interval.
func NewRandomDelayLimiter(min, max time.Duration) Limiter {
	return &randomDelayLimiter{
		min:   min,
		max:   max,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: sleepContext,
	}
}

func (l *randomDelayLimiter) Wait(ctx context.Context) error {
	d := l.min
	if span := l.max - l.min; span > 0 {
		l.mu.Lock()
		d += time.Duration(l.rng.Int63n(int64(span) + 1))
		l.mu.Unlock()
	}
	return l.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// hostLimiter enforces a per-host fetch ceiling for concurrent crawls:
// one token per interval per upstream host, so worker-pool concurrency
// never exceeds the configured pace against a single site. Buckets live
// in a bounded LRU keyed by host.
type hostLimiter struct {
	interval time.Duration
	mu       sync.Mutex
	buckets  *lru.Cache[string, *rate.Limiter]
}

func newHostLimiter(interval time.Duration, maxHosts int) (*hostLimiter, error) {
	buckets, err := lru.New[string, *rate.Limiter](maxHosts)
	if err != nil {
		return nil, err
	}
	return &hostLimiter{interval: interval, buckets: buckets}, nil
}

// Wait blocks until the host of rawURL has a token available.
func (h *hostLimiter) Wait(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	host := strings.ToLower(parsed.Host)

	h.mu.Lock()
	bucket, ok := h.buckets.Get(host)
	if !ok {
		limit := rate.Inf
		if h.interval > 0 {
			limit = rate.Every(h.interval)
		}
		bucket = rate.NewLimiter(limit, 1)
		h.buckets.Add(host, bucket)
	}
	h.mu.Unlock()

	return bucket.Wait(ctx)
}
