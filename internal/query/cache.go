// AngelaMos | 2026
// cache.go

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrNotEligible marks a read whose prerequisites have not resolved yet (no
// backend binding for the session). It is a third state distinct from
// loading and failed; callers branch on it instead of showing a premature
// access-denied view.
var ErrNotEligible = errors.New("query not eligible yet")

// Key identifies a cached read: operation name plus its parameters.
type Key struct {
	Op  string
	Arg string
}

func NewKey(op string, args ...string) Key {
	return Key{Op: op, Arg: strings.Join(args, "/")}
}

func (k Key) String() string {
	if k.Arg == "" {
		return k.Op
	}
	return k.Op + ":" + k.Arg
}

// RetryPolicy is per-operation, never global. MaxRetries counts additional
// attempts after the first; Delay is fixed between attempts.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// Options governs one read operation's staleness and retry behavior.
// StaleTime zero means the entry is never served without a refetch.
type Options struct {
	StaleTime time.Duration
	Retry     RetryPolicy
}

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

type flight struct {
	done  chan struct{}
	value any
	err   error
}

// Cache is the session-scoped query cache: created when a session starts,
// torn down with it, and injected into every consumer rather than living as
// an ambient singleton. One in-flight fetch per key at a time; concurrent
// readers of the same key share that flight's outcome.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	flights map[Key]*flight
	logger  *slog.Logger
	now     func() time.Time
}

func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[Key]*entry),
		flights: make(map[Key]*flight),
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch returns the cached value for key when fresh, otherwise runs fn
// (coalesced with concurrent fetches of the same key) and caches the result.
// A failed fetch leaves any existing entry untouched.
func Fetch[T any](
	ctx context.Context,
	c *Cache,
	key Key,
	opts Options,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	c.mu.Lock()

	if e, ok := c.entries[key]; ok && c.fresh(e, opts) {
		c.mu.Unlock()
		value, ok := e.value.(T)
		if !ok {
			return zero, fmt.Errorf(
				"cache entry %s holds %T",
				key, e.value,
			)
		}
		return value, nil
	}

	if fl, ok := c.flights[key]; ok {
		c.mu.Unlock()
		return awaitFlight[T](ctx, fl)
	}

	fl := &flight{done: make(chan struct{})}
	c.flights[key] = fl
	c.mu.Unlock()

	value, err := runWithRetry(ctx, opts.Retry, fn)

	c.mu.Lock()
	delete(c.flights, key)
	if err == nil {
		c.entries[key] = &entry{value: value, fetchedAt: c.now()}
	} else {
		c.logger.Debug("query fetch failed",
			"key", key.String(),
			"error", err,
		)
	}
	c.mu.Unlock()

	fl.value = value
	fl.err = err
	close(fl.done)

	return value, err
}

func awaitFlight[T any](ctx context.Context, fl *flight) (T, error) {
	var zero T

	// The underlying call keeps running if this waiter gives up; its result
	// is simply discarded here.
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-fl.done:
	}

	if fl.err != nil {
		return zero, fl.err
	}

	value, ok := fl.value.(T)
	if !ok {
		return zero, fmt.Errorf("coalesced flight holds %T", fl.value)
	}
	return value, nil
}

func runWithRetry[T any](
	ctx context.Context,
	policy RetryPolicy,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(policy.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
	}

	return zero, lastErr
}

func (c *Cache) fresh(e *entry, opts Options) bool {
	if e.stale {
		return false
	}
	if opts.StaleTime <= 0 {
		return false
	}
	return c.now().Sub(e.fetchedAt) < opts.StaleTime
}

// Invalidate marks every entry of the given operation stale, parameters
// included, so category-scoped variants go stale with the parent list.
func (c *Cache) Invalidate(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if key.Op == op {
			e.stale = true
		}
	}
}

// InvalidateKey marks one exact entry stale.
func (c *Cache) InvalidateKey(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
}

// Peek reports the cached value without touching freshness bookkeeping.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Clear drops everything. Used at session teardown.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*entry)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
