package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"yasno-exporter/internal/fetch"
	"yasno-exporter/internal/schedule"
)

// FetchFunc produces a fresh normalized Schedule or fails. The cache
// treats a parse failure exactly like a fetch failure: the previous
// snapshot stays in place.
type FetchFunc func(ctx context.Context) (*schedule.Schedule, error)

// Reporter receives refresh outcomes for self-observability metrics.
type Reporter interface {
	RefreshFailed(category string)
	RefreshSucceeded(fetchedAt time.Time)
}

// Config wires a Cache together.
type Config struct {
	Fetch    FetchFunc
	TTL      time.Duration
	Reporter Reporter                 // optional
	OnUpdate func(*schedule.Schedule) // optional, called after each successful swap
	Logger   zerolog.Logger
}

// Cache holds the last good Schedule and refreshes it when stale.
//
// Staleness policy: non-blocking. A stale Current() hands back the old
// snapshot immediately and starts at most one background refresh;
// concurrent stale readers never each trigger their own fetch. Once the
// cache has held good data it never degrades to empty again.
type Cache struct {
	fetch    FetchFunc
	ttl      time.Duration
	reporter Reporter
	onUpdate func(*schedule.Schedule)
	log      zerolog.Logger

	mu         sync.Mutex
	current    *schedule.Schedule
	refreshing bool
	failures   int
}

func New(cfg Config) *Cache {
	return &Cache{
		fetch:    cfg.Fetch,
		ttl:      cfg.TTL,
		reporter: cfg.Reporter,
		onUpdate: cfg.OnUpdate,
		log:      cfg.Logger,
	}
}

// Seed installs a snapshot loaded from the warm-start store. It is a
// no-op once the cache holds data, so a fetch that finished first wins.
func (c *Cache) Seed(s *schedule.Schedule) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		c.current = s
	}
}

// Current returns the cached Schedule, never nil and never an error.
// Before the first successful refresh it returns the empty snapshot.
// A stale snapshot triggers one background refresh on the way out.
func (c *Cache) Current() *schedule.Schedule {
	c.mu.Lock()
	s := c.current
	stale := s == nil || time.Since(s.FetchedAt) > c.ttl
	c.mu.Unlock()

	if stale {
		go func() {
			_ = c.Refresh(context.Background())
		}()
	}
	if s == nil {
		return schedule.Empty()
	}
	return s
}

// Refresh fetches and swaps in a new snapshot. If a refresh is already
// in flight it returns immediately; callers share that one outcome.
// On failure the previous snapshot is retained and the failure counter
// increments.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return nil
	}
	c.refreshing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	s, err := c.fetch(ctx)
	if err != nil {
		category := failureCategory(err)
		c.mu.Lock()
		c.failures++
		c.mu.Unlock()
		if c.reporter != nil {
			c.reporter.RefreshFailed(category)
		}
		c.log.Error().Err(err).Str("category", category).Msg("schedule refresh failed, keeping previous snapshot")
		return err
	}

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()

	if c.reporter != nil {
		c.reporter.RefreshSucceeded(s.FetchedAt)
	}
	if c.onUpdate != nil {
		c.onUpdate(s)
	}
	c.log.Info().Int("groups", len(s.Groups)).Str("version", s.SourceVersion).Msg("schedule refreshed")
	return nil
}

// Start runs the background refresh loop: one refresh immediately, then
// one per interval. Blocks until ctx is cancelled.
func (c *Cache) Start(ctx context.Context, interval time.Duration) {
	_ = c.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}

// Failures returns how many refreshes have failed since startup.
func (c *Cache) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

func failureCategory(err error) string {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		return string(fe.Category)
	}
	var pe *schedule.ParseError
	if errors.As(err, &pe) {
		return string(pe.Category)
	}
	return "unknown"
}
