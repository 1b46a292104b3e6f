package reflist

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tickerbot/internal/logger"
)

const (
	DefaultStockTTL  = 3 * time.Hour
	DefaultCryptoTTL = 24 * time.Hour
)

// Cache owns the current Table for one asset class.
type Cache struct {
	name   string
	loader Loader
	ttl    time.Duration

	current atomic.Pointer[Table]
	sf      singleflight.Group

	now func() time.Time
	log *zap.SugaredLogger
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty cache. Call Load to populate it before serving.
func New(name string, loader Loader, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{name: name, loader: loader, ttl: ttl, now: time.Now, log: logger.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) Name() string { return c.name }

// Current returns the snapshot in use without checking its age. It is nil
// until the first successful load.
func (c *Cache) Current() *Table { return c.current.Load() }

// Load performs the initial population.
func (c *Cache) Load(ctx context.Context) error {
	_, err := c.Refresh(ctx)
	return err
}

func (c *Cache) stale(t *Table) bool {
	return t == nil || c.now().Sub(t.FetchedAt) > c.ttl
}

// Fresh returns a table no older than the TTL, refreshing synchronously when
// needed. Concurrent stale callers share a single loader call. If the refresh
// fails the last known table is returned; the error only surfaces when there
// is no table at all.
func (c *Cache) Fresh(ctx context.Context) (*Table, error) {
	if t := c.current.Load(); !c.stale(t) {
		return t, nil
	}

	v, err, _ := c.sf.Do("refresh", func() (any, error) {
		if t := c.current.Load(); !c.stale(t) {
			return t, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		if t := c.current.Load(); t != nil {
			c.log.Warnw("reference refresh failed, serving last known list",
				"list", c.name, "age", c.now().Sub(t.FetchedAt).String(), "err", err)
			return t, nil
		}
		return nil, err
	}
	return v.(*Table), nil
}

// Refresh reloads unconditionally. It joins a refresh already in flight.
func (c *Cache) Refresh(ctx context.Context) (*Table, error) {
	v, err, _ := c.sf.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// refresh runs detached from the caller's cancellation since other callers
// may be waiting on the same result.
func (c *Cache) refresh(ctx context.Context) (*Table, error) {
	start := c.now()
	t, err := c.loader.Load(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("refreshing %s list: %w", c.name, err)
	}
	c.current.Store(t)
	c.log.Infow("reference list refreshed", "list", c.name, "rows", t.Len(), "took", c.now().Sub(start).String())
	return t, nil
}
