package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tickerbot/internal/logger"
	"tickerbot/internal/provider"
)

const (
	DefaultMaxItems = 256
	DefaultTTL      = 24 * time.Hour

	// fetchTimeout bounds a shared upstream call, which runs detached from
	// the cancellation of whichever caller started it.
	fetchTimeout = 30 * time.Second
)

// Chart caches historical series per symbol for the calendar day they were
// fetched on. A request for the same symbol on the next day misses even if
// the entry has not expired yet. Empty and failed results are not cached.
type Chart struct {
	src   provider.ChartSource
	items *expirable.LRU[string, provider.Series]
	sf    singleflight.Group
	now   func() time.Time
	log   *zap.SugaredLogger
}

var _ provider.ChartSource = (*Chart)(nil)

type Option func(*chartOptions)

type chartOptions struct {
	maxItems int
	ttl      time.Duration
	now      func() time.Time
	log      *zap.SugaredLogger
}

func WithMaxItems(n int) Option {
	return func(o *chartOptions) {
		if n > 0 {
			o.maxItems = n
		}
	}
}

func WithTTL(d time.Duration) Option {
	return func(o *chartOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *chartOptions) { o.now = now }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *chartOptions) {
		if l != nil {
			o.log = l
		}
	}
}

func New(src provider.ChartSource, opts ...Option) *Chart {
	o := chartOptions{maxItems: DefaultMaxItems, ttl: DefaultTTL, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Chart{
		src:   src,
		items: expirable.NewLRU[string, provider.Series](o.maxItems, nil, o.ttl),
		now:   o.now,
		log:   o.log,
	}
}

func (c *Chart) key(id string) string {
	return strings.ToUpper(id) + "|" + c.now().Format(time.DateOnly)
}

// Chart returns the cached series for today, fetching it on a miss.
// Concurrent misses for the same key share one upstream call.
func (c *Chart) Chart(ctx context.Context, id string) (provider.Series, error) {
	key := c.key(id)
	if s, ok := c.items.Get(key); ok {
		return s, nil
	}

	ch := c.sf.DoChan(key, func() (any, error) {
		if s, ok := c.items.Get(key); ok {
			return s, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		s, err := c.src.Chart(fctx, id)
		if err != nil {
			return provider.Series{}, err
		}
		if !s.Empty() {
			c.items.Add(key, s)
			c.log.Debugw("chart cached", "key", key, "bars", len(s.Bars))
		}
		return s, nil
	})

	select {
	case <-ctx.Done():
		return provider.Series{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return provider.Series{}, res.Err
		}
		return res.Val.(provider.Series), nil
	}
}

// Len reports the number of cached series.
func (c *Chart) Len() int { return c.items.Len() }
