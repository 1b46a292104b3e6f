// Package yahoo sources historical daily stock bars from Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"go.uber.org/zap"

	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/logger"
	"tickerbot/internal/provider"
)

// DefaultLookback is how far back Chart reaches.
const DefaultLookback = 30 * 24 * time.Hour

type barIter interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

type fetchFunc func(*chart.Params) barIter

func fetchChart(p *chart.Params) barIter { return chart.Get(p) }

// Source implements provider.ChartSource.
type Source struct {
	fetch    fetchFunc
	now      func() time.Time
	lookback time.Duration
	log      *zap.SugaredLogger
}

var _ provider.ChartSource = (*Source)(nil)

type Option func(*Source)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

func WithLookback(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.lookback = d
		}
	}
}

func New(opts ...Option) *Source {
	s := &Source{fetch: fetchChart, now: time.Now, lookback: DefaultLookback, log: logger.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func toDatetime(t time.Time) *datetime.Datetime {
	return &datetime.Datetime{Month: int(t.Month()), Day: t.Day(), Year: t.Year()}
}

// Chart returns daily bars up to the previous close. finance-go does not take
// a context; the call is abandoned (not cancelled) when ctx ends first.
func (s *Source) Chart(ctx context.Context, id string) (provider.Series, error) {
	sym := strings.ToUpper(id)
	end := s.now().UTC()
	params := &chart.Params{
		Symbol:   sym,
		Start:    toDatetime(end.Add(-s.lookback)),
		End:      toDatetime(end),
		Interval: datetime.OneDay,
	}

	type result struct {
		series provider.Series
		err    error
	}
	done := make(chan result, 1)
	go func() {
		series, err := s.collect(sym, s.fetch(params))
		done <- result{series, err}
	}()

	select {
	case <-ctx.Done():
		return provider.Series{}, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("yahoo chart %s: %w", sym, ctx.Err()))
	case r := <-done:
		return r.series, r.err
	}
}

func (s *Source) collect(sym string, it barIter) (provider.Series, error) {
	series := provider.Series{Symbol: sym}
	for it.Next() {
		b := it.Bar()
		if b == nil {
			continue
		}
		series.Bars = append(series.Bars, provider.Bar{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		})
	}
	if err := it.Err(); err != nil {
		s.log.Debugw("yahoo chart failed", "symbol", sym, "err", err)
		return provider.Series{}, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("yahoo chart %s: %w", sym, err))
	}
	return series, nil
}
