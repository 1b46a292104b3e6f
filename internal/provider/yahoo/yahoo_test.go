package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	apperrors "tickerbot/internal/errors"
)

type fakeIter struct {
	bars []*finance.ChartBar
	pos  int
	err  error
}

func (f *fakeIter) Next() bool {
	if f.pos >= len(f.bars) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeIter) Bar() *finance.ChartBar { return f.bars[f.pos-1] }
func (f *fakeIter) Err() error             { return f.err }

func TestChart_ConvertsBars(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	var got *chart.Params
	s := New(WithClock(func() time.Time { return now }))
	s.fetch = func(p *chart.Params) barIter {
		got = p
		return &fakeIter{bars: []*finance.ChartBar{
			{Open: decimal.NewFromInt(10), High: decimal.NewFromInt(12), Low: decimal.NewFromInt(9), Close: decimal.NewFromInt(11), Volume: 1000, Timestamp: 1715000000},
			nil,
			{Open: decimal.NewFromInt(11), High: decimal.NewFromInt(13), Low: decimal.NewFromInt(10), Close: decimal.NewFromInt(12), Volume: 2000, Timestamp: 1715086400},
		}}
	}

	series, err := s.Chart(t.Context(), "tsla")
	require.NoError(t, err)

	require.Equal(t, "TSLA", got.Symbol)
	require.Equal(t, datetime.OneDay, got.Interval)
	require.Equal(t, &datetime.Datetime{Month: 4, Day: 15, Year: 2024}, got.Start)
	require.Equal(t, &datetime.Datetime{Month: 5, Day: 15, Year: 2024}, got.End)

	require.Equal(t, "TSLA", series.Symbol)
	require.Len(t, series.Bars, 2)
	require.Equal(t, time.Unix(1715086400, 0).UTC(), series.Bars[1].Time)
	require.Equal(t, int64(2000), series.Bars[1].Volume)
}

func TestChart_IteratorError(t *testing.T) {
	t.Parallel()

	s := New()
	s.fetch = func(*chart.Params) barIter {
		return &fakeIter{err: errors.New("remote-error")}
	}

	_, err := s.Chart(t.Context(), "zzzz")
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

func TestChart_ContextDone(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	defer close(block)

	s := New()
	s.fetch = func(*chart.Params) barIter {
		<-block
		return &fakeIter{}
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := s.Chart(ctx, "tsla")
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}
