package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tickerbot/internal/provider"
	"tickerbot/internal/render"
)

func TestPNG(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	series := provider.Series{Symbol: "TSLA"}
	for i := range 20 {
		series.Bars = append(series.Bars, provider.Bar{
			Time:  start.AddDate(0, 0, i),
			Close: decimal.NewFromFloat(170 + float64(i%5)),
		})
	}

	png, err := render.PNG("TSLA", series)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestPNG_NotEnoughData(t *testing.T) {
	t.Parallel()

	_, err := render.PNG("TSLA", provider.Series{Bars: []provider.Bar{{Time: time.Now()}}})
	require.ErrorIs(t, err, render.ErrNotEnoughData)
}
