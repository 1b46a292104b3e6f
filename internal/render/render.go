// Package render draws price series as PNG images.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tickerbot/internal/provider"
)

// ErrNotEnoughData is returned for series with fewer than two bars.
var ErrNotEnoughData = errors.New("need at least 2 data points")

// PNG renders the close prices of s as a line chart. The time format of the
// x axis labels is chosen from the span of the series.
func PNG(title string, s provider.Series) ([]byte, error) {
	if len(s.Bars) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrNotEnoughData, len(s.Bars))
	}

	xValues := make([]time.Time, len(s.Bars))
	closeY := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		xValues[i] = b.Time
		closeY[i] = b.Close.InexactFloat64()
	}

	layout := "Jan 02"
	if xValues[len(xValues)-1].Sub(xValues[0]) <= 36*time.Hour {
		layout = "15:04"
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).UTC().Format(layout)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Close",
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2,
				},
				XValues: xValues,
				YValues: closeY,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
