package provider

import "context"

type stockWithChart struct {
	StockClient
	chart ChartSource
}

// WithChart returns a StockClient that serves Chart from chart and everything
// else from stock.
func WithChart(stock StockClient, chart ChartSource) StockClient {
	if chart == nil {
		return stock
	}
	return &stockWithChart{StockClient: stock, chart: chart}
}

func (s *stockWithChart) Chart(ctx context.Context, id string) (Series, error) {
	return s.chart.Chart(ctx, id)
}

type cryptoWithChart struct {
	CryptoClient
	chart ChartSource
}

// CryptoWithChart is WithChart for coins.
func CryptoWithChart(crypto CryptoClient, chart ChartSource) CryptoClient {
	if chart == nil {
		return crypto
	}
	return &cryptoWithChart{CryptoClient: crypto, chart: chart}
}

func (c *cryptoWithChart) Chart(ctx context.Context, id string) (Series, error) {
	return c.chart.Chart(ctx, id)
}

// ChartFunc adapts a function to ChartSource.
type ChartFunc func(ctx context.Context, id string) (Series, error)

func (f ChartFunc) Chart(ctx context.Context, id string) (Series, error) { return f(ctx, id) }
