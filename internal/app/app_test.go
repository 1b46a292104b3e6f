package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"tickerbot/internal/app"
	"tickerbot/internal/bot"
	"tickerbot/internal/config"
)

const finraFile = "Symbol|Issue_Name|Primary_Listing_Mkt\n" +
	"TSLA|Tesla, Inc. Common Stock|NASDAQ\n" +
	"AAPL|Apple Inc. Common Stock|NASDAQ\n" +
	"2|20240515|\n"

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/finra.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(finraFile))
	})
	mux.HandleFunc("/iex/stock/TSLA/quote", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "pk_test", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"symbol":"TSLA","companyName":"Tesla Inc","latestPrice":170.5,"changePercent":0.0123}`))
	})
	mux.HandleFunc("/gecko/coins/list", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},{"id":"ethereum","symbol":"eth","name":"Ethereum"}]`))
	})
	mux.HandleFunc("/gecko/coins/bitcoin", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"bitcoin","symbol":"btc","name":"Bitcoin",
			"market_data":{"current_price":{"usd":64000},"price_change_percentage_24h":-2.5}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBuild_EndToEnd(t *testing.T) {
	// Arrange
	srv := backend(t)
	cfg := config.Default()
	cfg.IEX.Token = "pk_test"
	cfg.IEX.BaseURL = srv.URL + "/iex"
	cfg.CoinGecko.BaseURL = srv.URL + "/gecko"
	cfg.Lists.StockURL = srv.URL + "/finra.txt"

	a, err := app.Build(cfg, nil)
	require.NoError(t, err)
	a.Warm(t.Context())
	require.Equal(t, 2, a.Stocks.Current().Len())
	require.Equal(t, 2, a.Coins.Current().Len())

	// Act
	got := a.Dispatcher.Handle(t.Context(), "what about $tsla and $$btc today")

	// Assert
	require.Equal(t, []bot.Message{
		{Text: "The current stock price of Tesla Inc is $**170.5**, the stock is currently **up 1.23%**", Markdown: true},
		{Text: "The current price of Bitcoin is $**64000**, the coin is currently **down 2.5%**", Markdown: true},
	}, got)

	matches, err := a.Router.SearchSymbols(t.Context(), "tesla")
	require.NoError(t, err)
	require.Equal(t, "TSLA", matches[0].Symbol)
}

func TestBuild_UnknownChartSource(t *testing.T) {
	cfg := config.Default()
	cfg.Chart.Source = "bloomberg"
	_, err := app.Build(cfg, nil)
	require.Error(t, err)
}
