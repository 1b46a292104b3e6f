// Package app assembles the symbol pipeline from configuration. The HTTP
// server, the Telegram bot and the one-shot CLI all start from Build.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tickerbot/internal/bot"
	"tickerbot/internal/config"
	"tickerbot/internal/extract"
	"tickerbot/internal/httpx"
	"tickerbot/internal/logger"
	"tickerbot/internal/provider"
	"tickerbot/internal/provider/cache"
	"tickerbot/internal/provider/coingecko"
	"tickerbot/internal/provider/iex"
	"tickerbot/internal/provider/yahoo"
	"tickerbot/internal/reflist"
	"tickerbot/internal/router"
	"tickerbot/internal/search"
)

const coinGeckoKeyHeader = "x-cg-demo-api-key"

type App struct {
	Config     config.Config
	Stocks     *reflist.Cache
	Coins      *reflist.Cache
	Router     *router.Router
	Dispatcher *bot.Dispatcher
	Warmer     *reflist.Warmer
}

func Build(cfg config.Config, log *zap.SugaredLogger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	httpClient := httpx.New(cfg.RequestTimeout())

	iexClient := iex.New(cfg.IEX.Token,
		iex.WithBaseURL(cfg.IEX.BaseURL),
		iex.WithHTTPClient(httpClient),
		iex.WithLogger(log.Named("iex")),
	)

	geckoOpts := []coingecko.Option{
		coingecko.WithBaseURL(cfg.CoinGecko.BaseURL),
		coingecko.WithHTTPClient(httpClient),
		coingecko.WithLogger(log.Named("coingecko")),
	}
	if cfg.CoinGecko.APIKey != "" {
		geckoOpts = append(geckoOpts, coingecko.WithHeader(http.Header{coinGeckoKeyHeader: []string{cfg.CoinGecko.APIKey}}))
	}
	gecko := coingecko.New(geckoOpts...)

	var chartSource provider.ChartSource
	switch cfg.Chart.Source {
	case "yahoo":
		chartSource = yahoo.New(yahoo.WithLogger(log.Named("yahoo")))
	case "iex":
		chartSource = iexClient
	default:
		return nil, fmt.Errorf("unknown chart source %q", cfg.Chart.Source)
	}
	charts := cache.New(chartSource,
		cache.WithMaxItems(cfg.Chart.CacheMaxItems),
		cache.WithLogger(log.Named("chart-cache")),
	)
	stock := provider.WithChart(iexClient, charts)
	coinCharts := cache.New(gecko,
		cache.WithMaxItems(cfg.Chart.CacheMaxItems),
		cache.WithLogger(log.Named("coin-chart-cache")),
	)
	crypto := provider.CryptoWithChart(gecko, coinCharts)

	stocks := reflist.New("stocks", &reflist.FINRALoader{
		URL:    cfg.Lists.StockURL,
		Client: httpClient,
		Log:    log.Named("finra"),
	}, cfg.StockTTL(), reflist.WithLogger(log))
	coins := reflist.New("coins", &reflist.CoinGeckoLoader{
		Client: gecko,
		Log:    log.Named("coingecko"),
	}, cfg.CryptoTTL(), reflist.WithLogger(log))

	finder := extract.New(stocks, coins, extract.WithLogger(log.Named("extract")))
	searcher := search.New(stocks,
		search.WithCacheSize(cfg.Lists.SearchCacheMax),
		search.WithLogger(log.Named("search")),
	)
	coinIndex := search.NewCoinIndex(coins, log.Named("coin-index"))

	r := router.New(stock, crypto,
		router.WithFinder(finder),
		router.WithSearcher(searcher),
		router.WithCoinSearcher(coinIndex),
		router.WithTimeout(cfg.RequestTimeout()),
		router.WithLogger(log.Named("router")),
	)

	return &App{
		Config:     cfg,
		Stocks:     stocks,
		Coins:      coins,
		Router:     r,
		Dispatcher: bot.New(r, log.Named("bot")),
		Warmer:     reflist.NewWarmer(log.Named("warmer"), stocks, coins),
	}, nil
}

// Warm performs the initial reference list load. A failed list is logged and
// retried on first use.
func (a *App) Warm(ctx context.Context) {
	a.Warmer.RunNow(ctx)
}

// Start begins scheduled list refreshes.
func (a *App) Start() error {
	return a.Warmer.Start(a.Config.Lists.RefreshCron)
}

func (a *App) Stop() {
	a.Warmer.Stop()
}
