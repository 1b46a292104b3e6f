package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest price snapshot for a stock.
type Quote struct {
	Symbol        string          `json:"symbol"`
	CompanyName   string          `json:"companyName"`
	LatestPrice   decimal.Decimal `json:"latestPrice"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// Dividend is the next (or most recent) dividend date of a stock.
type Dividend struct {
	Symbol string
	Date   time.Time
}

// NewsItem is a single headline.
type NewsItem struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// Company is the descriptive profile of a stock issuer.
type Company struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	Sector      string `json:"sector"`
	CEO         string `json:"CEO"`
	Description string `json:"description"`
}

// Stats holds key statistics for a stock.
type Stats struct {
	CompanyName      string          `json:"companyName"`
	MarketCap        decimal.Decimal `json:"marketcap"`
	Week52High       decimal.Decimal `json:"week52high"`
	Week52Low        decimal.Decimal `json:"week52low"`
	PERatio          decimal.Decimal `json:"peRatio"`
	DividendYield    decimal.Decimal `json:"dividendYield"`
	NextEarningsDate string          `json:"nextEarningsDate"`
}

// CoinDetail is the hydrated description of a coin, priced in symbol.Currency.
type CoinDetail struct {
	ID            string
	Symbol        string
	Name          string
	Description   string // HTML as delivered by the provider
	Homepage      string
	Price         decimal.Decimal
	ChangePercent decimal.Decimal // 24h
	MarketCap     decimal.Decimal
	MarketCapRank int
	Volume        decimal.Decimal
	High24h       decimal.Decimal
	Low24h        decimal.Decimal
}

// Bar is one OHLCV point of a time series.
type Bar struct {
	Time   time.Time       `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Series is a tabular time series result. An empty Series means no data.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Empty reports whether the series carries no data.
func (s Series) Empty() bool { return len(s.Bars) == 0 }

// ChartSource provides historical daily bars for a symbol id.
type ChartSource interface {
	Chart(ctx context.Context, id string) (Series, error)
}

// StockClient is the stock backend used by the router.
// Failures are reported as apperrors.ErrDataSourceUnavailable.
type StockClient interface {
	ChartSource
	Name() string
	Quote(ctx context.Context, id string) (*Quote, error)
	NextDividend(ctx context.Context, id string) (*Dividend, error)
	News(ctx context.Context, id string) ([]NewsItem, error)
	Company(ctx context.Context, id string) (*Company, error)
	Stats(ctx context.Context, id string) (*Stats, error)
	Intraday(ctx context.Context, id string) (Series, error)
	Ping(ctx context.Context) error
}

// CryptoClient is the crypto backend used by the router.
type CryptoClient interface {
	ChartSource
	Name() string
	Coin(ctx context.Context, id string) (*CoinDetail, error)
	Intraday(ctx context.Context, id string) (Series, error)
	Ping(ctx context.Context) error
}
