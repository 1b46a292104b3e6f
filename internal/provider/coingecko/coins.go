package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/provider"
	"tickerbot/internal/symbol"
)

var _ provider.CryptoClient = (*Client)(nil)

// ListedCoin is one row of /coins/list.
type ListedCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// List returns every coin CoinGecko knows about.
func (c *Client) List(ctx context.Context) ([]ListedCoin, error) {
	var coins []ListedCoin
	if err := c.get(ctx, "/coins/list", nil, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

type currencyMap map[string]decimal.Decimal

type coinResponse struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	MarketCapRank *int `json:"market_cap_rank"`
	MarketData    struct {
		CurrentPrice             currencyMap     `json:"current_price"`
		PriceChangePercentage24h decimal.Decimal `json:"price_change_percentage_24h"`
		MarketCap                currencyMap     `json:"market_cap"`
		TotalVolume              currencyMap     `json:"total_volume"`
		High24h                  currencyMap     `json:"high_24h"`
		Low24h                   currencyMap     `json:"low_24h"`
	} `json:"market_data"`
}

// Coin hydrates a coin id with its name, description and market data priced
// in symbol.Currency.
func (c *Client) Coin(ctx context.Context, id string) (*provider.CoinDetail, error) {
	query := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"community_data": {"false"},
		"developer_data": {"false"},
	}

	var res coinResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(id), query, &res); err != nil {
		return nil, err
	}

	price, ok := res.MarketData.CurrentPrice[symbol.Currency]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("coingecko: no %s price for %s", symbol.Currency, id))
	}

	detail := &provider.CoinDetail{
		ID:            res.ID,
		Symbol:        res.Symbol,
		Name:          res.Name,
		Description:   res.Description.En,
		Price:         price,
		ChangePercent: res.MarketData.PriceChangePercentage24h,
		MarketCap:     res.MarketData.MarketCap[symbol.Currency],
		Volume:        res.MarketData.TotalVolume[symbol.Currency],
		High24h:       res.MarketData.High24h[symbol.Currency],
		Low24h:        res.MarketData.Low24h[symbol.Currency],
	}
	if res.MarketCapRank != nil {
		detail.MarketCapRank = *res.MarketCapRank
	}
	for _, h := range res.Links.Homepage {
		if h != "" {
			detail.Homepage = h
			break
		}
	}
	return detail, nil
}

// Intraday returns the last day of OHLC candles.
func (c *Client) Intraday(ctx context.Context, id string) (provider.Series, error) {
	return c.ohlc(ctx, id, 1)
}

// Chart returns the last month of OHLC candles.
func (c *Client) Chart(ctx context.Context, id string) (provider.Series, error) {
	return c.ohlc(ctx, id, 30)
}

// ohlc rows are [timestamp_ms, open, high, low, close]. CoinGecko reports no
// volume on this endpoint.
func (c *Client) ohlc(ctx context.Context, id string, days int) (provider.Series, error) {
	query := url.Values{"vs_currency": {symbol.Currency}, "days": {strconv.Itoa(days)}}

	var rows [][]decimal.Decimal
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/ohlc", query, &rows); err != nil {
		return provider.Series{}, err
	}

	series := provider.Series{Symbol: id}
	for _, r := range rows {
		if len(r) < 5 {
			continue
		}
		series.Bars = append(series.Bars, provider.Bar{
			Time:  time.UnixMilli(r[0].IntPart()).UTC(),
			Open:  r[1],
			High:  r[2],
			Low:   r[3],
			Close: r[4],
		})
	}
	return series, nil
}

// Ping checks that the API answers.
func (c *Client) Ping(ctx context.Context) error {
	var res struct {
		GeckoSays string `json:"gecko_says"`
	}
	return c.get(ctx, "/ping", nil, &res)
}
