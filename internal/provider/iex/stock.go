package iex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/provider"
)

// dateLayout is the pattern IEX uses for calendar dates.
const dateLayout = "2006-01-02"

var _ provider.StockClient = (*Client)(nil)

func stockPath(id, rest string) string {
	return "/stock/" + url.PathEscape(strings.ToUpper(id)) + rest
}

// Quote returns the latest quote.
func (c *Client) Quote(ctx context.Context, id string) (*provider.Quote, error) {
	var q provider.Quote
	if err := c.get(ctx, stockPath(id, "/quote"), nil, &q); err != nil {
		return nil, err
	}
	if q.Symbol == "" {
		q.Symbol = strings.ToUpper(id)
	}
	return &q, nil
}

// NextDividend returns the next dividend date, or the most recent one when
// no new date has been announced.
func (c *Client) NextDividend(ctx context.Context, id string) (*provider.Dividend, error) {
	path := "/data-points/" + url.PathEscape(strings.ToUpper(id)) + "/NEXTDIVIDENDDATE"

	var raw string
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("iex %s: no dividend date", path))
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("iex %s: parsing date %q: %w", path, raw, err))
	}
	return &provider.Dividend{Symbol: strings.ToUpper(id), Date: date}, nil
}

// News returns the last three headlines.
func (c *Client) News(ctx context.Context, id string) ([]provider.NewsItem, error) {
	var items []provider.NewsItem
	if err := c.get(ctx, stockPath(id, "/news/last/3"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Company(ctx context.Context, id string) (*provider.Company, error) {
	var co provider.Company
	if err := c.get(ctx, stockPath(id, "/company"), nil, &co); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) Stats(ctx context.Context, id string) (*provider.Stats, error) {
	var st provider.Stats
	if err := c.get(ctx, stockPath(id, "/stats"), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

type intradayPoint struct {
	Date   string              `json:"date"`
	Minute string              `json:"minute"`
	Open   decimal.NullDecimal `json:"open"`
	High   decimal.NullDecimal `json:"high"`
	Low    decimal.NullDecimal `json:"low"`
	Close  decimal.NullDecimal `json:"close"`
	Volume int64               `json:"volume"`
}

// Intraday returns minute bars since the last market open. Minutes without
// trades are skipped.
func (c *Client) Intraday(ctx context.Context, id string) (provider.Series, error) {
	var points []intradayPoint
	if err := c.get(ctx, stockPath(id, "/intraday-prices"), nil, &points); err != nil {
		return provider.Series{}, err
	}

	series := provider.Series{Symbol: strings.ToUpper(id)}
	for _, p := range points {
		if !p.Close.Valid {
			continue
		}
		ts, err := time.Parse(dateLayout+" 15:04", p.Date+" "+p.Minute)
		if err != nil {
			c.log.Debugw("skipping intraday point", "symbol", id, "date", p.Date, "minute", p.Minute, "err", err)
			continue
		}
		series.Bars = append(series.Bars, provider.Bar{
			Time:   ts,
			Open:   p.Open.Decimal,
			High:   p.High.Decimal,
			Low:    p.Low.Decimal,
			Close:  p.Close.Decimal,
			Volume: p.Volume,
		})
	}
	return series, nil
}

type chartPoint struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Chart returns daily bars for the past month.
func (c *Client) Chart(ctx context.Context, id string) (provider.Series, error) {
	var points []chartPoint
	if err := c.get(ctx, stockPath(id, "/chart/1m"), nil, &points); err != nil {
		return provider.Series{}, err
	}

	series := provider.Series{Symbol: strings.ToUpper(id)}
	for _, p := range points {
		ts, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			continue
		}
		series.Bars = append(series.Bars, provider.Bar{
			Time: ts, Open: p.Open, High: p.High, Low: p.Low, Close: p.Close, Volume: p.Volume,
		})
	}
	return series, nil
}

var errNotUp = errors.New("status is not up")

// Ping checks the IEX system status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var st struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/status", nil, &st); err != nil {
		return err
	}
	if !strings.EqualFold(st.Status, "up") {
		return apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("iex: %w (%q)", errNotUp, st.Status))
	}
	return nil
}
