package reflist

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/httpx"
	"tickerbot/internal/provider/coingecko"
	"tickerbot/internal/symbol"
)

// DefaultStockListURL is FINRA's daily list of OATS reportable securities.
const DefaultStockListURL = "http://oatsreportable.finra.org/OATSReportableSecurities-SOD.txt"

// Loader fetches a complete reference table.
type Loader interface {
	Load(ctx context.Context) (*Table, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*Table, error)

func (f LoaderFunc) Load(ctx context.Context) (*Table, error) { return f(ctx) }

// FINRALoader reads the pipe-delimited FINRA securities file.
type FINRALoader struct {
	URL    string
	Client httpx.Doer
	Now    func() time.Time
	Log    *zap.SugaredLogger
}

func (l *FINRALoader) Load(ctx context.Context) (*Table, error) {
	url := l.URL
	if url == "" {
		url = DefaultStockListURL
	}
	body, err := httpx.Get(ctx, l.Client, url, nil)
	if err != nil {
		return nil, fmt.Errorf("stock list: %w", err)
	}

	rows, err := ParseFINRA(body)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	if l.Log != nil {
		l.Log.Infow("stock list fetched", "rows", len(rows), "url", url)
	}
	return NewTable(symbol.KindStock, rows, now()), nil
}

// ParseFINRA parses the FINRA file. The first non-blank line is the header
// naming the columns and the last non-blank line is a trailer; both are
// dropped. Rows missing a symbol or name are skipped.
func ParseFINRA(body []byte) ([]Row, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("reading stock list: %w", err))
	}
	if len(lines) < 2 {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("stock list has no rows"))
	}

	header := strings.Split(lines[0], "|")
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	symCol, ok1 := col["Symbol"]
	nameCol, ok2 := col["Issue_Name"]
	if !ok1 || !ok2 {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("stock list header %q lacks Symbol/Issue_Name", lines[0]))
	}
	venueCol, hasVenue := col["Primary_Listing_Mkt"]

	data := lines[1 : len(lines)-1]
	rows := make([]Row, 0, len(data))
	for _, line := range data {
		f := strings.Split(line, "|")
		if symCol >= len(f) || nameCol >= len(f) {
			continue
		}
		r := Row{Symbol: strings.TrimSpace(f[symCol]), Name: strings.TrimSpace(f[nameCol])}
		if r.Symbol == "" || r.Name == "" {
			continue
		}
		if hasVenue && venueCol < len(f) {
			r.Venue = strings.TrimSpace(f[venueCol])
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// CoinLister is the part of the CoinGecko client the coin loader needs.
type CoinLister interface {
	List(ctx context.Context) ([]coingecko.ListedCoin, error)
}

// CoinGeckoLoader builds the crypto table from CoinGecko's coin list.
type CoinGeckoLoader struct {
	Client CoinLister
	Now    func() time.Time
	Log    *zap.SugaredLogger
}

func (l *CoinGeckoLoader) Load(ctx context.Context) (*Table, error) {
	coins, err := l.Client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("coin list: %w", err)
	}

	rows := make([]Row, 0, len(coins))
	for _, c := range coins {
		if c.Symbol == "" || c.ID == "" {
			continue
		}
		rows = append(rows, Row{Symbol: strings.ToLower(c.Symbol), Name: c.Name, ID: c.ID})
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	if l.Log != nil {
		l.Log.Infow("coin list fetched", "rows", len(rows))
	}
	return NewTable(symbol.KindCoin, rows, now()), nil
}
