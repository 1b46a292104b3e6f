// Package extract finds $STOCK and $$COIN mentions in free text.
package extract

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"tickerbot/internal/logger"
	"tickerbot/internal/reflist"
	"tickerbot/internal/symbol"
)

var (
	// A single $ not preceded by another $, then one to four letters.
	stockPattern = regexp.MustCompile(`(?:^|[^$])\$([a-zA-Z]{1,4})`)
	// Two $ then one to nine letters.
	coinPattern = regexp.MustCompile(`\$\$([a-zA-Z]{1,9})`)
)

// TableSource yields a reference table that is fresh enough to validate against.
type TableSource interface {
	Fresh(ctx context.Context) (*reflist.Table, error)
}

type Extractor struct {
	stocks TableSource
	coins  TableSource
	log    *zap.SugaredLogger
}

type Option func(*Extractor)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

func New(stocks, coins TableSource, opts ...Option) *Extractor {
	e := &Extractor{stocks: stocks, coins: coins, log: logger.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// tokens returns the first capture group of every match, deduplicated by
// fold, in order of first appearance.
func tokens(re *regexp.Regexp, text string, fold func(string) string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		k := fold(m[1])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// FindSymbols returns every listed stock then every listed coin mentioned in
// text, each once, in order of first appearance. Unlisted tokens are dropped.
//
// A class whose reference table cannot be obtained yields nothing; an error is
// returned only when that leaves the result empty.
func (e *Extractor) FindSymbols(ctx context.Context, text string) ([]symbol.Symbol, error) {
	var (
		out  []symbol.Symbol
		errs []error
	)

	if stocks := tokens(stockPattern, text, strings.ToUpper); len(stocks) > 0 {
		table, err := e.stocks.Fresh(ctx)
		if err != nil {
			e.log.Warnw("stock list unavailable, skipping stock symbols", "tokens", stocks, "err", err)
			errs = append(errs, err)
		} else {
			for _, s := range stocks {
				if !table.Contains(s) {
					e.log.Debugw("symbol not recognized", "kind", symbol.KindStock, "symbol", s)
					continue
				}
				out = append(out, symbol.NewStock(s))
			}
		}
	}

	if coins := tokens(coinPattern, text, strings.ToLower); len(coins) > 0 {
		table, err := e.coins.Fresh(ctx)
		if err != nil {
			e.log.Warnw("coin list unavailable, skipping coin symbols", "tokens", coins, "err", err)
			errs = append(errs, err)
		} else {
			for _, c := range coins {
				row, ok := table.Lookup(c)
				if !ok {
					e.log.Debugw("symbol not recognized", "kind", symbol.KindCoin, "symbol", c)
					continue
				}
				out = append(out, symbol.NewCoin(c, row.ID))
			}
		}
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
