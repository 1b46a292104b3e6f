// Package router sends each resolved symbol to the backend for its asset
// class and turns the answers into reply text.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/httpx"
	"tickerbot/internal/logger"
	"tickerbot/internal/provider"
	"tickerbot/internal/reply"
	"tickerbot/internal/search"
	"tickerbot/internal/symbol"
)

type SymbolFinder interface {
	FindSymbols(ctx context.Context, text string) ([]symbol.Symbol, error)
}

type StockSearcher interface {
	SearchSymbols(ctx context.Context, query string) ([]search.Match, error)
}

type CoinSearcher interface {
	SearchCoins(ctx context.Context, query string) ([]search.Match, error)
}

// Router is safe for concurrent use when its collaborators are.
type Router struct {
	stock  provider.StockClient
	crypto provider.CryptoClient

	finder   SymbolFinder
	searcher StockSearcher
	coins    CoinSearcher

	timeout time.Duration
	now     func() time.Time
	log     *zap.SugaredLogger
}

type Option func(*Router)

func WithFinder(f SymbolFinder) Option       { return func(r *Router) { r.finder = f } }
func WithSearcher(s StockSearcher) Option    { return func(r *Router) { r.searcher = s } }
func WithCoinSearcher(s CoinSearcher) Option { return func(r *Router) { r.coins = s } }
func WithClock(now func() time.Time) Option  { return func(r *Router) { r.now = now } }

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

func New(stock provider.StockClient, crypto provider.CryptoClient, opts ...Option) *Router {
	r := &Router{
		stock:   stock,
		crypto:  crypto,
		timeout: httpx.DefaultTimeout,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Router) FindSymbols(ctx context.Context, text string) ([]symbol.Symbol, error) {
	if r.finder == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "symbol finder not configured")
	}
	return r.finder.FindSymbols(ctx, text)
}

func (r *Router) SearchSymbols(ctx context.Context, query string) ([]search.Match, error) {
	if r.searcher == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "stock search not configured")
	}
	return r.searcher.SearchSymbols(ctx, query)
}

func (r *Router) SearchCoins(ctx context.Context, query string) ([]search.Match, error) {
	if r.coins == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "coin search not configured")
	}
	return r.coins.SearchCoins(ctx, query)
}

func (r *Router) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Router) anomaly(op string, sym symbol.Symbol) {
	r.log.Errorw("unknown symbol variant, skipping",
		"op", op, "type", fmt.Sprintf("%T", sym), "code", apperrors.ErrUnknownSymbolVariant.Code)
}

func (r *Router) unsupported(op string, c symbol.Coin) {
	r.log.Debugw("operation not offered for coins",
		"op", op, "symbol", c.String(), "code", apperrors.ErrUnsupportedOperation.Code)
}

func (r *Router) backendFailed(op string, sym symbol.Symbol, err error) {
	r.log.Warnw("backend call failed", "op", op, "symbol", sym.String(), "kind", sym.Kind(), "err", err)
}

// each builds one reply per Stock or Coin in syms, in order. Anything else
// is logged and skipped.
func (r *Router) each(
	ctx context.Context,
	op string,
	syms []symbol.Symbol,
	stock func(context.Context, symbol.Stock) string,
	coin func(context.Context, symbol.Coin) string,
) []string {
	out := make([]string, 0, len(syms))
	for _, sym := range syms {
		switch s := sym.(type) {
		case symbol.Stock:
			out = append(out, stock(ctx, s))
		case symbol.Coin:
			out = append(out, coin(ctx, s))
		default:
			r.anomaly(op, sym)
		}
	}
	return out
}

func (r *Router) coinDetail(ctx context.Context, op string, c symbol.Coin) (*provider.CoinDetail, bool) {
	cctx, cancel := r.call(ctx)
	defer cancel()
	d, err := r.crypto.Coin(cctx, c.ID())
	if err != nil {
		r.backendFailed(op, c, err)
		return nil, false
	}
	return d, true
}

// PriceReply returns the current price of each symbol.
func (r *Router) PriceReply(ctx context.Context, syms []symbol.Symbol) []string {
	return r.each(ctx, "price", syms,
		func(ctx context.Context, s symbol.Stock) string {
			cctx, cancel := r.call(ctx)
			defer cancel()
			q, err := r.stock.Quote(cctx, s.ID())
			if err != nil {
				r.backendFailed("price", s, err)
				return reply.NotFound(s.ID())
			}
			return reply.StockPrice(q)
		},
		func(ctx context.Context, c symbol.Coin) string {
			d, ok := r.coinDetail(ctx, "price", c)
			if !ok {
				return reply.NotFound(strings.ToUpper(c.Ticker()))
			}
			return reply.CoinPrice(d)
		},
	)
}

// DividendReply returns the next or most recent dividend date of each stock.
// Coins get a fixed answer without a backend call.
func (r *Router) DividendReply(ctx context.Context, syms []symbol.Symbol) []string {
	return r.each(ctx, "dividend", syms,
		func(ctx context.Context, s symbol.Stock) string {
			cctx, cancel := r.call(ctx)
			defer cancel()
			div, err := r.stock.NextDividend(cctx, s.ID())
			if err != nil {
				r.backendFailed("dividend", s, err)
				return reply.NoDividend(s.ID())
			}
			return reply.Dividend(div, r.now())
		},
		func(_ context.Context, c symbol.Coin) string {
			r.unsupported("dividend", c)
			return reply.CoinDividend
		},
	)
}

// NewsReply returns recent headlines for each stock. Coins get a fixed answer
// without a backend call.
func (r *Router) NewsReply(ctx context.Context, syms []symbol.Symbol) []string {
	return r.each(ctx, "news", syms,
		func(ctx context.Context, s symbol.Stock) string {
			cctx, cancel := r.call(ctx)
			defer cancel()
			items, err := r.stock.News(cctx, s.ID())
			if err != nil {
				r.backendFailed("news", s, err)
				return reply.NoNews(s.ID())
			}
			return reply.News(s.ID(), items)
		},
		func(_ context.Context, c symbol.Coin) string {
			r.unsupported("news", c)
			return reply.CoinNews
		},
	)
}

// InfoReply returns a descriptive profile of each symbol.
func (r *Router) InfoReply(ctx context.Context, syms []symbol.Symbol) []string {
	return r.each(ctx, "info", syms,
		func(ctx context.Context, s symbol.Stock) string {
			cctx, cancel := r.call(ctx)
			defer cancel()
			co, err := r.stock.Company(cctx, s.ID())
			if err != nil {
				r.backendFailed("info", s, err)
				return reply.NoInfo(s.ID())
			}
			return reply.Info(co)
		},
		func(ctx context.Context, c symbol.Coin) string {
			d, ok := r.coinDetail(ctx, "info", c)
			if !ok {
				return reply.NoInfo(strings.ToUpper(c.Ticker()))
			}
			return reply.CoinInfo(d)
		},
	)
}

// StatReply returns key statistics for each symbol.
func (r *Router) StatReply(ctx context.Context, syms []symbol.Symbol) []string {
	return r.each(ctx, "stat", syms,
		func(ctx context.Context, s symbol.Stock) string {
			cctx, cancel := r.call(ctx)
			defer cancel()
			st, err := r.stock.Stats(cctx, s.ID())
			if err != nil {
				r.backendFailed("stat", s, err)
				return reply.NoStats(s.ID())
			}
			return reply.Stats(s.ID(), st)
		},
		func(ctx context.Context, c symbol.Coin) string {
			d, ok := r.coinDetail(ctx, "stat", c)
			if !ok {
				return reply.NoStats(strings.ToUpper(c.Ticker()))
			}
			return reply.CoinStats(d)
		},
	)
}

func (r *Router) series(ctx context.Context, op string, sym symbol.Symbol, stock, coin func(context.Context, string) (provider.Series, error)) provider.Series {
	var fetch func(context.Context, string) (provider.Series, error)
	switch sym.(type) {
	case symbol.Stock:
		fetch = stock
	case symbol.Coin:
		fetch = coin
	default:
		r.anomaly(op, sym)
		return provider.Series{}
	}

	cctx, cancel := r.call(ctx)
	defer cancel()
	s, err := fetch(cctx, sym.ID())
	if err != nil {
		r.backendFailed(op, sym, err)
		return provider.Series{}
	}
	return s
}

// IntraReply returns price data since the last market open. The series is
// empty when no data is available.
func (r *Router) IntraReply(ctx context.Context, sym symbol.Symbol) provider.Series {
	return r.series(ctx, "intra", sym, r.stock.Intraday, r.crypto.Intraday)
}

// ChartReply returns about a month of daily prices up to the previous close.
// The series is empty when no data is available.
func (r *Router) ChartReply(ctx context.Context, sym symbol.Symbol) provider.Series {
	return r.series(ctx, "chart", sym, r.stock.Chart, r.crypto.Chart)
}

// Status probes both backends and reports whether each answers.
func (r *Router) Status(ctx context.Context) string {
	type pinger interface {
		Name() string
		Ping(ctx context.Context) error
	}

	var b strings.Builder
	for _, p := range []pinger{r.stock, r.crypto} {
		cctx, cancel := r.call(ctx)
		err := p.Ping(cctx)
		cancel()
		if err != nil {
			r.log.Warnw("backend status check failed", "backend", p.Name(), "err", err)
			fmt.Fprintf(&b, "%s: down\n", p.Name())
			continue
		}
		fmt.Fprintf(&b, "%s: up\n", p.Name())
	}
	return strings.TrimRight(b.String(), "\n")
}
