// Package search ranks reference symbols against free-text queries.
package search

import (
	"context"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"tickerbot/internal/logger"
	"tickerbot/internal/reflist"
)

const (
	// MaxResults bounds every result list.
	MaxResults = 10
	// DefaultCacheSize bounds the query cache.
	DefaultCacheSize = 1024

	// When the five best symbol scores sum below this, the query is more
	// likely a company name than a ticker.
	nameFallbackThreshold = 300
	topN                  = 5
)

// Match is one search hit.
type Match struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// TableSource yields a reference table that is fresh enough to search.
type TableSource interface {
	Fresh(ctx context.Context) (*reflist.Table, error)
}

// Searcher fuzzy-matches queries against the stock reference list.
type Searcher struct {
	stocks TableSource
	cache  *lru.Cache[string, []Match]

	mu   sync.Mutex
	seen *reflist.Table

	log *zap.SugaredLogger
}

type Option func(*searcherOptions)

type searcherOptions struct {
	cacheSize int
	log       *zap.SugaredLogger
}

func WithCacheSize(n int) Option {
	return func(o *searcherOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *searcherOptions) {
		if l != nil {
			o.log = l
		}
	}
}

func New(stocks TableSource, opts ...Option) *Searcher {
	o := searcherOptions{cacheSize: DefaultCacheSize, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[string, []Match](o.cacheSize)
	return &Searcher{stocks: stocks, cache: cache, log: o.log}
}

// observe purges cached results when the reference snapshot has been replaced.
func (s *Searcher) observe(t *reflist.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen != t {
		if s.seen != nil {
			s.log.Debugw("stock list replaced, purging search cache", "entries", s.cache.Len())
		}
		s.cache.Purge()
		s.seen = t
	}
}

// store caches out only if table is still the snapshot last observed, so a
// search that raced with a list refresh cannot repopulate the purged cache.
func (s *Searcher) store(table *reflist.Table, query string, out []Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == table {
		s.cache.Add(query, out)
	}
}

type scored struct {
	row   reflist.Row
	score int
}

// SearchSymbols returns up to MaxResults stocks ranked by how well their
// ticker, or failing that their name, matches query. Results for a query are
// cached until the stock list changes.
func (s *Searcher) SearchSymbols(ctx context.Context, query string) ([]Match, error) {
	table, err := s.stocks.Fresh(ctx)
	if err != nil {
		return nil, err
	}
	s.observe(table)

	if hit, ok := s.cache.Get(query); ok {
		return slices.Clone(hit), nil
	}

	q := strings.ToLower(query)
	rows := table.Rows()
	ranked := make([]scored, len(rows))
	for i, r := range rows {
		ranked[i] = scored{row: r, score: Ratio(q, strings.ToLower(r.Symbol))}
	}
	byScore := func(a, b scored) int { return b.score - a.score }
	slices.SortStableFunc(ranked, byScore)

	sum := 0
	for i := 0; i < topN && i < len(ranked); i++ {
		sum += ranked[i].score
	}
	if sum < nameFallbackThreshold {
		for i, r := range rows {
			ranked[i] = scored{row: r, score: PartialRatio(q, strings.ToLower(r.Name))}
		}
		slices.SortStableFunc(ranked, byScore)
	}

	n := min(MaxResults, len(ranked))
	out := make([]Match, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, Match{Symbol: r.row.Symbol, Description: r.row.Description()})
	}

	s.store(table, query, out)
	return slices.Clone(out), nil
}
