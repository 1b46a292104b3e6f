package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"tickerbot/internal/logger"
	"tickerbot/internal/reflist"
)

const indexBatchSize = 1000

type coinDoc struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// CoinIndex is an in-memory full-text index of the crypto reference list.
// It is rebuilt whenever the list snapshot changes.
type CoinIndex struct {
	coins TableSource

	mu    sync.Mutex
	index bleve.Index
	built *reflist.Table

	log *zap.SugaredLogger
}

func NewCoinIndex(coins TableSource, log *zap.SugaredLogger) *CoinIndex {
	if log == nil {
		log = logger.Nop()
	}
	return &CoinIndex{coins: coins, log: log}
}

func buildCoinMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	coinMapping := bleve.NewDocumentMapping()

	symbolField := bleve.NewTextFieldMapping()
	symbolField.Analyzer = keyword.Name
	coinMapping.AddFieldMappingsAt("symbol", symbolField)

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = standard.Name
	coinMapping.AddFieldMappingsAt("name", nameField)

	indexMapping.DefaultMapping = coinMapping
	return indexMapping
}

func (ci *CoinIndex) indexFor(t *reflist.Table) (bleve.Index, error) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	if ci.index != nil && ci.built == t {
		return ci.index, nil
	}

	idx, err := bleve.NewMemOnly(buildCoinMapping())
	if err != nil {
		return nil, fmt.Errorf("creating coin index: %w", err)
	}

	batch := idx.NewBatch()
	seen := make(map[string]struct{}, t.Len())
	for _, r := range t.Rows() {
		if _, dup := seen[r.Symbol]; dup {
			continue
		}
		seen[r.Symbol] = struct{}{}
		if err := batch.Index(r.Symbol, coinDoc{Symbol: r.Symbol, Name: r.Name}); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", r.Symbol, err)
		}
		if batch.Size() >= indexBatchSize {
			if err := idx.Batch(batch); err != nil {
				return nil, fmt.Errorf("indexing coin batch: %w", err)
			}
			batch.Reset()
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("indexing coin batch: %w", err)
	}

	if ci.index != nil {
		_ = ci.index.Close()
	}
	ci.index, ci.built = idx, t
	ci.log.Infow("coin index built", "coins", len(seen))
	return idx, nil
}

// SearchCoins returns up to MaxResults coins whose symbol equals or starts
// with query, or whose name is close to it.
func (ci *CoinIndex) SearchCoins(ctx context.Context, query string) ([]Match, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	table, err := ci.coins.Fresh(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := ci.indexFor(table)
	if err != nil {
		return nil, err
	}

	exact := bleve.NewTermQuery(q)
	exact.SetField("symbol")
	exact.SetBoost(10.0)

	prefix := bleve.NewPrefixQuery(q)
	prefix.SetField("symbol")
	prefix.SetBoost(3.0)

	name := bleve.NewMatchQuery(q)
	name.SetField("name")
	name.SetFuzziness(1)
	name.SetBoost(5.0)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(exact, prefix, name), MaxResults, 0, false)
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching coins: %w", err)
	}

	out := make([]Match, 0, len(res.Hits))
	for _, hit := range res.Hits {
		row, ok := table.Lookup(hit.ID)
		if !ok {
			continue
		}
		out = append(out, Match{Symbol: row.Symbol, Description: row.Description()})
	}
	return out, nil
}
