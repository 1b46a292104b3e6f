// Package reflist holds the reference symbol lists that decide which tokens
// in a message are real stocks or coins.
//
// A Table is an immutable snapshot. A Cache owns the current snapshot for one
// asset class, refreshes it when its TTL lapses and swaps it in atomically so
// readers never block.
package reflist

import (
	"strings"
	"time"

	"tickerbot/internal/symbol"
)

// Row is one reference entry. ID is only set for coins.
type Row struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Venue  string `json:"venue,omitempty"`
	ID     string `json:"id,omitempty"`
}

// Description renders "SYMBOL: Name".
func (r Row) Description() string { return r.Symbol + ": " + r.Name }

// Table is a read-only snapshot of a reference list.
type Table struct {
	kind      symbol.Kind
	rows      []Row
	index     map[string]int
	FetchedAt time.Time
}

// NewTable indexes rows for lookup. Stock symbols are matched upper-cased and
// coin symbols lower-cased; when a symbol repeats, the first row wins.
func NewTable(kind symbol.Kind, rows []Row, fetchedAt time.Time) *Table {
	t := &Table{kind: kind, rows: rows, index: make(map[string]int, len(rows)), FetchedAt: fetchedAt}
	for i, r := range rows {
		k := t.fold(r.Symbol)
		if _, dup := t.index[k]; !dup {
			t.index[k] = i
		}
	}
	return t
}

func (t *Table) fold(s string) string {
	if t.kind == symbol.KindCoin {
		return strings.ToLower(s)
	}
	return strings.ToUpper(s)
}

func (t *Table) Kind() symbol.Kind { return t.kind }

// Rows returns the rows in source order. Callers must not modify the slice.
func (t *Table) Rows() []Row { return t.rows }

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Contains reports whether sym is listed.
func (t *Table) Contains(sym string) bool {
	_, ok := t.Lookup(sym)
	return ok
}

// Lookup returns the first row listing sym.
func (t *Table) Lookup(sym string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	i, ok := t.index[t.fold(sym)]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}
