// Package symbol defines the asset references that flow from the extractor
// to the router.
//
// Symbol is a closed set: only Stock and Coin implement it. Ticker is what the
// user typed (tsla, btc); ID is what the backend expects (TSLA, bitcoin).
package symbol

import (
	"fmt"
	"strings"
)

// Currency is the fixed quote currency for crypto prices.
const Currency = "usd"

// Kind names the asset class of a Symbol.
type Kind string

const (
	KindStock Kind = "stock"
	KindCoin  Kind = "coin"
)

// Symbol is a resolved asset reference.
type Symbol interface {
	Ticker() string
	ID() string
	Kind() Kind
	fmt.Stringer

	sealed()
}

// Stock is an equity ticker. Its ID is the upper-cased ticker.
type Stock struct {
	ticker string
}

// NewStock builds a Stock. It never touches the network.
func NewStock(ticker string) Stock {
	return Stock{ticker: ticker}
}

func (s Stock) Ticker() string { return s.ticker }
func (s Stock) ID() string     { return strings.ToUpper(s.ticker) }
func (s Stock) Kind() Kind     { return KindStock }
func (s Stock) String() string { return s.ID() }
func (Stock) sealed()          {}

// Coin is a cryptocurrency. The ID is the provider's canonical coin id,
// resolved from the crypto reference table before construction.
//
// Descriptive data (name, description, price) is not part of Coin; it is
// fetched explicitly through provider.CryptoClient.Coin.
type Coin struct {
	ticker string
	id     string
}

// NewCoin builds a Coin from a ticker and its resolved id.
func NewCoin(ticker, id string) Coin {
	return Coin{ticker: strings.ToLower(ticker), id: id}
}

func (c Coin) Ticker() string { return c.ticker }
func (c Coin) ID() string     { return c.id }
func (c Coin) Kind() Kind     { return KindCoin }
func (c Coin) String() string { return c.id }
func (Coin) sealed()          {}
