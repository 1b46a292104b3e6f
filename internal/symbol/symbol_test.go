package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStock_IDIsUpperCased(t *testing.T) {
	s := NewStock("tsla")
	require.Equal(t, "tsla", s.Ticker())
	require.Equal(t, "TSLA", s.ID())
	require.Equal(t, KindStock, s.Kind())
	require.Equal(t, "TSLA", s.String())
}

func TestCoin_KeepsResolvedID(t *testing.T) {
	c := NewCoin("BTC", "bitcoin")
	require.Equal(t, "btc", c.Ticker())
	require.Equal(t, "bitcoin", c.ID())
	require.Equal(t, KindCoin, c.Kind())
}

func TestSymbol_Variants(t *testing.T) {
	syms := []Symbol{NewStock("aapl"), NewCoin("eth", "ethereum")}
	var stocks, coins int
	for _, s := range syms {
		switch s.(type) {
		case Stock:
			stocks++
		case Coin:
			coins++
		default:
			t.Fatalf("unexpected variant %T", s)
		}
	}
	require.Equal(t, 1, stocks)
	require.Equal(t, 1, coins)
}
