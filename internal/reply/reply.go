// Package reply renders backend data as the markdown text sent to chat.
package reply

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/shopspring/decimal"

	"tickerbot/internal/provider"
)

const (
	Start = "I am started and ready to go!"
	Help  = "[Please see the docs for Bot information](https://simple-stock-bots.gitlab.io/site/telegram/)"

	CoinDividend = "Cryptocurrencies do no have Dividends."
	CoinNews     = "News is not yet supported for cryptocurrencies."

	// maxDescription keeps long company and coin descriptions within a
	// single chat message.
	maxDescription = 1500
)

var hundred = decimal.NewFromInt(100)

func NotFound(sym string) string {
	return fmt.Sprintf("The symbol: %s was not found.", sym)
}

// movement renders a percentage change for the subject ("stock", "coin").
func movement(subject string, pct decimal.Decimal) string {
	pct = pct.Round(2)
	switch pct.Sign() {
	case 1:
		return fmt.Sprintf(", the %s is currently **up %s%%**", subject, pct.String())
	case -1:
		return fmt.Sprintf(", the %s is currently **down %s%%**", subject, pct.Abs().String())
	default:
		return fmt.Sprintf(", the %s hasn't shown any movement today.", subject)
	}
}

// StockPrice renders a quote. IEX reports the change as a fraction.
func StockPrice(q *provider.Quote) string {
	return fmt.Sprintf("The current stock price of %s is $**%s**", q.CompanyName, q.LatestPrice.String()) +
		movement("stock", q.ChangePercent.Mul(hundred))
}

// CoinPrice renders a hydrated coin. CoinGecko reports the change in percent.
func CoinPrice(c *provider.CoinDetail) string {
	return fmt.Sprintf("The current price of %s is $**%s**", c.Name, c.Price.String()) +
		movement("coin", c.ChangePercent)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Dividend renders a dividend date relative to now, by calendar day.
func Dividend(d *provider.Dividend, now time.Time) string {
	sym := strings.ToUpper(d.Symbol)
	pretty := d.Date.Format("Monday, January 2")
	days := int(dayOf(d.Date).Sub(dayOf(now)).Hours() / 24)
	switch {
	case days < 0:
		return fmt.Sprintf("%s dividend was on %s and a new date hasn't been announced yet.", sym, pretty)
	case days > 0:
		return fmt.Sprintf("%s dividend is on %s which is in %d Days.", sym, pretty, days)
	default:
		return fmt.Sprintf("%s dividend is today.", sym)
	}
}

func NoDividend(sym string) string {
	return fmt.Sprintf("%s either doesn't exist or pays no dividend.", sym)
}

// News renders up to three headlines. An empty list is rendered as NoNews.
func News(sym string, items []provider.NewsItem) string {
	if len(items) == 0 {
		return NoNews(sym)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "News for **%s**:\n", strings.ToUpper(sym))
	for i, n := range items {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "\t[%s](%s)\n\n", n.Headline, n.URL)
	}
	return b.String()
}

func NoNews(sym string) string {
	return fmt.Sprintf("No news found for: %s\nEither today is boring or the symbol does not exist.", sym)
}

func Info(c *provider.Company) string {
	return fmt.Sprintf("Company Name: [%s](%s)\nIndustry: %s\nSector: %s\nCEO: %s\nDescription: %s\n",
		c.CompanyName, c.Website, c.Industry, c.Sector, c.CEO, truncate(c.Description))
}

func NoInfo(sym string) string {
	return fmt.Sprintf("No information found for: %s\nEither today is boring or the symbol does not exist.", sym)
}

// CoinInfo renders the coin profile. The provider's HTML description is
// converted to markdown.
func CoinInfo(c *provider.CoinDetail) string {
	var b strings.Builder
	if c.Homepage != "" {
		fmt.Fprintf(&b, "Name: [%s](%s)\n", c.Name, c.Homepage)
	} else {
		fmt.Fprintf(&b, "Name: %s\n", c.Name)
	}
	fmt.Fprintf(&b, "Symbol: %s\n", strings.ToUpper(c.Symbol))
	if c.MarketCapRank > 0 {
		fmt.Fprintf(&b, "Market Cap Rank: #%d\n", c.MarketCapRank)
	}
	if desc := Markdown(c.Description); desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(desc))
	}
	return b.String()
}

func Stats(sym string, s *provider.Stats) string {
	var b strings.Builder
	name := s.CompanyName
	if name == "" {
		name = strings.ToUpper(sym)
	}
	fmt.Fprintf(&b, "Key statistics for **%s**:\n", name)
	fmt.Fprintf(&b, "Market Cap: %s\n", Money(s.MarketCap))
	fmt.Fprintf(&b, "52 Week Range: $%s - $%s\n", s.Week52Low.StringFixed(2), s.Week52High.StringFixed(2))
	if !s.PERatio.IsZero() {
		fmt.Fprintf(&b, "P/E Ratio: %s\n", s.PERatio.StringFixed(2))
	}
	if !s.DividendYield.IsZero() {
		fmt.Fprintf(&b, "Dividend Yield: %s%%\n", s.DividendYield.Mul(hundred).StringFixed(2))
	}
	if s.NextEarningsDate != "" {
		fmt.Fprintf(&b, "Next Earnings: %s\n", s.NextEarningsDate)
	}
	return b.String()
}

func NoStats(sym string) string {
	return fmt.Sprintf("No statistics found for: %s", sym)
}

func CoinStats(c *provider.CoinDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Key statistics for **%s**:\n", c.Name)
	fmt.Fprintf(&b, "Price: $%s\n", c.Price.String())
	fmt.Fprintf(&b, "24h Change: %s%%\n", c.ChangePercent.StringFixed(2))
	fmt.Fprintf(&b, "24h Range: $%s - $%s\n", c.Low24h.String(), c.High24h.String())
	fmt.Fprintf(&b, "Market Cap: %s\n", Money(c.MarketCap))
	if c.MarketCapRank > 0 {
		fmt.Fprintf(&b, "Market Cap Rank: #%d\n", c.MarketCapRank)
	}
	fmt.Fprintf(&b, "24h Volume: %s\n", Money(c.Volume))
	return b.String()
}

var scales = []struct {
	unit  decimal.Decimal
	label string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
}

// Money abbreviates a dollar amount: 2500000000000 -> $2.50T.
func Money(d decimal.Decimal) string {
	for _, s := range scales {
		if d.Abs().GreaterThanOrEqual(s.unit) {
			return "$" + d.Div(s.unit).StringFixed(2) + s.label
		}
	}
	return "$" + d.StringFixed(2)
}

// Markdown converts an HTML fragment to markdown. Input that fails to
// convert is returned unchanged.
func Markdown(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	out, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return html
	}
	return strings.TrimSpace(out)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDescription {
		return s
	}
	return string(r[:maxDescription]) + "..."
}
