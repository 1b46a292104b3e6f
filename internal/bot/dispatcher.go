// Package bot turns inbound chat messages into outbound replies. It knows
// nothing about the chat transport; cmd/bot and the HTTP server adapt it.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tickerbot/internal/logger"
	"tickerbot/internal/provider"
	"tickerbot/internal/render"
	"tickerbot/internal/reply"
	"tickerbot/internal/search"
	"tickerbot/internal/symbol"
)

// Router is the symbol pipeline the dispatcher drives.
type Router interface {
	FindSymbols(ctx context.Context, text string) ([]symbol.Symbol, error)
	SearchSymbols(ctx context.Context, query string) ([]search.Match, error)
	SearchCoins(ctx context.Context, query string) ([]search.Match, error)
	PriceReply(ctx context.Context, syms []symbol.Symbol) []string
	DividendReply(ctx context.Context, syms []symbol.Symbol) []string
	NewsReply(ctx context.Context, syms []symbol.Symbol) []string
	InfoReply(ctx context.Context, syms []symbol.Symbol) []string
	StatReply(ctx context.Context, syms []symbol.Symbol) []string
	IntraReply(ctx context.Context, sym symbol.Symbol) provider.Series
	ChartReply(ctx context.Context, sym symbol.Symbol) provider.Series
	Status(ctx context.Context) string
}

// Message is one outbound reply. Photo, when set, is a PNG and Text is its
// caption.
type Message struct {
	Text     string `json:"text"`
	Markdown bool   `json:"markdown"`
	Photo    []byte `json:"photo,omitempty"`
}

const (
	searchUsage = "Usage: /search <company name or ticker>"
	failed      = "Sorry, something went wrong handling that message."
)

type Dispatcher struct {
	router Router
	log    *zap.SugaredLogger
}

func New(r Router, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{router: r, log: log}
}

// Command splits "/cmd@botname rest" into ("cmd", "rest"). Plain text yields
// an empty command.
func Command(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}

// Handle processes one message to completion. It never panics; a failure
// while handling yields a single apology message.
func (d *Dispatcher) Handle(ctx context.Context, text string) (out []Message) {
	reqID := uuid.NewString()
	log := d.log.With("request_id", reqID)
	cmd, args := Command(text)

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorw("panic while handling message", "command", cmd, "panic", rec)
			out = []Message{{Text: failed}}
		}
	}()

	log.Debugw("handling message", "command", cmd)

	switch cmd {
	case "start":
		return []Message{{Text: reply.Start}}
	case "help":
		return []Message{{Text: reply.Help, Markdown: true}}
	case "status":
		return []Message{{Text: d.router.Status(ctx)}}
	case "dividend", "div":
		return d.perSymbol(ctx, log, text, d.router.DividendReply)
	case "news":
		return d.perSymbol(ctx, log, text, d.router.NewsReply)
	case "info":
		return d.perSymbol(ctx, log, text, d.router.InfoReply)
	case "stat", "stats":
		return d.perSymbol(ctx, log, text, d.router.StatReply)
	case "search":
		return d.search(ctx, log, args)
	case "intra":
		return d.chart(ctx, log, text, "intraday", d.router.IntraReply)
	case "chart":
		return d.chart(ctx, log, text, "past month", d.router.ChartReply)
	case "":
		return d.perSymbol(ctx, log, text, d.router.PriceReply)
	default:
		log.Debugw("unknown command ignored", "command", cmd)
		return nil
	}
}

func (d *Dispatcher) symbols(ctx context.Context, log *zap.SugaredLogger, text string) []symbol.Symbol {
	syms, err := d.router.FindSymbols(ctx, text)
	if err != nil {
		log.Warnw("symbol lookup failed", "err", err)
		return nil
	}
	return syms
}

func (d *Dispatcher) perSymbol(
	ctx context.Context,
	log *zap.SugaredLogger,
	text string,
	op func(context.Context, []symbol.Symbol) []string,
) []Message {
	syms := d.symbols(ctx, log, text)
	if len(syms) == 0 {
		return nil
	}
	replies := op(ctx, syms)
	out := make([]Message, 0, len(replies))
	for _, r := range replies {
		out = append(out, Message{Text: r, Markdown: true})
	}
	return out
}

func (d *Dispatcher) search(ctx context.Context, log *zap.SugaredLogger, query string) []Message {
	if query == "" {
		return []Message{{Text: searchUsage}}
	}

	var b strings.Builder
	stocks, err := d.router.SearchSymbols(ctx, query)
	if err != nil {
		log.Warnw("stock search failed", "query", query, "err", err)
	}
	for _, m := range stocks {
		fmt.Fprintf(&b, "`$%s` %s\n", m.Symbol, m.Description)
	}

	coins, err := d.router.SearchCoins(ctx, query)
	if err != nil {
		log.Debugw("coin search failed", "query", query, "err", err)
	}
	if len(coins) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		for _, m := range coins {
			fmt.Fprintf(&b, "`$$%s` %s\n", strings.ToUpper(m.Symbol), m.Description)
		}
	}

	if b.Len() == 0 {
		return []Message{{Text: fmt.Sprintf("No symbols found for: %s", query)}}
	}
	return []Message{{Text: b.String(), Markdown: true}}
}

func (d *Dispatcher) chart(
	ctx context.Context,
	log *zap.SugaredLogger,
	text, span string,
	op func(context.Context, symbol.Symbol) provider.Series,
) []Message {
	syms := d.symbols(ctx, log, text)
	if len(syms) == 0 {
		return nil
	}

	sym := syms[0]
	label := strings.ToUpper(sym.Ticker())
	series := op(ctx, sym)
	if series.Empty() {
		return []Message{{Text: fmt.Sprintf("No %s data found for: %s", span, label)}}
	}

	png, err := render.PNG(label, series)
	if err != nil {
		if !errors.Is(err, render.ErrNotEnoughData) {
			log.Warnw("chart render failed", "symbol", label, "err", err)
		}
		return []Message{{Text: fmt.Sprintf("Not enough %s data to chart: %s", span, label)}}
	}
	return []Message{{Text: fmt.Sprintf("%s %s chart", label, span), Photo: png}}
}
