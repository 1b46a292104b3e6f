// Package telegram connects the dispatcher to the Telegram Bot API using long
// polling.
package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tickerbot/internal/bot"
	"tickerbot/internal/logger"
)

// DefaultWorkers caps how many updates are handled at once.
const DefaultWorkers = 8

// Sender is the part of tgbotapi.BotAPI used to reply.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler processes one chat message.
type Handler interface {
	Handle(ctx context.Context, text string) []bot.Message
}

type Poller struct {
	api     Sender
	handler Handler
	workers int
	log     *zap.SugaredLogger
}

func New(api Sender, h Handler, workers int, log *zap.SugaredLogger) *Poller {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Poller{api: api, handler: h, workers: workers, log: log}
}

// Run consumes updates until ctx is done or the channel closes, then waits
// for in-flight messages to finish.
func (p *Poller) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			wg.Add(1)
			go func(m *tgbotapi.Message) {
				defer func() { <-sem; wg.Done() }()
				p.HandleMessage(ctx, m)
			}(u.Message)
		}
	}
}

// HandleMessage answers a single inbound message in its chat.
func (p *Poller) HandleMessage(ctx context.Context, m *tgbotapi.Message) {
	for _, out := range p.handler.Handle(ctx, m.Text) {
		p.send(m.Chat.ID, out)
	}
}

func (p *Poller) send(chatID int64, out bot.Message) {
	if len(out.Photo) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: out.Photo})
		photo.Caption = out.Text
		if _, err := p.api.Send(photo); err != nil {
			p.log.Warnw("sending photo failed", "chat_id", chatID, "err", err)
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, out.Text)
	msg.DisableWebPagePreview = true
	if out.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := p.api.Send(msg); err != nil {
		if !out.Markdown {
			p.log.Warnw("sending message failed", "chat_id", chatID, "err", err)
			return
		}
		// Telegram rejects unbalanced markdown; retry as plain text.
		p.log.Debugw("markdown rejected, resending as plain text", "chat_id", chatID, "err", err)
		msg.ParseMode = ""
		if _, err := p.api.Send(msg); err != nil {
			p.log.Warnw("sending message failed", "chat_id", chatID, "err", err)
		}
	}
}
