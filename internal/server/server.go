// Package server exposes the message pipeline over HTTP so it can be driven
// without a chat client: posting a message returns exactly what the bot would
// send back.
package server

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"tickerbot/internal/bot"
	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/logger"
	"tickerbot/internal/search"
)

// Handler processes one chat message.
type Handler interface {
	Handle(ctx context.Context, text string) []bot.Message
}

// Lookup is the read-only part of the pipeline served directly.
type Lookup interface {
	SearchSymbols(ctx context.Context, query string) ([]search.Match, error)
	SearchCoins(ctx context.Context, query string) ([]search.Match, error)
	Status(ctx context.Context) string
}

type Server struct {
	handler Handler
	lookup  Lookup
	md      goldmark.Markdown
	log     *zap.SugaredLogger
}

func New(h Handler, l Lookup, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		handler: h,
		lookup:  l,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		log: log,
	}
}

// Engine builds the gin router with middleware and routes attached.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogging(s.log), ErrorHandler(s.log))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	v1 := r.Group("/v1")
	v1.POST("/message", s.message)
	v1.GET("/search", s.search)
	v1.GET("/coins/search", s.searchCoins)
	v1.GET("/status", s.status)
	v1.GET("/chart/:symbol", s.chart("chart"))
	v1.GET("/intra/:symbol", s.chart("intra"))
	return r
}

type messageRequest struct {
	Text string `json:"text" binding:"required,max=4096"`
}

type messageOut struct {
	Text     string `json:"text"`
	Markdown bool   `json:"markdown"`
	HTML     string `json:"html,omitempty"`
	HasPhoto bool   `json:"has_photo,omitempty"`
}

func (s *Server) message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}
	asHTML := c.Query("format") == "html"

	msgs := s.handler.Handle(c.Request.Context(), req.Text)
	out := make([]messageOut, 0, len(msgs))
	for _, m := range msgs {
		o := messageOut{Text: m.Text, Markdown: m.Markdown, HasPhoto: len(m.Photo) > 0}
		if asHTML {
			o.HTML = s.toHTML(m)
		}
		out = append(out, o)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (s *Server) toHTML(m bot.Message) string {
	if !m.Markdown {
		return "<p>" + htmlEscape(m.Text) + "</p>\n"
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(m.Text), &buf); err != nil {
		s.log.Warnw("markdown to html failed", "err", err)
		return "<pre>" + htmlEscape(m.Text) + "</pre>"
	}
	return buf.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func htmlEscape(s string) string { return htmlEscaper.Replace(s) }

func query(c *gin.Context) (string, bool) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "missing q query param"))
		return "", false
	}
	return q, true
}

func (s *Server) search(c *gin.Context) {
	q, ok := query(c)
	if !ok {
		return
	}
	matches, err := s.lookup.SearchSymbols(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": nonNil(matches)})
}

func (s *Server) searchCoins(c *gin.Context) {
	q, ok := query(c)
	if !ok {
		return
	}
	matches, err := s.lookup.SearchCoins(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": nonNil(matches)})
}

func nonNil(ms []search.Match) []search.Match {
	if ms == nil {
		return []search.Match{}
	}
	return ms
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.lookup.Status(c.Request.Context())})
}

// chart answers with a PNG. The path segment is a ticker as typed in chat:
// "tsla" and "$tsla" are stocks, "$$btc" is a coin.
func (s *Server) chart(cmd string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sym := strings.TrimSpace(c.Param("symbol"))
		if !strings.HasPrefix(sym, "$") {
			sym = "$" + sym
		}

		msgs := s.handler.Handle(c.Request.Context(), "/"+cmd+" "+sym)
		for _, m := range msgs {
			if len(m.Photo) > 0 {
				c.Header("Content-Disposition", `inline; filename="chart.png"`)
				c.Data(http.StatusOK, "image/png", m.Photo)
				return
			}
		}
		msg := "Symbol not recognized: " + strings.TrimLeft(sym, "$")
		if len(msgs) > 0 {
			msg = msgs[0].Text
		}
		_ = c.Error(apperrors.WithMessage(apperrors.ErrSymbolNotRecognized, msg))
	}
}
