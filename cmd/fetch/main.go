// Command fetch runs one chat message through the pipeline and prints the
// replies, e.g.
//
//	fetch 'what about $tsla and $$btc today'
//	fetch -out /tmp '/chart $aapl'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tickerbot/internal/app"
	"tickerbot/internal/config"
	"tickerbot/internal/logger"
)

func main() {
	var (
		configPath string
		timeout    int
		outDir     string
		asJSON     bool
	)
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config file (json, toml or yaml)")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (overrides config)")
	flag.StringVar(&outDir, "out", ".", "directory for chart images")
	flag.BoolVar(&asJSON, "json", false, "print replies as JSON")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "usage: fetch [flags] <message>")
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	logger.Init(cfg.Log.Env)
	defer logger.Sync()
	log := logger.Get()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatalf("build: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	msgs := a.Dispatcher.Handle(ctx, text)
	for i := range msgs {
		if len(msgs[i].Photo) == 0 {
			continue
		}
		path := filepath.Join(outDir, fmt.Sprintf("chart-%d.png", i+1))
		if err := os.WriteFile(path, msgs[i].Photo, 0o644); err != nil {
			log.Fatalf("write chart: %v", err)
		}
		msgs[i].Photo = nil
		msgs[i].Text += " (" + path + ")"
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		_ = enc.Encode(msgs)
		return
	}
	if len(msgs) == 0 {
		fmt.Println("(no reply)")
	}
	for _, m := range msgs {
		fmt.Println(m.Text)
		fmt.Println()
	}
}
