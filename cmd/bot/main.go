package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tickerbot/internal/app"
	"tickerbot/internal/config"
	"tickerbot/internal/logger"
	"tickerbot/internal/telegram"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	logger.Init(cfg.Log.Env)
	defer logger.Sync()
	log := logger.Get()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Telegram.Token == "" {
		log.Fatal("TELEGRAM_TOKEN not set")
	}

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatalf("build: %v", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	log.Infow("authorized", "bot", api.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Warm(ctx)
	if err := a.Start(); err != nil {
		log.Fatalf("refresh schedule: %v", err)
	}
	defer a.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	telegram.New(api, a.Dispatcher, telegram.DefaultWorkers, log.Named("telegram")).Run(ctx, updates)
	log.Info("bot stopped")
}
