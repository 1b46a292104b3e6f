package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tickerbot/internal/app"
	"tickerbot/internal/config"
	"tickerbot/internal/logger"
	"tickerbot/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	logger.Init(cfg.Log.Env)
	defer logger.Sync()
	log := logger.Get()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IEX.Token == "" {
		log.Warn("IEX_TOKEN not set; stock requests will be rejected upstream")
	}
	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatalf("build: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Warm(ctx)
	if err := a.Start(); err != nil {
		log.Fatalf("refresh schedule: %v", err)
	}
	defer a.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.New(a.Dispatcher, a.Router, log.Named("http")).Engine(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 20*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
