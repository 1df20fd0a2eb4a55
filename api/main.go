package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DeafMist/pakgpt-news/backend/internal/config"
	"github.com/DeafMist/pakgpt-news/backend/internal/logger"
	"github.com/DeafMist/pakgpt-news/backend/internal/metrics"
	"github.com/DeafMist/pakgpt-news/backend/internal/storage"
)

func main() {
	log := logger.New("api")
	if err := config.LoadDotEnv(); err != nil {
		log.Warn("dotenv", slog.Any("err", err))
	}
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	backend, err := storage.Open(ctx, cfg.Common, storage.DefaultOptions, log)
	if err != nil {
		log.Error("open store", slog.Any("err", err))
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	srv := newServer(log, cfg, backend, m)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(prometheus.DefaultGatherer),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr), slog.String("store", cfg.StoreDriver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
