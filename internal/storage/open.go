// Package storage picks and connects the configured document store.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DeafMist/pakgpt-news/backend/internal/config"
	"github.com/DeafMist/pakgpt-news/backend/internal/elasticsearch"
	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/store"
)

// Options tune the connection retry loop.
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
}

// DefaultOptions retries for roughly two minutes.
var DefaultOptions = Options{MaxRetries: 10, RetryDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

// Open returns the backend selected by cfg.StoreDriver. For Elasticsearch it
// waits until the cluster answers a ping and makes sure the news index exists.
func Open(ctx context.Context, cfg config.Common, opts Options, log *slog.Logger) (store.Backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, documents are lost on restart")
		return store.NewMemory(), nil
	}

	es, err := elasticsearch.New(cfg.DatabaseURL, cfg.DatabaseName, log)
	if err != nil {
		return nil, err
	}

	if err := waitForPing(ctx, es, opts, log); err != nil {
		return nil, err
	}

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := es.EnsureIndex(indexCtx, models.NewsCollection, elasticsearch.NewsMapping); err != nil {
		return nil, err
	}

	log.Info("connected to elasticsearch", slog.String("database", cfg.DatabaseName))
	return es, nil
}

func waitForPing(ctx context.Context, es *elasticsearch.Client, opts Options, log *slog.Logger) error {
	delay := opts.RetryDelay
	var lastErr error
	for attempt, n := 0, max(opts.MaxRetries, 1); attempt < n; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lastErr = es.Ping(pingCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		log.Warn("elasticsearch ping failed, retrying",
			slog.Any("err", lastErr),
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", opts.MaxRetries),
			slog.Duration("retry_in", delay),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}
	return fmt.Errorf("elasticsearch unavailable after %d attempts: %w", opts.MaxRetries, lastErr)
}
