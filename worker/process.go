package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/pakgpt-news/backend/internal/config"
	"github.com/DeafMist/pakgpt-news/backend/internal/dedupe"
	"github.com/DeafMist/pakgpt-news/backend/internal/metrics"
	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/processing"
)

type rawArticle struct {
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"published_at"`
	City        string   `json:"city"`
	Interests   []string `json:"interests"`
	Thumbnail   string   `json:"thumbnail"`
	SourceID    string   `json:"source_id"`
}

type articleIngestor interface {
	IngestArticle(ctx context.Context, article models.Article, lang models.Language) (string, error)
}

type worker struct {
	log      *slog.Logger
	ingestor articleIngestor
	cache    *dedupe.Cache
	cfg      *config.Worker
	metrics  *metrics.Metrics
}

// processMessage stores one NewsItem per configured language for the article in msg.
// Languages already ingested for the same story are skipped.
func (w *worker) processMessage(ctx context.Context, msg kafka.Message) error {
	var payload rawArticle
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("decode article: %w", err)
	}

	article := models.Article{
		Source:    strings.TrimSpace(payload.Source),
		Title:     processing.CleanTitle(payload.Title),
		URL:       strings.TrimSpace(payload.URL),
		City:      strings.TrimSpace(payload.City),
		Interests: payload.Interests,
		Thumbnail: strings.TrimSpace(payload.Thumbnail),
		SourceID:  strings.TrimSpace(payload.SourceID),
	}
	if article.Title == "" && article.URL == "" {
		return errors.New("empty payload")
	}

	ts := parseTimestamp(payload.PublishedAt)
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	article.PublishedAt = &ts

	stored := 0
	for _, lang := range w.cfg.Languages {
		key := processing.DedupeKey(article.Title, article.URL, string(lang))
		if w.cache.Seen(key) {
			w.log.Debug("duplicate article", slog.String("title", article.Title), slog.String("language", string(lang)))
			continue
		}

		id, err := w.ingestor.IngestArticle(ctx, article, lang)
		if err != nil {
			return err
		}

		w.cache.Mark(key)
		stored++
		w.metrics.IngestedDocuments.WithLabelValues(string(lang), "worker").Inc()
		w.log.Info("stored news item",
			slog.String("id", id),
			slog.String("title", article.Title),
			slog.String("language", string(lang)),
		)
	}

	// one outcome per message; per-language counts live in IngestedDocuments
	if stored > 0 {
		w.metrics.WorkerMessages.WithLabelValues("stored").Inc()
	} else {
		w.metrics.WorkerMessages.WithLabelValues("duplicate").Inc()
	}
	return nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05",
	}

	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts.UTC()
		}
	}

	return time.Time{}
}
