package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/pakgpt-news/backend/internal/config"
	"github.com/DeafMist/pakgpt-news/backend/internal/dedupe"
	"github.com/DeafMist/pakgpt-news/backend/internal/logger"
	"github.com/DeafMist/pakgpt-news/backend/internal/metrics"
	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/news"
	"github.com/DeafMist/pakgpt-news/backend/internal/store"
)

type stubIngestor struct {
	items []models.NewsItem
	err   error
}

func (s *stubIngestor) IngestArticle(_ context.Context, article models.Article, lang models.Language) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.items = append(s.items, news.BuildNewsItem(article, lang))
	return "id", nil
}

func newTestWorker(ing articleIngestor, langs ...models.Language) *worker {
	return &worker{
		log:      logger.Discard(),
		ingestor: ing,
		cache:    dedupe.NewCache(100, time.Hour),
		cfg:      &config.Worker{Languages: langs},
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
}

func message(t *testing.T, payload rawArticle) kafka.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestProcessMessageStoresEveryLanguage(t *testing.T) {
	ing := &stubIngestor{}
	w := newTestWorker(ing, models.LanguageEnglish, models.LanguageUrdu)

	msg := message(t, rawArticle{
		Source:      "Dawn",
		Title:       "Official  results &amp; turnout",
		URL:         "https://www.dawn.com/results",
		PublishedAt: "2024-01-02T15:04:05Z",
		City:        "Islamabad",
		Interests:   []string{"politics"},
	})

	require.NoError(t, w.processMessage(context.Background(), msg))
	require.Len(t, ing.items, 2)

	en := ing.items[0]
	require.Equal(t, "Official results & turnout", en.Title)
	require.Equal(t, models.LanguageEnglish, en.Language)
	require.Equal(t, models.FactVerified, en.FactStatus)
	require.Equal(t, "Time: 2024-01-02T15:04:05Z", en.Bullets[2])
	require.Equal(t, models.LanguageUrdu, ing.items[1].Language)

	require.NoError(t, w.processMessage(context.Background(), msg))
	require.Len(t, ing.items, 2)
	require.Equal(t, 1.0, testutil.ToFloat64(w.metrics.WorkerMessages.WithLabelValues("stored")))
	require.Equal(t, 1.0, testutil.ToFloat64(w.metrics.WorkerMessages.WithLabelValues("duplicate")))
	require.Equal(t, 1.0, testutil.ToFloat64(w.metrics.IngestedDocuments.WithLabelValues("ur", "worker")))
}

func TestProcessMessageCountsOncePerMessage(t *testing.T) {
	ing := &stubIngestor{}
	w := newTestWorker(ing, models.LanguageEnglish, models.LanguageUrdu)
	first := message(t, rawArticle{Title: "PSX closes higher", URL: "https://example.pk/psx"})
	second := message(t, rawArticle{Title: "Rain expected in Karachi", URL: "https://example.pk/rain"})

	require.NoError(t, w.processMessage(context.Background(), first))
	require.NoError(t, w.processMessage(context.Background(), second))
	require.Len(t, ing.items, 4)

	require.Equal(t, 2.0, testutil.ToFloat64(w.metrics.WorkerMessages.WithLabelValues("stored")))
	require.Equal(t, 0.0, testutil.ToFloat64(w.metrics.WorkerMessages.WithLabelValues("duplicate")))
	require.Equal(t, 2.0, testutil.ToFloat64(w.metrics.IngestedDocuments.WithLabelValues("en", "worker")))
	require.Equal(t, 2.0, testutil.ToFloat64(w.metrics.IngestedDocuments.WithLabelValues("ur", "worker")))
}

func TestProcessMessageWritesToStore(t *testing.T) {
	mem := store.NewMemory()
	w := newTestWorker(news.NewIngestor(mem), models.LanguageEnglish)

	require.NoError(t, w.processMessage(context.Background(), message(t, rawArticle{
		Source: "Geo",
		Title:  "Leak hints at new cricket captain",
		URL:    "https://www.geo.tv/leak",
	})))

	docs, err := mem.Query(context.Background(), models.NewsCollection, store.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var item models.NewsItem
	require.NoError(t, docs[0].Decode(&item))
	require.Equal(t, models.FactRumour, item.FactStatus)
	require.Equal(t, 65, item.RiskScore)
	require.NotNil(t, item.PublishedAt)
}

func TestProcessMessageRejectsBadInput(t *testing.T) {
	w := newTestWorker(&stubIngestor{}, models.LanguageEnglish)

	require.Error(t, w.processMessage(context.Background(), kafka.Message{Value: []byte("{not json")}))
	require.EqualError(t, w.processMessage(context.Background(), message(t, rawArticle{Source: "x"})), "empty payload")
}

func TestProcessMessageStoreFailureIsNotMarked(t *testing.T) {
	ing := &stubIngestor{err: errors.New("down")}
	w := newTestWorker(ing, models.LanguageEnglish)
	msg := message(t, rawArticle{Title: "t", URL: "u"})

	require.Error(t, w.processMessage(context.Background(), msg))
	require.Equal(t, 0.0, testutil.ToFloat64(w.metrics.WorkerMessages.WithLabelValues("stored")))

	ing.err = nil
	require.NoError(t, w.processMessage(context.Background(), msg))
	require.Len(t, ing.items, 1)
}

func TestParseTimestamp(t *testing.T) {
	ts := parseTimestamp("2024-02-03T04:05:06Z")
	require.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), ts)

	iso := parseTimestamp("2024-02-03T04:05:06.123456")
	require.Equal(t, 123456000, iso.Nanosecond())

	legacy := parseTimestamp("2024-02-03 04:05:06")
	require.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), legacy)

	require.True(t, parseTimestamp("invalid").IsZero())
	require.True(t, parseTimestamp("").IsZero())
}
