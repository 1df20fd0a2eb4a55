package news_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/news"
	"github.com/DeafMist/pakgpt-news/backend/internal/store"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func clock() time.Time { return fixedNow }

// flakyStore fails Create after failAfter successful calls and Query when queryErr is set.
type flakyStore struct {
	*store.Memory
	failAfter int
	creates   int
	queryErr  error
}

func (f *flakyStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	if f.failAfter >= 0 && f.creates >= f.failAfter {
		return "", errors.New("connection reset")
	}
	f.creates++
	return f.Memory.Create(ctx, collection, doc)
}

func (f *flakyStore) Query(ctx context.Context, collection string, filter store.Filter, limit int) ([]store.Document, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.Memory.Query(ctx, collection, filter, limit)
}

func TestIngestInsertsSampleBatch(t *testing.T) {
	for _, lang := range []models.Language{models.LanguageEnglish, models.LanguageUrdu} {
		t.Run(string(lang), func(t *testing.T) {
			mem := store.NewMemory()
			res, err := news.NewIngestor(mem).WithClock(clock).Ingest(context.Background(), news.IngestRequest{
				Sources:  []string{"ignored"},
				Language: lang,
			})
			require.NoError(t, err)
			require.Equal(t, 3, res.Inserted)
			require.Len(t, res.IDs, 3)

			docs, err := mem.Query(context.Background(), models.NewsCollection, store.Filter{}, 10)
			require.NoError(t, err)
			require.Len(t, docs, 3)

			var first models.NewsItem
			require.NoError(t, docs[0].Decode(&first))
			require.Equal(t, lang, first.Language)
			require.Equal(t, models.UrgencyImportant, first.Urgency)
			require.Equal(t, models.FactVerified, first.FactStatus)
			require.Equal(t, 5, first.RiskScore)
			require.Len(t, first.Bullets, 3)
			require.True(t, first.PublishedAt.Equal(fixedNow))
		})
	}
}

func TestIngestAbortsOnStoreFailure(t *testing.T) {
	fs := &flakyStore{Memory: store.NewMemory(), failAfter: 1}
	res, err := news.NewIngestor(fs).Ingest(context.Background(), news.IngestRequest{Language: models.LanguageEnglish})

	var serr *news.StoreError
	require.True(t, errors.As(err, &serr))
	require.True(t, strings.HasPrefix(err.Error(), "DB error: "))
	require.ErrorContains(t, err, "connection reset")
	require.Equal(t, 1, res.Inserted)

	docs, qerr := fs.Memory.Query(context.Background(), models.NewsCollection, store.Filter{}, 10)
	require.NoError(t, qerr)
	require.Len(t, docs, 1)
}

func TestBuildNewsItemClassifiesSamples(t *testing.T) {
	samples := news.SampleArticles(fixedNow)
	require.Len(t, samples, 3)

	want := []models.FactStatus{models.FactVerified, models.FactUnconfirmed, models.FactUnconfirmed}
	for i, art := range samples {
		item := news.BuildNewsItem(art, models.LanguageEnglish)
		require.Equal(t, want[i], item.FactStatus, art.Title)
		require.NoError(t, item.Validate())
	}
}

func ingested(t *testing.T, lang models.Language) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	_, err := news.NewIngestor(mem).WithClock(clock).Ingest(context.Background(), news.IngestRequest{Language: lang})
	require.NoError(t, err)
	return mem
}

func TestFeedFiltersByCity(t *testing.T) {
	mem := ingested(t, models.LanguageEnglish)
	feed, err := news.NewFeedAssembler(mem).Feed(context.Background(), news.FeedRequest{
		City:     "Lahore",
		Urgency:  models.UrgencyImportant,
		Language: models.LanguageEnglish,
	})
	require.NoError(t, err)
	require.Equal(t, 1, feed.Count)

	item := feed.Items[0]
	require.True(t, strings.HasPrefix(item.Title, "PSL updates"))
	require.Equal(t, "Geo", item.Source)
	require.Equal(t, "https://www.geo.tv/sample2", item.URL)
	require.NotEmpty(t, item.ID)
	require.Len(t, item.Bullets, 3)
}

func TestFeedFiltersByInterestOverlap(t *testing.T) {
	mem := ingested(t, models.LanguageEnglish)
	feed, err := news.NewFeedAssembler(mem).Feed(context.Background(), news.FeedRequest{
		Interests: []string{"jobs", "politics"},
		Urgency:   models.UrgencyImportant,
		Language:  models.LanguageEnglish,
	})
	require.NoError(t, err)
	require.Equal(t, 2, feed.Count)
}

func TestFeedLanguageMismatchIsEmpty(t *testing.T) {
	mem := ingested(t, models.LanguageUrdu)
	feed, err := news.NewFeedAssembler(mem).Feed(context.Background(), news.FeedRequest{
		Urgency:  models.UrgencyImportant,
		Language: models.LanguageEnglish,
	})
	require.NoError(t, err)
	require.Equal(t, 0, feed.Count)
	require.NotNil(t, feed.Items)
}

func TestFeedNormalizesBulletCount(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	for _, bullets := range [][]string{nil, {"one"}, {"a", "b", "c", "d", "e"}} {
		_, err := mem.Create(ctx, models.NewsCollection, models.NewsItem{
			Title:    "t",
			Urgency:  models.UrgencyImportant,
			Language: models.LanguageEnglish,
			Bullets:  bullets,
		})
		require.NoError(t, err)
	}

	feed, err := news.NewFeedAssembler(mem).Feed(ctx, news.FeedRequest{
		Urgency:  models.UrgencyImportant,
		Language: models.LanguageEnglish,
	})
	require.NoError(t, err)
	require.Equal(t, 3, feed.Count)
	require.Equal(t, []string{"", "", ""}, feed.Items[0].Bullets)
	require.Equal(t, []string{"one", "", ""}, feed.Items[1].Bullets)
	require.Equal(t, []string{"a", "b", "c"}, feed.Items[2].Bullets)
}

func TestFeedQueryFailure(t *testing.T) {
	fs := &flakyStore{Memory: store.NewMemory(), queryErr: errors.New("timeout")}
	_, err := news.NewFeedAssembler(fs).Feed(context.Background(), news.FeedRequest{})
	require.EqualError(t, err, "DB error: query newsitem: timeout")
}

func TestFeedFilter(t *testing.T) {
	f := news.FeedFilter(news.FeedRequest{Urgency: models.UrgencyFull, Language: models.LanguageUrdu})
	require.Equal(t, map[string]string{"urgency": "full", "language": "ur"}, f.Equals)
	require.Nil(t, f.AnyOf)
}

func TestDigestFallbackWhenEmpty(t *testing.T) {
	composer := news.NewDigestComposer(store.NewMemory()).WithClock(clock)

	en := composer.Digest(context.Background(), models.LanguageEnglish, 10)
	require.True(t, en.Fallback)
	require.Len(t, en.Items, 5)
	require.Len(t, en.Headlines, 5)
	require.Equal(t, "Fiscal updates and market outlook", en.Headlines[0])
	require.NotContains(t, en.Summary60s, "آج کے اہم نکات کا خلاصہ۔")
	require.Equal(t, models.FactUnconfirmed, en.Items[0].FactStatus)
	require.Equal(t, 20, en.Items[0].RiskScore)
	require.Equal(t, en.Items[0].Impact, en.Items[0].WhyItMatters)

	ur := composer.Digest(context.Background(), models.LanguageUrdu, 10)
	require.True(t, ur.Fallback)
	require.True(t, strings.HasSuffix(ur.Summary60s, " آج کے اہم نکات کا خلاصہ۔"))
}

func TestDigestFallbackOnQueryError(t *testing.T) {
	fs := &flakyStore{Memory: store.NewMemory(), queryErr: errors.New("boom")}
	d := news.NewDigestComposer(fs).Digest(context.Background(), models.LanguageEnglish, 10)
	require.True(t, d.Fallback)
	require.Len(t, d.Items, 5)
}

func TestDigestUsesStoredItems(t *testing.T) {
	mem := ingested(t, models.LanguageEnglish)
	d := news.NewDigestComposer(mem).Digest(context.Background(), models.LanguageEnglish, 2)

	require.False(t, d.Fallback)
	require.Len(t, d.Items, 2)
	require.Equal(t, []string{
		"Breaking: Govt announces new economic policy",
		"PSL updates: Lahore Qalandars clinch close match",
	}, d.Headlines)
	require.Equal(t, "Breaking: Govt announces new economic policy PSL updates: Lahore Qalandars clinch close match", d.Summary60s)
	require.Equal(t, models.FactVerified, d.Items[0].FactStatus)
	require.Equal(t, "FX, PSX, inflation, fuel updates at a glance.", d.BusinessEconomy.Snapshot)
	require.Len(t, d.GlobalAffectingPK, 2)
}

func TestDigestCapsItemsAndTruncatesHeadlines(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	long := strings.Repeat("h", 80)
	for i := 0; i < 15; i++ {
		_, err := mem.Create(ctx, models.NewsCollection, map[string]any{
			"title":    long,
			"language": "en",
		})
		require.NoError(t, err)
	}

	d := news.NewDigestComposer(mem).Digest(ctx, models.LanguageEnglish, 20)
	require.False(t, d.Fallback)
	require.Len(t, d.Items, 10)
	require.Len(t, d.Headlines, 10)
	require.Equal(t, models.FactUnconfirmed, d.Items[0].FactStatus)
	require.Equal(t, 0, d.Items[0].RiskScore)
	require.Equal(t, 10*60+9, len(d.Summary60s))
}

func TestAudioIsConstant(t *testing.T) {
	a := news.Audio("hello\nworld", models.LanguageUrdu)
	b := news.Audio("something else entirely", models.LanguageEnglish)
	require.Equal(t, a.AudioURL, b.AudioURL)
	require.Equal(t, news.PlaceholderAudioURL, a.AudioURL)
	require.Equal(t, models.LanguageUrdu, a.Language)
	require.Equal(t, "hello world", a.Text)
}
