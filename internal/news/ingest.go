package news

import (
	"context"
	"fmt"
	"time"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/processing"
	"github.com/DeafMist/pakgpt-news/backend/internal/store"
)

// StoreError marks a document store failure surfaced to the caller.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return "DB error: " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// IngestRequest selects the language of generated summaries. Sources are
// accepted but not yet used; every run processes the sample batch.
type IngestRequest struct {
	Sources  []string
	Language models.Language
}

// IngestResult lists the ids of the stored documents.
type IngestResult struct {
	Inserted int      `json:"inserted"`
	IDs      []string `json:"ids"`
}

// Ingestor summarizes, fact-checks and stores articles.
type Ingestor struct {
	store store.Store
	now   func() time.Time
}

// NewIngestor returns an Ingestor writing into s.
func NewIngestor(s store.Store) *Ingestor {
	return &Ingestor{store: s, now: time.Now}
}

// WithClock replaces the time source used to stamp sample articles.
func (i *Ingestor) WithClock(now func() time.Time) *Ingestor {
	i.now = now
	return i
}

// Ingest stores one document per sample article. The first store failure stops
// the batch; documents stored before it are kept and the error is returned
// together with the partial result.
func (i *Ingestor) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	result := IngestResult{IDs: make([]string, 0, 3)}
	for _, article := range SampleArticles(i.now().UTC()) {
		id, err := i.IngestArticle(ctx, article, req.Language)
		if err != nil {
			return result, err
		}
		result.IDs = append(result.IDs, id)
		result.Inserted++
	}
	return result, nil
}

// IngestArticle runs the summarize and fact-check steps for one article and stores the document.
func (i *Ingestor) IngestArticle(ctx context.Context, article models.Article, lang models.Language) (string, error) {
	doc := BuildNewsItem(article, lang)
	id, err := i.store.Create(ctx, models.NewsCollection, doc)
	if err != nil {
		return "", &StoreError{Err: fmt.Errorf("create %s: %w", models.NewsCollection, err)}
	}
	return id, nil
}

// BuildNewsItem merges an article with its summary and verdict.
func BuildNewsItem(article models.Article, lang models.Language) models.NewsItem {
	summary := processing.Summarize(article, lang)
	verdict := processing.FactCheck(article)

	interests := article.Interests
	if interests == nil {
		interests = []string{}
	}

	return models.NewsItem{
		Source:      article.Source,
		Title:       article.Title,
		URL:         article.URL,
		PublishedAt: article.PublishedAt,
		City:        article.City,
		Interests:   interests,
		Urgency:     models.UrgencyImportant,
		Language:    lang,
		Bullets:     summary.Bullets,
		Impact:      summary.Impact,
		FactStatus:  verdict.Status,
		RiskScore:   verdict.RiskScore,
		Thumbnail:   article.Thumbnail,
		SourceID:    article.SourceID,
	}
}

// SampleArticles is the fixed batch processed by every ingest call.
func SampleArticles(now time.Time) []models.Article {
	ts := func() *time.Time { t := now; return &t }
	return []models.Article{
		{
			Source:      "Dawn",
			Title:       "Breaking: Govt announces new economic policy",
			URL:         "https://www.dawn.com/sample1",
			PublishedAt: ts(),
			City:        "Islamabad",
			Interests:   []string{"economy", "politics"},
		},
		{
			Source:      "Geo",
			Title:       "PSL updates: Lahore Qalandars clinch close match",
			URL:         "https://www.geo.tv/sample2",
			PublishedAt: ts(),
			City:        "Lahore",
			Interests:   []string{"sports"},
		},
		{
			Source:      "Express",
			Title:       "Technology jobs rising in Karachi's startup ecosystem",
			URL:         "https://www.express.pk/sample3",
			PublishedAt: ts(),
			City:        "Karachi",
			Interests:   []string{"tech", "jobs"},
		},
	}
}
