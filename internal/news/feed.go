package news

import (
	"context"
	"fmt"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/store"
)

const (
	feedLimit   = 50
	bulletCount = 3
)

// FeedRequest carries a reader's preferences. Empty City and Interests do not filter.
type FeedRequest struct {
	City      string
	Interests []string
	Urgency   models.Urgency
	Language  models.Language
}

// Feed is the personalized list of stories.
type Feed struct {
	Count int               `json:"count"`
	Items []models.NewsItem `json:"items"`
}

// FeedAssembler queries stories matching reader preferences.
type FeedAssembler struct {
	store store.Store
}

// NewFeedAssembler returns a FeedAssembler reading from s.
func NewFeedAssembler(s store.Store) *FeedAssembler {
	return &FeedAssembler{store: s}
}

// Feed returns up to 50 matching stories, each with exactly three bullets.
func (f *FeedAssembler) Feed(ctx context.Context, req FeedRequest) (Feed, error) {
	docs, err := f.store.Query(ctx, models.NewsCollection, FeedFilter(req), feedLimit)
	if err != nil {
		return Feed{}, &StoreError{Err: fmt.Errorf("query %s: %w", models.NewsCollection, err)}
	}

	items := make([]models.NewsItem, 0, len(docs))
	for _, doc := range docs {
		var item models.NewsItem
		if err := doc.Decode(&item); err != nil {
			return Feed{}, &StoreError{Err: fmt.Errorf("decode %s: %w", doc.ID, err)}
		}
		item.ID = doc.ID
		item.Bullets = normalizeBullets(item.Bullets)
		if item.Interests == nil {
			item.Interests = []string{}
		}
		items = append(items, item)
	}

	return Feed{Count: len(items), Items: items}, nil
}

// FeedFilter builds the store filter for a feed request.
func FeedFilter(req FeedRequest) store.Filter {
	filter := store.Filter{Equals: map[string]string{}}
	if req.City != "" {
		filter.Equals["city"] = req.City
	}
	if req.Urgency != "" {
		filter.Equals["urgency"] = string(req.Urgency)
	}
	if req.Language != "" {
		filter.Equals["language"] = string(req.Language)
	}
	if len(req.Interests) > 0 {
		filter.AnyOf = map[string][]string{"interests": req.Interests}
	}
	return filter
}

func normalizeBullets(bullets []string) []string {
	out := make([]string, bulletCount)
	copy(out, bullets)
	return out
}
