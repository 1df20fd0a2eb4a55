package news

import (
	"context"
	"strings"
	"time"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/processing"
	"github.com/DeafMist/pakgpt-news/backend/internal/store"
)

const (
	// DefaultDigestLimit applies when the caller does not pass a limit.
	DefaultDigestLimit = 10

	digestItems     = 10
	headlineChars   = 60
	urduSummaryTail = " آج کے اہم نکات کا خلاصہ۔"
)

var fallbackTitles = []string{
	"Fiscal updates and market outlook",
	"Security and regional developments",
	"PSX morning momentum",
	"Monsoon/weather advisory",
	"Tech/startup funding news",
}

// DigestItem is the per-story payload of a digest.
type DigestItem struct {
	Title        string            `json:"title"`
	Bullets      []string          `json:"bullets"`
	Impact       string            `json:"impact"`
	WhyItMatters string            `json:"why_it_matters"`
	Source       string            `json:"source"`
	PublishedAt  *time.Time        `json:"published_at"`
	FactStatus   models.FactStatus `json:"fact_status"`
	RiskScore    int               `json:"risk_score"`
}

// BusinessEconomy is the static markets block.
type BusinessEconomy struct {
	Snapshot string `json:"snapshot"`
}

// Digest is the morning view: headlines, a short narrative and item detail.
type Digest struct {
	Headlines         []string        `json:"headlines"`
	Summary60s        string          `json:"summary_60s"`
	Items             []DigestItem    `json:"items"`
	BusinessEconomy   BusinessEconomy `json:"business_economy"`
	GlobalAffectingPK []string        `json:"global_affecting_pk"`

	// Fallback is set when the canned items were served instead of stored ones.
	Fallback bool `json:"-"`
}

// DigestComposer builds digests from stored stories.
type DigestComposer struct {
	store store.Store
	now   func() time.Time
}

// NewDigestComposer returns a DigestComposer reading from s.
func NewDigestComposer(s store.Store) *DigestComposer {
	return &DigestComposer{store: s, now: time.Now}
}

// WithClock replaces the time source used to stamp fallback items.
func (d *DigestComposer) WithClock(now func() time.Time) *DigestComposer {
	d.now = now
	return d
}

// Digest never fails: when the store errors or has no stories for the language,
// canned items are used instead.
func (d *DigestComposer) Digest(ctx context.Context, lang models.Language, limit int) Digest {
	if limit <= 0 {
		limit = DefaultDigestLimit
	}

	items, ok := d.stored(ctx, lang, limit)
	if !ok {
		items = d.fallbackItems()
	}

	headlines := make([]string, 0, min(len(items), digestItems))
	for _, it := range items[:min(len(items), digestItems)] {
		headlines = append(headlines, it.Title)
	}

	return Digest{
		Headlines:  headlines,
		Summary60s: summarize60s(headlines, lang),
		Items:      items[:min(len(items), digestItems)],
		BusinessEconomy: BusinessEconomy{
			Snapshot: "FX, PSX, inflation, fuel updates at a glance.",
		},
		GlobalAffectingPK: []string{
			"Oil prices and regional markets",
			"US/China moves impacting trade",
		},
		Fallback: !ok,
	}
}

// stored reports ok only when the query succeeded and returned at least one
// decodable story.
func (d *DigestComposer) stored(ctx context.Context, lang models.Language, limit int) ([]DigestItem, bool) {
	docs, err := d.store.Query(ctx, models.NewsCollection, store.Filter{
		Equals: map[string]string{"language": string(lang)},
	}, limit)
	if err != nil || len(docs) == 0 {
		return nil, false
	}

	items := make([]DigestItem, 0, len(docs))
	for _, doc := range docs {
		var n models.NewsItem
		if err := doc.Decode(&n); err != nil {
			return nil, false
		}
		items = append(items, toDigestItem(n))
	}
	return items, true
}

func toDigestItem(n models.NewsItem) DigestItem {
	bullets := n.Bullets
	if len(bullets) > 3 {
		bullets = bullets[:3]
	}
	if bullets == nil {
		bullets = []string{}
	}
	status := n.FactStatus
	if status == "" {
		status = models.FactUnconfirmed
	}
	return DigestItem{
		Title:        n.Title,
		Bullets:      bullets,
		Impact:       n.Impact,
		WhyItMatters: n.Impact,
		Source:       n.Source,
		PublishedAt:  n.PublishedAt,
		FactStatus:   status,
		RiskScore:    n.RiskScore,
	}
}

func (d *DigestComposer) fallbackItems() []DigestItem {
	now := d.now().UTC()
	const impact = "Expect ripple effects for households and businesses."

	items := make([]DigestItem, 0, len(fallbackTitles))
	for _, title := range fallbackTitles {
		ts := now
		items = append(items, DigestItem{
			Title: title,
			Bullets: []string{
				"Key developments summarized",
				"Numbers and context simplified",
				"What to watch today",
			},
			Impact:       impact,
			WhyItMatters: impact,
			Source:       "PakGPT",
			PublishedAt:  &ts,
			FactStatus:   models.FactUnconfirmed,
			RiskScore:    20,
		})
	}
	return items
}

func summarize60s(headlines []string, lang models.Language) string {
	parts := make([]string, 0, len(headlines))
	for _, h := range headlines {
		parts = append(parts, processing.Truncate(h, headlineChars))
	}
	summary := strings.Join(parts, " ")
	if lang == models.LanguageUrdu {
		summary += urduSummaryTail
	}
	return summary
}
