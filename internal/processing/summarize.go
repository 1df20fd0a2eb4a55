package processing

import (
	"time"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
)

const titleLimit = 70

// Summary is the placeholder "AI" output attached to every stored story.
type Summary struct {
	Bullets []string
	Impact  string
}

type summaryLabels struct {
	keyPoint      string
	source        string
	time          string
	unknownSource string
	impact        string
}

var labels = map[models.Language]summaryLabels{
	models.LanguageEnglish: {
		keyPoint:      "Key point: ",
		source:        "Source: ",
		time:          "Time: ",
		unknownSource: "unknown",
		impact:        "Potential impact on citizens and businesses to be monitored.",
	},
	models.LanguageUrdu: {
		keyPoint:      "اہم نقطہ: ",
		source:        "سورس: ",
		time:          "وقت: ",
		unknownSource: "نامعلوم",
		impact:        "شہریوں اور کاروبار پر ممکنہ اثرات کے لئے نظر رکھیں۔",
	},
}

// Summarize builds the three bullets and the impact line for an article.
// Unknown languages fall back to English.
func Summarize(article models.Article, lang models.Language) Summary {
	l, ok := labels[lang]
	if !ok {
		l = labels[models.LanguageEnglish]
	}

	title := article.Title
	if title == "" {
		title = "Untitled"
	}
	source := article.Source
	if source == "" {
		source = l.unknownSource
	}
	published := ""
	if article.PublishedAt != nil {
		published = article.PublishedAt.UTC().Format(time.RFC3339)
	}

	return Summary{
		Bullets: []string{
			l.keyPoint + Truncate(title, titleLimit),
			l.source + source,
			l.time + published,
		},
		Impact: l.impact,
	}
}
