package processing

import (
	"strings"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
)

// Verdict is the trust label and risk score of a headline.
type Verdict struct {
	Status    models.FactStatus
	RiskScore int
}

type factRule struct {
	keywords []string
	verdict  Verdict
}

// Rules are evaluated in order; the first match wins.
var factRules = []factRule{
	{keywords: []string{"breaking", "official", "gov"}, verdict: Verdict{Status: models.FactVerified, RiskScore: 5}},
	{keywords: []string{"rumour", "leak", "unconfirmed"}, verdict: Verdict{Status: models.FactRumour, RiskScore: 65}},
}

var defaultVerdict = Verdict{Status: models.FactUnconfirmed, RiskScore: 30}

// FactCheck classifies an article by keywords in its lower-cased title.
func FactCheck(article models.Article) Verdict {
	title := strings.ToLower(article.Title)
	for _, rule := range factRules {
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) {
				return rule.verdict
			}
		}
	}
	return defaultVerdict
}
