package models

import "time"

// NewsCollection is the collection every NewsItem is stored in.
const NewsCollection = "newsitem"

// Article is a raw story as received from a source, before summarization.
type Article struct {
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	City        string     `json:"city,omitempty"`
	Interests   []string   `json:"interests,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	SourceID    string     `json:"source_id,omitempty"`
}

// NewsItem is the normalized document stored for a single story/language pair.
type NewsItem struct {
	ID          string     `json:"id,omitempty"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	City        string     `json:"city,omitempty"`
	Interests   []string   `json:"interests"`
	Urgency     Urgency    `json:"urgency"`

	Language Language `json:"language"`
	Bullets  []string `json:"bullets"`
	Impact   string   `json:"impact"`

	FactStatus FactStatus `json:"fact_status"`
	RiskScore  int        `json:"risk_score"`

	Thumbnail string `json:"thumbnail,omitempty"`
	SourceID  string `json:"source_id,omitempty"`
}

// Validate checks enum membership and the risk score range.
func (n NewsItem) Validate() error {
	if _, err := ParseUrgency(string(n.Urgency)); err != nil {
		return err
	}
	if _, err := ParseLanguage(string(n.Language)); err != nil {
		return err
	}
	if _, err := ParseFactStatus(string(n.FactStatus)); err != nil {
		return err
	}
	if n.RiskScore < 0 || n.RiskScore > 100 {
		return &ValidationError{Field: "risk_score", Message: "must be between 0 and 100"}
	}
	return nil
}

// Subscription holds a reader's delivery preferences for the digest and feed.
type Subscription struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`

	City          string   `json:"city,omitempty"`
	Interests     []string `json:"interests"`
	Urgency       Urgency  `json:"urgency"`
	Language      Language `json:"language"`
	Notifications []string `json:"notifications"`
}

var notificationChannels = map[string]struct{}{
	"app": {}, "email": {}, "whatsapp": {},
}

// Validate fills defaults and rejects unknown enum values and channels.
func (s *Subscription) Validate() error {
	urgency, err := ParseUrgency(string(s.Urgency))
	if err != nil {
		return err
	}
	lang, err := ParseLanguage(string(s.Language))
	if err != nil {
		return err
	}
	s.Urgency = urgency
	s.Language = lang

	if len(s.Notifications) == 0 {
		s.Notifications = []string{"app"}
	}
	for _, ch := range s.Notifications {
		if _, ok := notificationChannels[ch]; !ok {
			return &ValidationError{Field: "notifications", Message: "unknown channel " + ch}
		}
	}
	return nil
}
