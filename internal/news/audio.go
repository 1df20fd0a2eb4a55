package news

import (
	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/processing"
)

// PlaceholderAudioURL is returned for every request until a TTS provider is wired in.
const PlaceholderAudioURL = "data:audio/wav;base64,UGFrR1BULWF1ZGlvLXBsYWNlaG9sZGVy"

// AudioClip describes generated speech.
type AudioClip struct {
	Language models.Language `json:"language"`
	AudioURL string          `json:"audio_url"`
	Note     string          `json:"note"`

	// Text is the request text with line breaks collapsed.
	Text string `json:"-"`
}

// Audio returns the placeholder clip for text. The text itself is not encoded.
func Audio(text string, lang models.Language) AudioClip {
	return AudioClip{
		Language: lang,
		AudioURL: PlaceholderAudioURL,
		Note:     "Demo placeholder. Integrate a real TTS provider in production.",
		Text:     processing.CollapseNewlines(text),
	}
}
