package models

import (
	"fmt"
	"strings"
)

// Language is the language a summary was generated in.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageUrdu    Language = "ur"
)

// Urgency is an opaque filter key describing desired recency/completeness.
type Urgency string

const (
	UrgencyBreaking  Urgency = "breaking"
	UrgencyImportant Urgency = "important"
	UrgencyFull      Urgency = "full"
)

// FactStatus is the trust label assigned by the fact classifier.
type FactStatus string

const (
	FactVerified    FactStatus = "Verified"
	FactUnconfirmed FactStatus = "Unconfirmed"
	FactRumour      FactStatus = "Rumour"
)

// ValidationError reports a request or document field that violates a constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseLanguage accepts "en" or "ur". Empty input defaults to en.
func ParseLanguage(raw string) (Language, error) {
	switch Language(strings.TrimSpace(raw)) {
	case "", LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageUrdu:
		return LanguageUrdu, nil
	}
	return "", &ValidationError{Field: "language", Message: fmt.Sprintf("unsupported value %q, expected en or ur", raw)}
}

// ParseUrgency accepts breaking, important or full. Empty input defaults to important.
func ParseUrgency(raw string) (Urgency, error) {
	switch u := Urgency(strings.TrimSpace(raw)); u {
	case "":
		return UrgencyImportant, nil
	case UrgencyBreaking, UrgencyImportant, UrgencyFull:
		return u, nil
	}
	return "", &ValidationError{Field: "urgency", Message: fmt.Sprintf("unsupported value %q, expected breaking, important or full", raw)}
}

// ParseFactStatus accepts Verified, Unconfirmed or Rumour. Empty input defaults to Unconfirmed.
func ParseFactStatus(raw string) (FactStatus, error) {
	switch f := FactStatus(strings.TrimSpace(raw)); f {
	case "":
		return FactUnconfirmed, nil
	case FactVerified, FactUnconfirmed, FactRumour:
		return f, nil
	}
	return "", &ValidationError{Field: "fact_status", Message: fmt.Sprintf("unsupported value %q", raw)}
}
