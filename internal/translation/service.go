// Package translation validates translate requests, calls a translation provider and
// records the result in the translation history.
package translation

import (
	"context"

	"github.com/JMicallef9/translation-api/internal/history"
)

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Name() string
	SupportedLanguages() []string
}

// LanguageLister is implemented by providers that can fetch their language list live.
type LanguageLister interface {
	ListLanguages(ctx context.Context) ([]string, error)
}

// LanguageDetector guesses the ISO 639-1 code of a text.
type LanguageDetector interface {
	DetectLanguage(text string) (string, error)
}

// RecordStore persists translation records and assigns their ids.
type RecordStore interface {
	Create(ctx context.Context, build func(id int64, timestamp string) history.Record) (history.Record, error)
	List(ctx context.Context, limit int, cursor string) (history.Page, error)
	Check(ctx context.Context) error
}

// TranslateRequest describes one provider call.
type TranslateRequest struct {
	Text       string
	SourceLang string // ISO 639-1 (for example: "en", "de")
	TargetLang string
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	LatencyMs    int64
}
