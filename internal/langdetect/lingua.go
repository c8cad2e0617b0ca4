// Package langdetect wraps lingua-go behind a small ISO 639-1 detector.
package langdetect

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

const defaultMinLetters = 3

// ErrEmptyText is returned for input without any non-space characters.
var ErrEmptyText = errors.New("text is empty")

type Options struct {
	// MinLetters is the number of letters below which no guess is made.
	MinLetters int
	// Preload loads every language model up front instead of on first use.
	Preload bool
}

// Detector guesses the language of a text. The lingua model is built on first use and
// is safe for concurrent calls.
type Detector struct {
	opts Options

	once     sync.Once
	detector lingua.LanguageDetector
}

func New(opts Options) *Detector {
	if opts.MinLetters <= 0 {
		opts.MinLetters = defaultMinLetters
	}
	return &Detector{opts: opts}
}

// DetectLanguage returns the lowercase ISO 639-1 code of text, or "" when lingua cannot
// settle on a language with a two-letter code.
func (d *Detector) DetectLanguage(text string) (string, error) {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return "", ErrEmptyText
	}
	if countLetters(sample) < d.opts.MinLetters {
		return "", nil
	}

	language, exists := d.model().DetectLanguageOf(sample)
	if !exists {
		return "", nil
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return "", nil
	}
	return code, nil
}

func (d *Detector) model() lingua.LanguageDetector {
	d.once.Do(func() {
		builder := lingua.NewLanguageDetectorBuilder().FromAllLanguages()
		if d.opts.Preload {
			builder = builder.WithPreloadedLanguageModels()
		}
		d.detector = builder.Build()
	})
	return d.detector
}

func countLetters(text string) int {
	count := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			count++
		}
	}
	return count
}
