package history

import (
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 form used for record timestamps and storage keys.
// Fixed width UTC with microseconds, so keys sort chronologically.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Record is one persisted translation. Records are immutable once written.
type Record struct {
	ID               int64  `json:"id"`
	OriginalText     string `json:"original_text"`
	OriginalLang     string `json:"original_lang"`
	TranslatedText   string `json:"translated_text"`
	OutputLang       string `json:"output_lang"`
	Timestamp        string `json:"timestamp"`
	MismatchDetected bool   `json:"mismatch_detected"`
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a record timestamp.
func ParseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		parsed, fallbackErr := time.Parse(time.RFC3339Nano, raw)
		if fallbackErr != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
		ts = parsed
	}
	return ts.UTC(), nil
}

// newer reports whether a sorts before b in newest-first order.
func newer(a, b Record) bool {
	if a.ID != b.ID {
		return a.ID > b.ID
	}
	return a.Timestamp > b.Timestamp
}
