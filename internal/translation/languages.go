package translation

import "github.com/JMicallef9/translation-api/internal/language"

// myMemoryLanguages is the subset of codes MyMemory handles well.
var myMemoryLanguages = []string{
	"ar", "bg", "ca", "cs", "da", "de", "el", "en", "es", "fi", "fr", "he", "hu", "id",
	"it", "ja", "ko", "ms", "nl", "no", "pl", "pt", "ro", "ru", "sv", "th", "tr", "uk",
	"vi", "zh-CN", "zh-TW",
}

func normalizeLangCode(raw string) string {
	return language.NormalizeTag(raw)
}

// promptLanguageName renders a code for use in a model prompt.
func promptLanguageName(code string) string {
	normalized := normalizeLangCode(code)
	if normalized == "" {
		return "English"
	}
	return language.DisplayName(normalized)
}
