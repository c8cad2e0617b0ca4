package language

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// defaultCodes mirrors the Google Translate language set.
var defaultCodes = []string{
	"af", "am", "ar", "az", "be", "bg", "bn", "bs", "ca", "ceb", "co", "cs", "cy", "da",
	"de", "el", "en", "eo", "es", "et", "eu", "fa", "fi", "fr", "fy", "ga", "gd", "gl",
	"gu", "ha", "haw", "hi", "hmn", "hr", "ht", "hu", "hy", "id", "ig", "is", "it", "iw",
	"ja", "jw", "ka", "kk", "km", "kn", "ko", "ku", "ky", "la", "lb", "lo", "lt", "lv",
	"mg", "mi", "mk", "ml", "mn", "mr", "ms", "mt", "my", "ne", "nl", "no", "ny", "or",
	"pa", "pl", "ps", "pt", "ro", "ru", "rw", "sd", "si", "sk", "sl", "sm", "sn", "so",
	"sq", "sr", "st", "su", "sv", "sw", "ta", "te", "tg", "th", "tk", "tl", "tr", "tt",
	"ug", "uk", "ur", "uz", "vi", "xh", "yi", "yo", "zh-CN", "zh-TW", "zu",
}

// DefaultCodes returns the built-in catalog codes.
func DefaultCodes() []string {
	return append([]string(nil), defaultCodes...)
}

// Catalog is an immutable set of supported target languages. Lookups ignore case and
// surrounding whitespace; codes keep the spelling they were registered with.
type Catalog struct {
	codes []string
	names map[string]string
	index map[string]string
}

// NewCatalog builds a catalog from codes. Blank and malformed codes are dropped, and
// duplicates that differ only in case keep the first spelling. Names come from CLDR
// English display names, falling back to the code itself.
func NewCatalog(codes []string) *Catalog {
	catalog := &Catalog{
		names: make(map[string]string, len(codes)),
		index: make(map[string]string, len(codes)),
	}
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		key := NormalizeTag(code)
		if key == "" {
			continue
		}
		if _, exists := catalog.index[key]; exists {
			continue
		}
		catalog.index[key] = code
		catalog.names[code] = DisplayName(code)
		catalog.codes = append(catalog.codes, code)
	}
	sort.Strings(catalog.codes)
	return catalog
}

// NewDefaultCatalog builds the catalog from DefaultCodes.
func NewDefaultCatalog() *Catalog {
	return NewCatalog(defaultCodes)
}

// Lookup returns the registered spelling of code.
func (c *Catalog) Lookup(code string) (string, bool) {
	if c == nil {
		return "", false
	}
	canonical, ok := c.index[NormalizeTag(code)]
	return canonical, ok
}

func (c *Catalog) Contains(code string) bool {
	_, ok := c.Lookup(code)
	return ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.codes)
}

// Codes returns the sorted codes. The slice is a copy.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.codes...)
}

// Names returns code to display name. The map is a copy.
func (c *Catalog) Names() map[string]string {
	out := make(map[string]string, c.Len())
	if c == nil {
		return out
	}
	for code, name := range c.names {
		out[code] = name
	}
	return out
}

// DisplayName returns the English name of a language tag, or the tag itself when CLDR
// has no name for it.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if strings.TrimSpace(name) == "" {
		return code
	}
	return name
}
