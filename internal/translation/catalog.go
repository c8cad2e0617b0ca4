package translation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/JMicallef9/translation-api/internal/language"
)

// BuildCatalog resolves the supported target languages once at startup: an explicit
// override wins, then the named provider's live list, then its static list. A blank
// providerName selects the registry default.
func BuildCatalog(ctx context.Context, registry *Registry, providerName string, override []string, logger zerolog.Logger) *language.Catalog {
	if len(override) > 0 {
		return language.NewCatalog(override)
	}

	provider, err := registry.Provider(providerName)
	if err != nil {
		logger.Warn().Err(err).Str("provider", providerName).Msg("provider unavailable, using built-in language list")
		return language.NewDefaultCatalog()
	}

	if lister, ok := provider.(LanguageLister); ok {
		codes, err := lister.ListLanguages(ctx)
		if err == nil && len(codes) > 0 {
			return language.NewCatalog(codes)
		}
		logger.Warn().Err(err).Str("provider", provider.Name()).Msg("could not fetch live language list")
	}

	if codes := provider.SupportedLanguages(); len(codes) > 0 {
		return language.NewCatalog(codes)
	}
	return language.NewDefaultCatalog()
}
