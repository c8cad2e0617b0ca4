package translation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/JMicallef9/translation-api/internal/config"
)

// DefaultProviderName is used when no provider is configured.
const DefaultProviderName = googleProviderName

// Registry stores translation providers and resolves a default provider.
type Registry struct {
	providers       map[string]Provider
	defaultProvider string
}

func NewRegistry(defaultProvider string) *Registry {
	normalizedDefault := normalizeProviderName(defaultProvider)
	if normalizedDefault == "" {
		normalizedDefault = DefaultProviderName
	}

	return &Registry{
		providers:       make(map[string]Provider),
		defaultProvider: normalizedDefault,
	}
}

// NewRegistryFromConfig registers the local and MyMemory providers, plus Google when it
// is the default provider or credentials are configured. It fails when the configured
// default cannot be built.
func NewRegistryFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	registry := NewRegistry(cfg.TranslationProvider)
	if err := registry.Register(NewLocalProvider(LocalOptions{
		Endpoint: cfg.TranslationEndpoint,
		Model:    cfg.TranslationModel,
		APIKey:   cfg.TranslationAPIKey,
	})); err != nil {
		return nil, err
	}
	if err := registry.Register(NewMyMemoryProvider("", cfg.MyMemoryEmail)); err != nil {
		return nil, err
	}

	wantGoogle := registry.defaultProvider == googleProviderName ||
		strings.TrimSpace(cfg.GoogleAPIKey) != "" ||
		strings.TrimSpace(cfg.GoogleCredentialsFile) != ""
	if wantGoogle {
		google, err := NewGoogleProvider(ctx, GoogleOptions{
			APIKey:          cfg.GoogleAPIKey,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		switch {
		case err == nil:
			if err := registry.Register(google); err != nil {
				return nil, err
			}
		case registry.defaultProvider == googleProviderName:
			return nil, err
		default:
			logger.Warn().Err(err).Msg("google translation provider unavailable")
		}
	}

	if _, exists := registry.providers[registry.defaultProvider]; !exists {
		return nil, fmt.Errorf("translation provider %q is not registered (available: %s)", registry.defaultProvider, strings.Join(registry.ProviderNames(), ", "))
	}
	return registry, nil
}

// Register adds one provider.
func (r *Registry) Register(provider Provider) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	name := normalizeProviderName(provider.Name())
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	r.providers[name] = provider
	return nil
}

// Provider resolves a provider by name. Empty names use the configured default provider.
func (r *Registry) Provider(name string) (Provider, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no translation providers are registered")
	}

	resolvedName := normalizeProviderName(name)
	if resolvedName == "" {
		resolvedName = r.defaultProvider
	}
	provider, ok := r.providers[resolvedName]
	if ok {
		return provider, nil
	}

	return nil, fmt.Errorf("translation provider %q is not registered (available: %s)", resolvedName, strings.Join(r.ProviderNames(), ", "))
}

func (r *Registry) DefaultProvider() string {
	if r == nil {
		return ""
	}
	return r.defaultProvider
}

func (r *Registry) ProviderNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Close releases providers that hold clients.
func (r *Registry) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, name := range r.ProviderNames() {
		if closer, ok := r.providers[name].(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s provider: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
