package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/JMicallef9/translation-api/internal/history"
	"github.com/JMicallef9/translation-api/internal/language"
)

const (
	DefaultTranslationTimeout = 15 * time.Second
	DefaultStorageTimeout     = 10 * time.Second
)

// Request is the body of a translate call. A blank InputLang means the caller did not
// assert a source language.
type Request struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	InputLang  string `json:"input_lang,omitempty"`
}

type ManagerOptions struct {
	// Provider names the registry entry to use. Empty selects the registry default.
	Provider           string
	TranslationTimeout time.Duration
	StorageTimeout     time.Duration
}

// Manager validates translate requests, detects the source language, calls the provider
// and records the result.
type Manager struct {
	registry *Registry
	detector LanguageDetector
	catalog  *language.Catalog
	store    RecordStore
	logger   zerolog.Logger
	opts     ManagerOptions
}

func NewManager(
	registry *Registry,
	detector LanguageDetector,
	catalog *language.Catalog,
	store RecordStore,
	logger zerolog.Logger,
	opts ManagerOptions,
) *Manager {
	if opts.TranslationTimeout <= 0 {
		opts.TranslationTimeout = DefaultTranslationTimeout
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = DefaultStorageTimeout
	}
	return &Manager{
		registry: registry,
		detector: detector,
		catalog:  catalog,
		store:    store,
		logger:   logger,
		opts:     opts,
	}
}

func (m *Manager) DefaultProvider() string {
	if m == nil || m.registry == nil {
		return ""
	}
	if name := normalizeProviderName(m.opts.Provider); name != "" {
		return name
	}
	return m.registry.DefaultProvider()
}

// Catalog returns the supported target languages.
func (m *Manager) Catalog() *language.Catalog {
	return m.catalog
}

// Translate runs one request end to end. Failures are *Error values whose Kind is one
// of the package sentinels.
func (m *Manager) Translate(ctx context.Context, req Request) (history.Record, error) {
	if m == nil || m.registry == nil || m.detector == nil || m.store == nil {
		return history.Record{}, newError(ErrInternal, fmt.Errorf("translation manager is not initialized"))
	}

	if err := m.validate(req); err != nil {
		m.logger.Warn().Err(err).Str("target_lang", req.TargetLang).Msg("rejected translate request")
		return history.Record{}, err
	}
	targetLang := strings.TrimSpace(req.TargetLang)
	providerTarget, _ := m.catalog.Lookup(targetLang)

	detected, err := m.detect(req.Text)
	if err != nil {
		m.logger.Warn().Err(err).Msg("language detection failed")
		return history.Record{}, err
	}

	translated, err := m.callProvider(ctx, req.Text, detected, providerTarget)
	if err != nil {
		return history.Record{}, err
	}
	if translated == req.Text {
		m.logger.Warn().Str("source_lang", detected).Str("target_lang", targetLang).Msg("provider returned the input unchanged")
		return history.Record{}, newError(ErrTranslationNotRecognized, nil)
	}

	originalLang := detected
	mismatch := false
	if inputLang := strings.TrimSpace(req.InputLang); inputLang != "" {
		originalLang = inputLang
		mismatch = inputLang != detected
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.opts.StorageTimeout)
	defer cancel()
	record, err := m.store.Create(storeCtx, func(id int64, timestamp string) history.Record {
		return history.Record{
			ID:               id,
			OriginalText:     req.Text,
			OriginalLang:     originalLang,
			TranslatedText:   translated,
			OutputLang:       strings.ToLower(targetLang),
			Timestamp:        timestamp,
			MismatchDetected: mismatch,
		}
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to store translation")
		return history.Record{}, newError(ErrStorageFailure, err)
	}

	m.logger.Info().
		Int64("id", record.ID).
		Str("original_lang", record.OriginalLang).
		Str("output_lang", record.OutputLang).
		Bool("mismatch_detected", record.MismatchDetected).
		Msg("translation stored")
	return record, nil
}

// History returns one page of past translations, newest first.
func (m *Manager) History(ctx context.Context, limit int, cursor string) (history.Page, error) {
	storeCtx, cancel := context.WithTimeout(ctx, m.opts.StorageTimeout)
	defer cancel()
	return m.store.List(storeCtx, limit, cursor)
}

// Check reports whether the record store is reachable.
func (m *Manager) Check(ctx context.Context) error {
	storeCtx, cancel := context.WithTimeout(ctx, m.opts.StorageTimeout)
	defer cancel()
	return m.store.Check(storeCtx)
}

// validate applies the request rules in order; the first failure wins.
func (m *Manager) validate(req Request) error {
	targetLang := strings.TrimSpace(req.TargetLang)
	err := validation.Validate(targetLang,
		validation.Required,
		validation.By(func(value interface{}) error {
			code, _ := value.(string)
			if !m.catalog.Contains(code) {
				return errors.New("unsupported language")
			}
			return nil
		}),
	)
	if err != nil {
		return invalidLanguageCode(targetLang)
	}

	if err := validation.Validate(strings.TrimSpace(req.Text), validation.Required); err != nil {
		return newError(ErrEmptyInput, nil)
	}
	return nil
}

func (m *Manager) detect(text string) (string, error) {
	code, err := m.detector.DetectLanguage(text)
	if err != nil {
		return "", newError(ErrLanguageDetectionFailed, err)
	}
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return "", newError(ErrLanguageDetectionFailed, fmt.Errorf("detector returned %q", code))
	}
	return code, nil
}

func (m *Manager) callProvider(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	provider, err := m.registry.Provider(m.opts.Provider)
	if err != nil {
		m.logger.Error().Err(err).Msg("translation provider not available")
		return "", newError(ErrInternal, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.opts.TranslationTimeout)
	defer cancel()

	resp, err := provider.Translate(callCtx, TranslateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		kind := ClassifyFailure(err)
		if kind == FailureUnknown && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			kind = FailureTimeout
		}
		m.logger.Error().
			Err(err).
			Str("provider", provider.Name()).
			Str("failure", kind.String()).
			Msg("translation provider call failed")
		return "", newError(failureSentinel(kind), err)
	}
	if resp == nil || resp.Text == "" {
		return "", newError(ErrTranslationNotRecognized, fmt.Errorf("%s returned no text", provider.Name()))
	}

	event := m.logger.Debug().Str("provider", provider.Name()).Int64("latency_ms", resp.LatencyMs)
	if model := modelNameFromProvider(provider); model != "" {
		event = event.Str("model", model)
	}
	event.Msg("translation provider call succeeded")
	return resp.Text, nil
}

func failureSentinel(kind FailureKind) error {
	switch kind {
	case FailureUnavailable:
		return ErrTranslationServiceUnavailable
	case FailureTimeout:
		return ErrTranslationServiceTimeout
	default:
		return ErrInternal
	}
}

type modelNameProvider interface {
	ModelName() string
}

func modelNameFromProvider(provider Provider) string {
	namedProvider, ok := provider.(modelNameProvider)
	if !ok {
		return ""
	}
	return strings.TrimSpace(namedProvider.ModelName())
}
