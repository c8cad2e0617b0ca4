package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	translate "cloud.google.com/go/translate"
	langtag "golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/JMicallef9/translation-api/internal/language"
)

const googleProviderName = "google"

type GoogleOptions struct {
	// APIKey selects API-key auth. Without it the client falls back to CredentialsFile or
	// Application Default Credentials.
	APIKey          string
	CredentialsFile string
	// ClientOptions are appended after the auth options.
	ClientOptions []option.ClientOption
}

// GoogleProvider calls the Google Cloud Translation v2 API.
type GoogleProvider struct {
	client *translate.Client
}

func NewGoogleProvider(ctx context.Context, opts GoogleOptions) (*GoogleProvider, error) {
	clientOpts := make([]option.ClientOption, 0, 2+len(opts.ClientOptions))
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(key))
	} else if file := strings.TrimSpace(opts.CredentialsFile); file != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(file))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	client, err := translate.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create google translate client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Name() string {
	return googleProviderName
}

func (p *GoogleProvider) SupportedLanguages() []string {
	return language.DefaultCodes()
}

// ListLanguages fetches the live target language list.
func (p *GoogleProvider) ListLanguages(ctx context.Context) ([]string, error) {
	languages, err := p.client.SupportedLanguages(ctx, langtag.English)
	if err != nil {
		return nil, wrapProviderError(p.Name(), err)
	}
	codes := make([]string, 0, len(languages))
	for _, lang := range languages {
		codes = append(codes, lang.Tag.String())
	}
	return codes, nil
}

func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	target, err := langtag.Parse(strings.TrimSpace(req.TargetLang))
	if err != nil {
		return nil, fmt.Errorf("invalid target language %q: %w", req.TargetLang, err)
	}

	opts := &translate.Options{Format: translate.Text}
	if source, err := langtag.Parse(strings.TrimSpace(req.SourceLang)); err == nil {
		opts.Source = source
	}

	started := time.Now()
	translations, err := p.client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return nil, wrapProviderError(p.Name(), err)
	}
	if len(translations) == 0 {
		return nil, fmt.Errorf("google translation response was empty")
	}

	sourceLang := normalizeLangCode(req.SourceLang)
	if detected := translations[0].Source; detected != langtag.Und {
		sourceLang = normalizeLangCode(detected.String())
	}
	return &TranslateResponse{
		Text:         translations[0].Text,
		SourceLang:   sourceLang,
		TargetLang:   req.TargetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

func (p *GoogleProvider) Close() error {
	return p.client.Close()
}
