package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultMyMemoryEndpoint is the public MyMemory API.
	DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

	myMemoryProviderName = "mymemory"
)

// MyMemoryProvider calls the MyMemory translation memory API. It needs a source
// language, so callers must pass the detected one.
type MyMemoryProvider struct {
	endpoint string
	email    string
	client   *http.Client
}

func NewMyMemoryProvider(endpoint, email string) *MyMemoryProvider {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultMyMemoryEndpoint
	}
	return &MyMemoryProvider{
		endpoint: endpoint,
		email:    strings.TrimSpace(email),
		client:   &http.Client{},
	}
}

func (p *MyMemoryProvider) Name() string {
	return myMemoryProviderName
}

func (p *MyMemoryProvider) SupportedLanguages() []string {
	return append([]string(nil), myMemoryLanguages...)
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	ResponseStatus  json.Number `json:"responseStatus"`
	ResponseDetails string      `json:"responseDetails"`
}

func (p *MyMemoryProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	sourceLang := strings.TrimSpace(req.SourceLang)
	if sourceLang == "" {
		sourceLang = "en"
	}
	targetLang := strings.TrimSpace(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	query := url.Values{}
	query.Set("q", req.Text)
	query.Set("langpair", sourceLang+"|"+targetLang)
	if p.email != "" {
		query.Set("de", p.email)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build mymemory request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, wrapProviderError(p.Name(), fmt.Errorf("send mymemory request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapProviderError(p.Name(), fmt.Errorf("read mymemory response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, wrapProviderError(p.Name(), &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}

	var parsed myMemoryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode mymemory response: %w", err)
	}
	// MyMemory reports quota and argument errors in the body with a 200 response.
	if status := parsed.ResponseStatus.String(); status != "" && status != "200" {
		code, _ := parsed.ResponseStatus.Int64()
		return nil, wrapProviderError(p.Name(), &StatusError{StatusCode: int(code), Body: parsed.ResponseDetails})
	}

	return &TranslateResponse{
		Text:         html.UnescapeString(parsed.ResponseData.TranslatedText),
		SourceLang:   normalizeLangCode(sourceLang),
		TargetLang:   targetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}
