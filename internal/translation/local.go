package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JMicallef9/translation-api/internal/language"
)

const (
	// DefaultLocalEndpoint is an Ollama-style OpenAI-compatible base URL.
	DefaultLocalEndpoint = "http://127.0.0.1:11434/v1"
	// DefaultLocalModel is used when TRANSLATION_MODEL is blank.
	DefaultLocalModel = "llama3.1"

	localProviderName  = "local"
	chatCompletionPath = "/chat/completions"
)

// LocalOptions configures an OpenAI-compatible chat translation backend.
type LocalOptions struct {
	Endpoint string
	Model    string
	// APIKey is sent as a bearer token when set.
	APIKey string
}

// LocalProvider translates text through a chat completions endpoint such as Ollama,
// vLLM or an OpenAI-compatible gateway.
type LocalProvider struct {
	chatURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewLocalProvider builds a local provider. The call deadline comes from the request context.
func NewLocalProvider(opts LocalOptions) *LocalProvider {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultLocalModel
	}
	return &LocalProvider{
		chatURL: resolveChatURL(opts.Endpoint),
		model:   model,
		apiKey:  strings.TrimSpace(opts.APIKey),
		client:  &http.Client{},
	}
}

func (p *LocalProvider) Name() string {
	return localProviderName
}

// ModelName returns the configured model identifier.
func (p *LocalProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *LocalProvider) SupportedLanguages() []string {
	return language.DefaultCodes()
}

func (p *LocalProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("local provider is nil")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	sourceLang := normalizeLangCode(req.SourceLang)
	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(sourceLang, targetLang)},
			{Role: "user", Content: text},
		},
		Temperature: 0,
		Stream:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.chatURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, wrapProviderError(p.Name(), fmt.Errorf("send chat request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapProviderError(p.Name(), fmt.Errorf("read chat response: %w", err))
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if decodeErr == nil && parsed.Error != nil && strings.TrimSpace(parsed.Error.Message) != "" {
			statusErr.Body = strings.TrimSpace(parsed.Error.Message)
		}
		return nil, wrapProviderError(p.Name(), statusErr)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode chat response: %w", decodeErr)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("chat endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	translated := cleanCompletion(parsed.Choices[0].Message.Content)
	if translated == "" {
		return nil, fmt.Errorf("chat response was empty")
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// systemPrompt names the detected source language when it is known.
func systemPrompt(sourceLang, targetLang string) string {
	from := "the source language"
	if sourceLang != "" {
		from = promptLanguageName(sourceLang)
	}
	return fmt.Sprintf(
		"You are a translation engine. Translate the user's message from %s into %s. "+
			"Reply with the translation only: no quotes, notes or explanations.",
		from, promptLanguageName(targetLang),
	)
}

// cleanCompletion strips the code fences and wrapping quotes chat models tend to add.
func cleanCompletion(content string) string {
	out := strings.TrimSpace(content)
	if strings.HasPrefix(out, "```") && strings.HasSuffix(out, "```") && len(out) >= 6 {
		out = strings.TrimSpace(out[3 : len(out)-3])
		if nl := strings.IndexByte(out, '\n'); nl >= 0 && !strings.ContainsAny(out[:nl], " \t") {
			out = strings.TrimSpace(out[nl+1:])
		}
	}
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"«", "»"}} {
		if len(out) > len(pair[0])+len(pair[1]) && strings.HasPrefix(out, pair[0]) && strings.HasSuffix(out, pair[1]) {
			out = strings.TrimSpace(out[len(pair[0]) : len(out)-len(pair[1])])
			break
		}
	}
	return out
}

// resolveChatURL accepts a bare host, a base URL or a full completions URL.
func resolveChatURL(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		endpoint = DefaultLocalEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return DefaultLocalEndpoint + chatCompletionPath
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, chatCompletionPath):
	case strings.HasSuffix(path, "/v1"):
		path += chatCompletionPath
	default:
		path += "/v1" + chatCompletionPath
	}
	parsed.Path = path
	return parsed.String()
}
