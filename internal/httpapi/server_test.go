package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/JMicallef9/translation-api/internal/history"
	"github.com/JMicallef9/translation-api/internal/language"
	"github.com/JMicallef9/translation-api/internal/objectstore"
	"github.com/JMicallef9/translation-api/internal/translation"
)

type fixedDetector struct {
	code string
}

func (d fixedDetector) DetectLanguage(string) (string, error) {
	return d.code, nil
}

type dictionaryProvider struct {
	translations map[string]string
	err          error
}

func (p *dictionaryProvider) Name() string {
	return "dictionary"
}

func (p *dictionaryProvider) SupportedLanguages() []string {
	return nil
}

func (p *dictionaryProvider) Translate(_ context.Context, req translation.TranslateRequest) (*translation.TranslateResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	text, ok := p.translations[req.TargetLang+":"+req.Text]
	if !ok {
		text = req.Text
	}
	return &translation.TranslateResponse{Text: text, ProviderName: p.Name()}, nil
}

type brokenBucket struct {
	objectstore.Bucket
	err error
}

func (b *brokenBucket) List(context.Context, string, string, int) (objectstore.ListPage, error) {
	return objectstore.ListPage{}, b.err
}

func (b *brokenBucket) Check(context.Context) error {
	return b.err
}

type testAPI struct {
	handler  *echo.Echo
	provider *dictionaryProvider
}

func newTestAPI(t *testing.T, bucket objectstore.Bucket) *testAPI {
	t.Helper()

	provider := &dictionaryProvider{translations: map[string]string{
		"de:Hello world": "Hallo Welt",
		"fr:Hello world": "Bonjour le monde",
	}}
	registry := translation.NewRegistry("dictionary")
	if err := registry.Register(provider); err != nil {
		t.Fatalf("register provider: %v", err)
	}
	store := history.NewStore(bucket, zerolog.Nop(), history.Options{})
	manager := translation.NewManager(
		registry,
		fixedDetector{code: "en"},
		language.NewDefaultCatalog(),
		store,
		zerolog.Nop(),
		translation.ManagerOptions{TranslationTimeout: time.Second, StorageTimeout: time.Second},
	)
	server := NewServer(manager, zerolog.Nop(), Options{})
	return &testAPI{handler: server.Handler(), provider: provider}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestTranslateHelloWorld(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodPost, "/translate/", `{"text":"Hello world","target_lang":"de"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	record := decodeBody[history.Record](t, rec)
	if record.ID != 1 ||
		record.OriginalText != "Hello world" ||
		record.OriginalLang != "en" ||
		record.TranslatedText != "Hallo Welt" ||
		record.OutputLang != "de" ||
		record.MismatchDetected {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestTranslateRejectsUnknownLanguage(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodPost, "/translate/", `{"text":"Hello world","target_lang":"qq"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	body := decodeBody[detailResponse](t, rec)
	if body.Detail != "Invalid language code: qq. Please check the list of supported languages." {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}

func TestTranslateRejectsEmptyText(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodPost, "/translate", `{"text":"","target_lang":"de"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if body := decodeBody[detailResponse](t, rec); body.Detail != "Empty input provided. Please try again." {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}

func TestTranslateFlagsMismatch(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodPost, "/translate/", `{"text":"Hello world","target_lang":"DE","input_lang":"lt"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if record := decodeBody[history.Record](t, rec); !record.MismatchDetected {
		t.Fatalf("expected mismatch_detected=true, got %+v", record)
	}
}

func TestTranslateMalformedBody(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodPost, "/translate/", `{"text":`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if body := decodeBody[detailResponse](t, rec); body.Detail != invalidBodyMessage {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}

func TestTranslateWrongFieldTypeHidesDecoderError(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodPost, "/translate/", `{"text": 42, "target_lang": "de"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	body := decodeBody[detailResponse](t, rec)
	if body.Detail != invalidBodyMessage {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
	if strings.Contains(body.Detail, "json:") {
		t.Fatalf("detail leaks decoder error: %q", body.Detail)
	}
}

func TestTranslateProviderFailuresMapToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{
			name:   "unavailable",
			err:    &translation.ProviderError{Provider: "dictionary", Kind: translation.FailureUnavailable, Err: errors.New("refused")},
			status: http.StatusServiceUnavailable,
			detail: "Translation service is unavailable. Please try again later.",
		},
		{
			name:   "timeout",
			err:    &translation.ProviderError{Provider: "dictionary", Kind: translation.FailureTimeout, Err: errors.New("slow")},
			status: http.StatusGatewayTimeout,
			detail: "Translation service timed out. Please try again later.",
		},
		{
			name:   "unknown",
			err:    errors.New("parse failure"),
			status: http.StatusInternalServerError,
			detail: "An unexpected error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
			api.provider.err = tt.err
			rec := api.do(t, http.MethodPost, "/translate/", `{"text":"Hello world","target_lang":"de"}`)
			if rec.Code != tt.status {
				t.Fatalf("unexpected status: got %d want %d", rec.Code, tt.status)
			}
			if body := decodeBody[detailResponse](t, rec); body.Detail != tt.detail {
				t.Fatalf("unexpected detail %q", body.Detail)
			}
		})
	}
}

func TestTranslationsListsNewestFirst(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	for _, target := range []string{"de", "fr"} {
		rec := api.do(t, http.MethodPost, "/translate/", `{"text":"Hello world","target_lang":"`+target+`"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("translate %s: status %d (%s)", target, rec.Code, rec.Body.String())
		}
	}

	rec := api.do(t, http.MethodGet, "/translations/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody[translationsResponse](t, rec)
	if len(body.Translations) != 2 {
		t.Fatalf("expected 2 translations, got %d", len(body.Translations))
	}
	if body.Translations[0].ID != 2 || body.Translations[0].OutputLang != "fr" {
		t.Fatalf("expected newest record first, got %+v", body.Translations[0])
	}
	if body.Translations[1].ID != 1 || body.Translations[1].OutputLang != "de" {
		t.Fatalf("unexpected second record %+v", body.Translations[1])
	}
	if body.NextPage != "" {
		t.Fatalf("did not expect next_page, got %q", body.NextPage)
	}
}

func TestTranslationsPaginates(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	for i := 0; i < 3; i++ {
		rec := api.do(t, http.MethodPost, "/translate/", `{"text":"Hello world","target_lang":"de"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("translate: status %d", rec.Code)
		}
	}

	first := decodeBody[translationsResponse](t, api.do(t, http.MethodGet, "/translations/?limit=2", ""))
	if len(first.Translations) != 2 || first.NextPage == "" {
		t.Fatalf("unexpected first page %+v", first)
	}

	second := decodeBody[translationsResponse](t, api.do(t, http.MethodGet, "/translations/?limit=2&cursor="+first.NextPage, ""))
	if len(second.Translations) != 1 || second.Translations[0].ID != 1 || second.NextPage != "" {
		t.Fatalf("unexpected second page %+v", second)
	}
}

func TestTranslationsEmptyStore(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodGet, "/translations", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	if body := decodeBody[messageResponse](t, rec); body.Message != "No translations found" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestTranslationsInvalidQuery(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	for _, path := range []string{"/translations/?limit=0", "/translations/?limit=101", "/translations/?limit=abc", "/translations/?cursor=%21%21"} {
		rec := api.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: unexpected status %d", path, rec.Code)
		}
	}
}

func TestTranslationsStorageFailure(t *testing.T) {
	t.Parallel()

	bucket := &brokenBucket{
		Bucket: objectstore.NewMemoryBucket("test"),
		err:    &objectstore.OperationError{Operation: "ListObjectsV2", Code: "NoSuchBucket", Message: "The specified bucket does not exist"},
	}
	api := newTestAPI(t, bucket)
	rec := api.do(t, http.MethodGet, "/translations/", "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusInternalServerError)
	}
	body := decodeBody[errorResponse](t, rec)
	want := "Failed to list objects: An error occurred (NoSuchBucket) when calling the ListObjectsV2 operation: The specified bucket does not exist"
	if body.Error != want {
		t.Fatalf("unexpected error %q", body.Error)
	}
}

func TestLanguagesReturnsCatalog(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodGet, "/languages/", "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusCreated)
	}
	body := decodeBody[languagesResponse](t, rec)
	if len(body.Languages) <= 40 {
		t.Fatalf("expected more than 40 languages, got %d", len(body.Languages))
	}
	if body.Languages["de"] != "German" {
		t.Fatalf("unexpected name for de: %q", body.Languages["de"])
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodGet, "/health/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	if body := decodeBody[healthResponse](t, rec); body.Status != "ok" || body.Service != "translation-api" {
		t.Fatalf("unexpected health %+v", body)
	}

	broken := newTestAPI(t, &brokenBucket{Bucket: objectstore.NewMemoryBucket("test"), err: errors.New("unreachable")})
	rec = broken.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestUnknownRouteUsesDetailShape(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, objectstore.NewMemoryBucket("test"))
	rec := api.do(t, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
	if body := decodeBody[detailResponse](t, rec); body.Detail == "" {
		t.Fatalf("expected detail message")
	}
}

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()

	if got, err := parsePositiveInt("", 10, 1, 100); err != nil || got != 10 {
		t.Fatalf("expected default, got %d %v", got, err)
	}
	if got, err := parsePositiveInt(" 42 ", 10, 1, 100); err != nil || got != 42 {
		t.Fatalf("expected 42, got %d %v", got, err)
	}
	if _, err := parsePositiveInt("101", 10, 1, 100); err == nil {
		t.Fatalf("expected range error")
	}
	for _, raw := range []string{"0", " 0 ", "-1"} {
		if got, err := parsePositiveInt(raw, 10, 1, 100); err == nil {
			t.Fatalf("parsePositiveInt(%q) = %d, expected range error", raw, got)
		}
	}
}
