package app

import (
	"context"
	"errors"
	"testing"

	"github.com/JMicallef9/translation-api/internal/translation"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"publish"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	if code := Run(nil); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"help", "--help", "-h"} {
		if code := Run([]string{arg}); code != 0 {
			t.Fatalf("Run(%q) returned %d, want 0", arg, code)
		}
	}
}

func TestTranslateRequiresLang(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"translate", "hello"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestTranslateRequiresText(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"translate", "--lang", "de"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestHistoryRejectsOutOfRangeLimit(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"history", "--limit", "0"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if code := Run([]string{"history", "--limit", "101"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestServeRejectsInvalidPort(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"serve", "--port", "70000"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: outputFormatTable},
		{raw: " JSON ", want: outputFormatJSON},
		{raw: "table", want: outputFormatTable},
		{raw: "yaml", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseOutputFormat(tc.raw, outputFormatTable)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseOutputFormat(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseOutputFormat(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parseOutputFormat(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestTruncateForTable(t *testing.T) {
	t.Parallel()

	if got := truncateForTable("  short  ", 10); got != "short" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := truncateForTable("Guten Morgen, wie geht's?", 10); got != "Guten M..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateForTable("日本語のテキスト", 3); got != "日本語" {
		t.Fatalf("unexpected rune truncation %q", got)
	}
}

func setMemoryEnv(t *testing.T) {
	t.Helper()

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("TRANSLATION_PROVIDER", "local")
	t.Setenv("SUPPORTED_LANGUAGES", "en,de,fr")
	t.Setenv("LOG_LEVEL", "error")
}

func TestHistoryOnEmptyMemoryStore(t *testing.T) {
	setMemoryEnv(t)

	if code := Run([]string{"history", "--env", "missing.env"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestHealthOnMemoryStore(t *testing.T) {
	setMemoryEnv(t)

	if code := Run([]string{"health", "--env", "missing.env"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestLanguagesAsJSON(t *testing.T) {
	setMemoryEnv(t)

	if code := Run([]string{"languages", "--env", "missing.env", "--format", "json"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRuntimeCatalogFollowsSelectedProvider(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("TRANSLATION_PROVIDER", "local")
	t.Setenv("SUPPORTED_LANGUAGES", "")
	t.Setenv("LOG_LEVEL", "error")

	rt, err := newRuntime(context.Background(), nil, "mymemory")
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	defer rt.close()

	catalog := rt.manager.Catalog()
	if !catalog.Contains("de") || catalog.Contains("sw") {
		t.Fatalf("expected the MyMemory catalog, got %v", catalog.Codes())
	}

	_, err = rt.manager.Translate(context.Background(), translation.Request{Text: "Hello world", TargetLang: "sw"})
	if !errors.Is(err, translation.ErrInvalidLanguageCode) {
		t.Fatalf("expected invalid language code, got %v", err)
	}

	defaults, err := newRuntime(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	defer defaults.close()
	if !defaults.manager.Catalog().Contains("sw") {
		t.Fatalf("expected the default provider catalog to include sw")
	}
}

func TestTranslateRejectsUnknownProvider(t *testing.T) {
	setMemoryEnv(t)

	if code := Run([]string{"translate", "--env", "missing.env", "--provider", "deepl", "--lang", "de", "Hello"}); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}
