package language

import "testing"

func TestDefaultCatalogHasMoreThanFortyLanguages(t *testing.T) {
	t.Parallel()

	catalog := NewDefaultCatalog()
	if catalog.Len() <= 40 {
		t.Fatalf("expected more than 40 languages, got %d", catalog.Len())
	}
	names := catalog.Names()
	if names["fr"] != "French" {
		t.Fatalf("unexpected name for fr: %q", names["fr"])
	}
	if names["de"] != "German" {
		t.Fatalf("unexpected name for de: %q", names["de"])
	}
}

func TestCatalogLookupIgnoresCase(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog([]string{"fr", "zh-CN"})

	for _, code := range []string{"fr", "FR", " Fr ", "zh-cn", "ZH_cn"} {
		if !catalog.Contains(code) {
			t.Fatalf("expected %q to be supported", code)
		}
	}
	if canonical, _ := catalog.Lookup("zh-cn"); canonical != "zh-CN" {
		t.Fatalf("expected registered spelling, got %q", canonical)
	}
	for _, code := range []string{"qq", "", "f r", "zh"} {
		if catalog.Contains(code) {
			t.Fatalf("did not expect %q to be supported", code)
		}
	}
}

func TestNewCatalogDropsBlankAndDuplicateCodes(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog([]string{"es", " ", "ES", "x1", "it"})
	codes := catalog.Codes()
	if len(codes) != 2 || codes[0] != "es" || codes[1] != "it" {
		t.Fatalf("unexpected codes: %v", codes)
	}

	codes[0] = "mutated"
	if catalog.Codes()[0] != "es" {
		t.Fatalf("Codes must return a copy")
	}
}

func TestDisplayNameFallsBackToCode(t *testing.T) {
	t.Parallel()

	if got := DisplayName("not a tag"); got != "not a tag" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
