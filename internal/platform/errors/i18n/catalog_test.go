package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if GetCatalog("") != base {
		t.Fatal("expected empty locale to use en-US")
	}
	if GetCatalog("!!") != base {
		t.Fatal("expected malformed locale to use en-US")
	}
	if GetCatalog("ja-JP") != base {
		t.Fatal("expected unsupported locale to use en-US")
	}
}

func TestGetCatalogMatchesVariants(t *testing.T) {
	for _, locale := range []string{"pt-BR", "pt", "pt_BR.UTF-8"} {
		if got := GetCatalog(locale).Locale(); got != "pt-BR" {
			t.Fatalf("GetCatalog(%q) = %s, want pt-BR", locale, got)
		}
	}
	if got := GetCatalog("en-GB").Locale(); got != "en-US" {
		t.Fatalf("GetCatalog(en-GB) = %s, want en-US", got)
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	msg := GetCatalog("en-US").Format(CodeNoMatchingTransition, map[string]string{
		"entity_type": "quest",
		"from_state":  "Detected",
		"trigger":     "dance",
	})
	want := `Nothing happens: no quest transition from "Detected" on "dance".`
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
}

func TestFormatOptionalMetadata(t *testing.T) {
	msg := GetCatalog("en-US").Format(CodeInsufficientAnchors, nil)
	if msg != "Not enough lore matches to ground the scene." {
		t.Fatalf("message = %q", msg)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format("code", nil) != "hello " {
		t.Fatal("expected missing metadata to render empty")
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestEveryLocaleCoversEveryCode(t *testing.T) {
	for code := range enUS {
		if _, ok := ptBR[code]; !ok {
			t.Errorf("pt-BR is missing %s", code)
		}
	}
}
