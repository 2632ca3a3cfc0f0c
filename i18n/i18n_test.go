package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("pt-BR,pt;q=0.8") != "pt" {
		t.Fatalf("expected pt")
	}
	if DetectLanguage("fr-FR,fr;q=0.8") != "pt" {
		t.Fatalf("expected pt fallback")
	}
	if DetectLanguage("") != "pt" {
		t.Fatalf("expected default pt")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("pt", "required") != "Obrigatório" {
		t.Fatalf("expected Obrigatório")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to pt translation if exists
	if T("es", "empty_quote") != "Não é possível converter um orçamento sem itens" {
		t.Fatalf("expected pt fallback for es lang")
	}
}

func TestCataloguesHaveSameCodes(t *testing.T) {
	for code := range catalog["pt"] {
		if _, ok := catalog["en"][code]; !ok {
			t.Errorf("code %q missing in en", code)
		}
	}
	for code := range catalog["en"] {
		if _, ok := catalog["pt"][code]; !ok {
			t.Errorf("code %q missing in pt", code)
		}
	}
}
