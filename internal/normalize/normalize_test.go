package normalize

import (
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

func TestMarketplaceKnownStorefronts(t *testing.T) {
	tests := []struct {
		rawName  string
		code     string
		currency string
		language string
	}{
		{"Amazon.com", "US", "USD", "en"},
		{"Amazon.co.uk", "UK", "GBP", "en"},
		{"Amazon.de", "DE", "EUR", "de"},
		{"Amazon.co.jp", "JP", "JPY", "ja"},
		{"Amazon.com.br", "BR", "BRL", "pt"},
	}

	for _, tt := range tests {
		got := Marketplace(tt.rawName)
		if got.Code != tt.code {
			t.Errorf("Marketplace(%q).Code: got %q, want %q", tt.rawName, got.Code, tt.code)
		}
		if got.Currency != tt.currency {
			t.Errorf("Marketplace(%q).Currency: got %q, want %q", tt.rawName, got.Currency, tt.currency)
		}
		if got.LanguageHint != tt.language {
			t.Errorf("Marketplace(%q).LanguageHint: got %q, want %q", tt.rawName, got.LanguageHint, tt.language)
		}
	}
}

func TestMarketplaceFallback(t *testing.T) {
	got := Marketplace("books.example.fr")
	if got.Code != "FR" {
		t.Errorf("Code: got %q, want %q", got.Code, "FR")
	}
	if got.Country != "books.example.fr" {
		t.Errorf("Country: got %q, want raw name", got.Country)
	}
	if got.Currency != "USD" {
		t.Errorf("Currency: got %q, want USD default", got.Currency)
	}

	// No dot segment at all.
	got = Marketplace("SomeStore")
	if got.Code != "XX" {
		t.Errorf("Code: got %q, want %q", got.Code, "XX")
	}
}

func TestIdentifierType(t *testing.T) {
	tests := []struct {
		value string
		want  domain.IdentifierType
	}{
		{"", domain.IdentifierASIN},
		{"9781234567897", domain.IdentifierISBN},
		{"978-1-23456-789-7", domain.IdentifierISBN},
		{"9791234567896", domain.IdentifierISBN},
		{"123456789X", domain.IdentifierISBN},
		{"1234567890", domain.IdentifierISBN},
		{"B012345678", domain.IdentifierASIN}, // 10-char alphanumeric starting B0
		{"B0ABCDEFGHIJ", domain.IdentifierASIN},
		{"not-a-code", domain.IdentifierASIN}, // default
	}

	for _, tt := range tests {
		if got := IdentifierType(tt.value); got != tt.want {
			t.Errorf("IdentifierType(%q): got %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestIdentifierTypeDeterministic(t *testing.T) {
	for range 5 {
		if got := IdentifierType("9781234567897"); got != domain.IdentifierISBN {
			t.Fatalf("classification must be deterministic, got %q", got)
		}
	}
}

func TestGuessLanguage(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"", "en"},
		{"The Complete Guide to Publishing", "en"},
		{"Ein Buch für Anfänger", "de"},
		{"Le livre du succès", "fr"},
		{"El libro del éxito", "es"},
		{"Il romanzo della mia vita", "it"},
		{"O livro do escritor", "pt"},
		{"XYZZY", "en"}, // non-lexical, falls back
	}

	for _, tt := range tests {
		if got := GuessLanguage(tt.title); got != tt.want {
			t.Errorf("GuessLanguage(%q): got %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "en"},
		{"en", "en"},
		{"eng", "en"},
		{"en-US", "en"},
		{"de", "de"},
		{"deu", "de"},
		{"???", "en"},
	}

	for _, tt := range tests {
		if got := LanguageCode(tt.input); got != tt.want {
			t.Errorf("LanguageCode(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReportingPeriodPriority(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	salesDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	// Filename wins over sales date.
	if got := ReportingPeriod("report-2024-03.csv", &salesDate, now); got != "2024-03" {
		t.Errorf("filename period: got %q, want %q", got, "2024-03")
	}

	// Sales date wins over now.
	if got := ReportingPeriod("report.csv", &salesDate, now); got != "2024-01" {
		t.Errorf("sales date period: got %q, want %q", got, "2024-01")
	}

	// Current month as last resort.
	if got := ReportingPeriod("report.csv", nil, now); got != "2025-06" {
		t.Errorf("fallback period: got %q, want %q", got, "2025-06")
	}
}
