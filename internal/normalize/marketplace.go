// Package normalize provides pure classification heuristics for raw KDP
// report values: storefront labels, catalog identifiers, title languages,
// and reporting periods. Everything here is a total function — unknown
// inputs fall back to a default rather than erroring, because a single odd
// cell must never stop a migration batch.
package normalize

import "strings"

// MarketplaceInfo is the canonical mapping for a storefront label.
type MarketplaceInfo struct {
	Code         string
	Country      string
	Currency     string // ISO 4217
	LanguageHint string
}

// marketplaceTable maps known Amazon storefront labels to their canonical
// code, country, currency and language.
var marketplaceTable = map[string]MarketplaceInfo{
	"Amazon.com":    {Code: "US", Country: "United States", Currency: "USD", LanguageHint: "en"},
	"Amazon.co.uk":  {Code: "UK", Country: "United Kingdom", Currency: "GBP", LanguageHint: "en"},
	"Amazon.de":     {Code: "DE", Country: "Germany", Currency: "EUR", LanguageHint: "de"},
	"Amazon.fr":     {Code: "FR", Country: "France", Currency: "EUR", LanguageHint: "fr"},
	"Amazon.es":     {Code: "ES", Country: "Spain", Currency: "EUR", LanguageHint: "es"},
	"Amazon.it":     {Code: "IT", Country: "Italy", Currency: "EUR", LanguageHint: "it"},
	"Amazon.ca":     {Code: "CA", Country: "Canada", Currency: "CAD", LanguageHint: "en"},
	"Amazon.com.au": {Code: "AU", Country: "Australia", Currency: "AUD", LanguageHint: "en"},
	"Amazon.co.jp":  {Code: "JP", Country: "Japan", Currency: "JPY", LanguageHint: "ja"},
	"Amazon.com.br": {Code: "BR", Country: "Brazil", Currency: "BRL", LanguageHint: "pt"},
	"Amazon.in":     {Code: "IN", Country: "India", Currency: "INR", LanguageHint: "en"},
	"Amazon.com.mx": {Code: "MX", Country: "Mexico", Currency: "MXN", LanguageHint: "es"},
	"Amazon.nl":     {Code: "NL", Country: "Netherlands", Currency: "EUR", LanguageHint: "nl"},
}

// Marketplace resolves a raw storefront label to its canonical mapping.
//
// Unknown labels get a heuristic fallback: the code is the last dot-segment
// uppercased ("books.example.fr" -> "FR", no dot -> "XX"), the country is the
// raw label itself, and currency/language default to USD/en. The fallback
// always fires rather than erroring so that every row resolves to some
// marketplace.
func Marketplace(rawName string) MarketplaceInfo {
	if info, ok := marketplaceTable[rawName]; ok {
		return info
	}

	code := "XX"
	if i := strings.LastIndex(rawName, "."); i >= 0 && i < len(rawName)-1 {
		code = strings.ToUpper(rawName[i+1:])
	}

	return MarketplaceInfo{
		Code:         code,
		Country:      rawName,
		Currency:     "USD",
		LanguageHint: "en",
	}
}
