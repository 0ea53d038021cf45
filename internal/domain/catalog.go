package domain

import "time"

// Format is a publishable form of a book.
type Format string

// Known formats. KDP reports only ever carry these four.
const (
	FormatEbook     Format = "ebook"
	FormatPaperback Format = "paperback"
	FormatHardcover Format = "hardcover"
	FormatAudiobook Format = "audiobook"
)

// ParseFormat normalizes a raw format string, defaulting to ebook.
// Source rows frequently omit the format entirely.
func ParseFormat(raw string) Format {
	switch Format(raw) {
	case FormatEbook, FormatPaperback, FormatHardcover, FormatAudiobook:
		return Format(raw)
	default:
		return FormatEbook
	}
}

// IdentifierType distinguishes the two catalog identifier schemes that appear
// in KDP reports.
type IdentifierType string

const (
	IdentifierASIN IdentifierType = "ASIN"
	IdentifierISBN IdentifierType = "ISBN"
)

// Marketplace is the canonical representation of a regional storefront.
// Created lazily the first time a raw storefront label is seen; immutable
// afterwards except by manual admin edit.
type Marketplace struct {
	ID           string    `json:"id"`
	RawName      string    `json:"raw_name"` // Unique, exactly as seen in source data
	Code         string    `json:"code"`
	Country      string    `json:"country"`
	Currency     string    `json:"currency"` // ISO 4217
	LanguageHint string    `json:"language_hint"`
	CreatedAt    time.Time `json:"created_at"`
}

// Book is a single work owned by a user. One book may have many variants
// (one per format and marketplace) and many identifiers.
type Book struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Format    Format    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identifier links a catalog identifier value (ASIN- or ISBN-like) to a book.
// Value+type pairs are not globally unique; duplicate inserts are ignored.
type Identifier struct {
	ID            string         `json:"id"`
	BookID        string         `json:"book_id"`
	Type          IdentifierType `json:"type"`
	Value         string         `json:"value"`
	MarketplaceID string         `json:"marketplace_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Variant is a specific publishable form of a book in a specific format and
// marketplace. Unique per (BookID, Format, MarketplaceID).
type Variant struct {
	ID            string    `json:"id"`
	BookID        string    `json:"book_id"`
	Format        Format    `json:"format"`
	MarketplaceID string    `json:"marketplace_id"`
	ASIN          string    `json:"asin,omitempty"`
	ISBN          string    `json:"isbn,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
