// Package search provides full-text catalog search using Bleve. Book titles
// and identifier values are indexed per user, with fuzzy matching for the
// inevitable typos in report-derived titles.
package search

import (
	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

// BookDocument is the document structure for the Bleve index. Identifier
// values are denormalized into the book document so an ASIN or ISBN pasted
// into the search box resolves straight to its book.
type BookDocument struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"` // Keyword field; scopes every query
	Title       string   `json:"title"`
	Language    string   `json:"language"`
	Format      string   `json:"format"`
	Identifiers []string `json:"identifiers,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis, for recency sorting
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names matching
// the index mapping. Bleve defaults to Go struct field names otherwise.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"user_id":    d.UserID,
		"title":      d.Title,
		"language":   d.Language,
		"format":     d.Format,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if len(d.Identifiers) > 0 {
		m["identifiers"] = d.Identifiers
	}

	return m
}

// BookToDocument converts a domain Book to a BookDocument. Identifier values
// must be provided by the caller; the search package does not reach into the
// store.
func BookToDocument(book *domain.Book, identifierValues []string) *BookDocument {
	return &BookDocument{
		ID:          book.ID,
		UserID:      book.UserID,
		Title:       book.Title,
		Language:    book.Language,
		Format:      string(book.Format),
		Identifiers: identifierValues,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
}
