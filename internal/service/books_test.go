package service

import (
	"context"
	"testing"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	apperrors "github.com/royaltydesk/royaltydesk-server/internal/errors"
	"github.com/royaltydesk/royaltydesk-server/internal/search"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

func newBookService(t *testing.T, st *store.Store) *BookService {
	t.Helper()
	idx, err := search.NewSearchIndex(search.Options{
		DataPath: t.TempDir(),
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("search index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return NewBookService(st, idx, validation.New(), discardLogger())
}

// migrateCatalog runs a minimal migration so the book service has data to
// work with, exercising the indexer hookup on the way.
func migrateCatalog(t *testing.T, st *store.Store, books *BookService, userID string) {
	t.Helper()

	seedImport(t, st, "imp_1", userID, "report-2024-01.xlsx", domain.ImportTypeSales)
	seedRow(t, st, &domain.ImportRow{
		ID:          "row_1",
		ImportID:    "imp_1",
		UserID:      userID,
		Title:       "The Lighthouse Keeper",
		ASIN:        "B0AAAAAAAA",
		Marketplace: "Amazon.com",
		Format:      "ebook",
		Royalty:     "2.99",
	})

	migration := NewMigrationService(st, books, discardLogger())
	if _, err := migration.MigrateUser(context.Background(), userID); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestBookServiceGetAndUpdate(t *testing.T) {
	st := newTestStore(t)
	svc := newBookService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	migrateCatalog(t, st, svc, user.ID)

	books, err := svc.ListBooks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("books = %d", len(books))
	}

	detail, err := svc.GetBook(ctx, user.ID, books[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Identifiers) != 1 {
		t.Errorf("identifiers = %d", len(detail.Identifiers))
	}
	if len(detail.Variants) != 1 {
		t.Errorf("variants = %d", len(detail.Variants))
	}

	updated, err := svc.UpdateBook(ctx, user.ID, books[0].ID, UpdateBookRequest{
		Title:    "Renamed",
		Language: "en",
		Format:   "paperback",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q", updated.Title)
	}

	// The rename is visible to search.
	params := search.DefaultSearchParams()
	params.Query = "renamed"
	result, err := svc.Search(ctx, user.ID, params)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("search after rename found %d", result.Total)
	}
}

func TestUpdateBookCanonicalizesLanguage(t *testing.T) {
	st := newTestStore(t)
	svc := newBookService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	migrateCatalog(t, st, svc, user.ID)

	books, err := svc.ListBooks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	cases := []struct {
		raw  string
		want string
	}{
		{"en-US", "en"},
		{"deu", "de"},
		{"pt-BR", "pt"},
		{"not a language", "en"},
	}
	for _, tc := range cases {
		updated, err := svc.UpdateBook(ctx, user.ID, books[0].ID, UpdateBookRequest{
			Title:    "The Lighthouse Keeper",
			Language: tc.raw,
			Format:   "ebook",
		})
		if err != nil {
			t.Fatalf("update with %q: %v", tc.raw, err)
		}
		if updated.Language != tc.want {
			t.Errorf("language %q stored as %q, want %q", tc.raw, updated.Language, tc.want)
		}
	}
}

func TestBookServiceScopedToOwner(t *testing.T) {
	st := newTestStore(t)
	svc := newBookService(t, st)
	ctx := context.Background()

	owner := seedUser(t, st, "user_1")
	other := seedUser(t, st, "user_2")
	migrateCatalog(t, st, svc, owner.ID)

	books, err := svc.ListBooks(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := svc.GetBook(ctx, other.ID, books[0].ID); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("foreign book should read as not found, got %v", err)
	}
	if _, err := svc.UpdateBook(ctx, other.ID, books[0].ID, UpdateBookRequest{
		Title: "Hijacked", Language: "en", Format: "ebook",
	}); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("foreign update should read as not found, got %v", err)
	}
}

func TestReindexAll(t *testing.T) {
	st := newTestStore(t)
	svc := newBookService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	migrateCatalog(t, st, svc, user.ID)

	indexed, err := svc.ReindexAll(ctx)
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if indexed != 1 {
		t.Errorf("indexed = %d", indexed)
	}

	// Identifier search works after a rebuild.
	params := search.DefaultSearchParams()
	params.Query = "B0AAAAAAAA"
	result, err := svc.Search(ctx, user.ID, params)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("identifier search found %d", result.Total)
	}
}
