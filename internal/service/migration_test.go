package service

import (
	"context"
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
)

func newMigrationService(t *testing.T, st *store.Store) *MigrationService {
	t.Helper()
	svc := NewMigrationService(st, nil, discardLogger())
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestMigrateEndToEnd(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "KDP-report-2024-03.xlsx", domain.ImportTypeSales)

	seedRow(t, st, &domain.ImportRow{
		ID:           "row_1",
		ImportID:     "imp_1",
		UserID:       user.ID,
		Title:        "Der Zauberberg",
		ASIN:         "B0ABCDEFGH",
		Marketplace:  "Amazon.de",
		Format:       "ebook",
		Currency:     "EUR",
		Royalty:      "2.99",
		UnitsSold:    3,
		NetUnitsSold: 3,
		RowIndex:     1,
	})
	seedRow(t, st, &domain.ImportRow{
		ID:       "row_2",
		ImportID: "imp_1",
		UserID:   user.ID,
		Title:    "Der Zauberberg",
		ASIN:     "B0ABCDEFGH",
		Royalty:  "", // blank royalty is not a sale
		RowIndex: 2,
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 1 || result.SkippedCount != 1 {
		t.Fatalf("got migrated=%d skipped=%d, want 1/1", result.MigratedCount, result.SkippedCount)
	}

	events, err := st.ListSalesEvents(ctx, user.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 sales event, got %d", len(events))
	}

	e := events[0]
	if e.OriginalRoyalty != "2.99" {
		t.Errorf("royalty not verbatim: %q", e.OriginalRoyalty)
	}
	if e.OriginalCurrency != "EUR" {
		t.Errorf("currency = %q", e.OriginalCurrency)
	}
	if e.ReportingPeriod != "2024-03" {
		t.Errorf("period = %q, want from file name", e.ReportingPeriod)
	}
	if e.SourceType != "sales" {
		t.Errorf("source type = %q", e.SourceType)
	}

	// The row's marketplace and language should flow into the catalog.
	books, err := st.ListBooks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 auto-created book, got %d", len(books))
	}
	if books[0].Title != "Der Zauberberg" {
		t.Errorf("title = %q", books[0].Title)
	}
	if books[0].Language != "de" {
		t.Errorf("language = %q, want guessed de", books[0].Language)
	}

	mp, err := st.GetMarketplaceByRawName(ctx, "Amazon.de")
	if err != nil {
		t.Fatalf("marketplace not created: %v", err)
	}
	if mp.Code != "DE" || mp.Currency != "EUR" {
		t.Errorf("marketplace = %s/%s", mp.Code, mp.Currency)
	}
}

func TestMigrateExcludesPaymentsImports(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_pay", user.ID, "payments-2024.xlsx", domain.ImportTypePayments)

	seedRow(t, st, &domain.ImportRow{
		ID:       "row_1",
		ImportID: "imp_pay",
		UserID:   user.ID,
		Title:    "Some Book",
		Royalty:  "100.00",
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 0 || result.SkippedCount != 0 {
		t.Errorf("payments rows should not even be considered, got %+v", result)
	}

	count, err := st.CountSalesEvents(ctx, user.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no events from a payments import, got %d", count)
	}
}

func TestMigrateExcludesDuplicateRows(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)

	seedRow(t, st, &domain.ImportRow{
		ID:          "row_dup",
		ImportID:    "imp_1",
		UserID:      user.ID,
		Title:       "Dup",
		Royalty:     "5.00",
		IsDuplicate: true,
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 0 || result.SkippedCount != 0 {
		t.Errorf("duplicate rows are outside the eligible set, got %+v", result)
	}
}

func TestMigrateSkipsMissingOrZeroRoyalties(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)

	royalties := []string{"", "  ", "0", "0.00", "N/A"}
	for i, r := range royalties {
		seedRow(t, st, &domain.ImportRow{
			ID:       "row_" + string(rune('a'+i)),
			ImportID: "imp_1",
			UserID:   user.ID,
			Title:    "Freebie",
			Royalty:  r,
			RowIndex: i,
		})
	}

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 0 {
		t.Errorf("migrated %d rows without a royalty", result.MigratedCount)
	}
	if result.SkippedCount != len(royalties) {
		t.Errorf("skipped = %d, want %d", result.SkippedCount, len(royalties))
	}

	// Skipped rows must not create catalog entries either.
	books, err := st.ListBooks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 0 {
		t.Errorf("skipped rows created %d books", len(books))
	}
}

func TestMigrateKeepsRefundRows(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)

	seedRow(t, st, &domain.ImportRow{
		ID:            "row_refund",
		ImportID:      "imp_1",
		UserID:        user.ID,
		Title:         "Returned Book",
		ASIN:          "B0REFUND01",
		Royalty:       "-1.50",
		UnitsRefunded: 1,
		NetUnitsSold:  -1,
		RowIndex:      1,
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 1 || result.SkippedCount != 0 {
		t.Fatalf("got migrated=%d skipped=%d, want 1/0", result.MigratedCount, result.SkippedCount)
	}

	events, err := st.ListSalesEvents(ctx, user.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 sales event, got %d", len(events))
	}
	if events[0].OriginalRoyalty != "-1.50" {
		t.Errorf("refund royalty not verbatim: %q", events[0].OriginalRoyalty)
	}
	if events[0].NetUnitsSold != -1 {
		t.Errorf("net units = %d, want -1", events[0].NetUnitsSold)
	}
}

func TestMigrateRowFailureDoesNotAbortBatch(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)

	seedRow(t, st, &domain.ImportRow{
		ID:            "row_bad",
		ImportID:      "imp_1",
		UserID:        user.ID,
		Royalty:       "3.00",
		MatchedBookID: "book_that_does_not_exist",
		RowIndex:      1,
	})
	seedRow(t, st, &domain.ImportRow{
		ID:       "row_good",
		ImportID: "imp_1",
		UserID:   user.ID,
		Title:    "Fine Book",
		ASIN:     "B0GOODROW1",
		Royalty:  "4.00",
		RowIndex: 2,
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 1 {
		t.Errorf("migrated = %d, want the good row through", result.MigratedCount)
	}
	if result.SkippedCount != 1 {
		t.Errorf("skipped = %d, want the failing row counted", result.SkippedCount)
	}
}

func TestMigrateResolvesBookByIdentifier(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)

	// Two rows sharing an ASIN across different marketplaces.
	seedRow(t, st, &domain.ImportRow{
		ID:          "row_1",
		ImportID:    "imp_1",
		UserID:      user.ID,
		Title:       "One Book",
		ASIN:        "B0SHAREDAS",
		Marketplace: "Amazon.com",
		Royalty:     "1.00",
		RowIndex:    1,
	})
	seedRow(t, st, &domain.ImportRow{
		ID:          "row_2",
		ImportID:    "imp_1",
		UserID:      user.ID,
		Title:       "One Book",
		ASIN:        "B0SHAREDAS",
		Marketplace: "Amazon.co.uk",
		Royalty:     "2.00",
		RowIndex:    2,
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 2 {
		t.Fatalf("migrated = %d", result.MigratedCount)
	}

	books, err := st.ListBooks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("expected identifier dedup to a single book, got %d", len(books))
	}

	// One variant per marketplace under the shared book.
	variants, err := st.ListVariants(ctx, books[0].ID)
	if err != nil {
		t.Fatalf("list variants: %v", err)
	}
	if len(variants) != 2 {
		t.Errorf("expected 2 variants, got %d", len(variants))
	}
}

func TestMigrateUsesExplicitBookMatch(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	now := time.Now()
	book := &domain.Book{
		ID:        "book_known",
		UserID:    user.ID,
		Title:     "Already Catalogued",
		Language:  "en",
		Format:    domain.FormatEbook,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateBook(ctx, book); err != nil {
		t.Fatalf("create book: %v", err)
	}

	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)
	seedRow(t, st, &domain.ImportRow{
		ID:            "row_1",
		ImportID:      "imp_1",
		UserID:        user.ID,
		Title:         "A Completely Different Title",
		Royalty:       "2.00",
		MatchedBookID: book.ID,
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 1 {
		t.Fatalf("migrated = %d", result.MigratedCount)
	}

	books, err := st.ListBooks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("explicit match should not create a new book, got %d", len(books))
	}
}

func TestMigrateRoutesKenpReads(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_kenp", user.ID, "kenp-2024-05.xlsx", domain.ImportTypeKenpRead)

	seedRow(t, st, &domain.ImportRow{
		ID:            "row_pages",
		ImportID:      "imp_kenp",
		UserID:        user.ID,
		Title:         "Page Turner",
		ASIN:          "B0KENPBOOK",
		Royalty:       "1.23",
		KenpPagesRead: 450,
		RowIndex:      1,
	})
	// A kenp file row without page reads falls back to a sales event.
	seedRow(t, st, &domain.ImportRow{
		ID:       "row_nopages",
		ImportID: "imp_kenp",
		UserID:   user.ID,
		Title:    "Page Turner",
		ASIN:     "B0KENPBOOK",
		Royalty:  "0.50",
		RowIndex: 2,
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 2 {
		t.Fatalf("migrated = %d", result.MigratedCount)
	}

	reads, err := st.ListKenpReads(ctx, user.ID)
	if err != nil {
		t.Fatalf("list reads: %v", err)
	}
	if len(reads) != 1 {
		t.Fatalf("expected 1 kenp read, got %d", len(reads))
	}
	if reads[0].KenpPages != 450 {
		t.Errorf("pages = %d", reads[0].KenpPages)
	}
	if reads[0].ReportingPeriod != "2024-05" {
		t.Errorf("period = %q", reads[0].ReportingPeriod)
	}

	events, err := st.ListSalesEvents(ctx, user.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected the page-less row as a sales event, got %d", len(events))
	}
}

func TestMigrateDefaultsMarketplaceAndCurrency(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)

	seedRow(t, st, &domain.ImportRow{
		ID:       "row_1",
		ImportID: "imp_1",
		UserID:   user.ID,
		Title:    "Bare Row",
		Royalty:  "1.99",
		// No marketplace, no currency, no sales date.
	})

	result, err := svc.MigrateUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 1 {
		t.Fatalf("migrated = %d", result.MigratedCount)
	}

	if _, err := st.GetMarketplaceByRawName(ctx, "Amazon.com"); err != nil {
		t.Errorf("blank marketplace should default to Amazon.com: %v", err)
	}

	events, err := st.ListSalesEvents(ctx, user.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if events[0].OriginalCurrency != "USD" {
		t.Errorf("currency = %q, want USD default", events[0].OriginalCurrency)
	}
	// No file-name period and no sales date: falls back to the current month.
	if events[0].ReportingPeriod != "2025-06" {
		t.Errorf("period = %q, want fallback to now", events[0].ReportingPeriod)
	}
}

func TestMigrateRerunAppends(t *testing.T) {
	st := newTestStore(t)
	svc := newMigrationService(t, st)
	ctx := context.Background()

	user := seedUser(t, st, "user_1")
	seedImport(t, st, "imp_1", user.ID, "report.xlsx", domain.ImportTypeSales)
	seedRow(t, st, &domain.ImportRow{
		ID:       "row_1",
		ImportID: "imp_1",
		UserID:   user.ID,
		Title:    "Repeat",
		ASIN:     "B0REPEAT01",
		Royalty:  "2.00",
	})

	for range 2 {
		if _, err := svc.MigrateUser(ctx, user.ID); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	count, err := st.CountSalesEvents(ctx, user.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("re-run should append, got %d events", count)
	}

	// The catalog stays deduplicated even though events append.
	books, err := st.ListBooks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("got %d books", len(books))
	}
}
