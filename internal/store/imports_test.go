package store

import (
	"context"
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

func seedImport(t *testing.T, s *Store, id, userID string, typ domain.ImportType) *domain.Import {
	t.Helper()
	imp := &domain.Import{
		ID:           id,
		UserID:       userID,
		FileName:     "report.xlsx",
		DetectedType: typ,
		CreatedAt:    time.Now(),
	}
	if err := s.CreateImport(context.Background(), imp); err != nil {
		t.Fatalf("seed import: %v", err)
	}
	return imp
}

func TestCreateImportRowsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user_1", "a@example.com")
	seedImport(t, s, "imp_1", "user_1", domain.ImportTypeSales)

	salesDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := []*domain.ImportRow{
		{
			ID:           "row_1",
			ImportID:     "imp_1",
			UserID:       "user_1",
			Title:        "My Book",
			ASIN:         "B0ABCDEFGH",
			Marketplace:  "Amazon.com",
			Currency:     "USD",
			Royalty:      "2.05",
			UnitsSold:    3,
			NetUnitsSold: 3,
			SalesDate:    &salesDate,
			RowIndex:     1,
			CreatedAt:    time.Now(),
		},
		{
			ID:        "row_2",
			ImportID:  "imp_1",
			UserID:    "user_1",
			Title:     "Other Book",
			RowIndex:  2,
			CreatedAt: time.Now(),
		},
	}
	if err := s.CreateImportRows(ctx, rows); err != nil {
		t.Fatalf("create rows: %v", err)
	}

	got, err := s.ListImportRows(ctx, "imp_1")
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Royalty != "2.05" {
		t.Errorf("royalty stored verbatim: got %q", got[0].Royalty)
	}
	if got[0].SalesDate == nil || !got[0].SalesDate.Equal(salesDate) {
		t.Errorf("sales date: got %v", got[0].SalesDate)
	}
	if got[1].Royalty != "" {
		t.Errorf("blank royalty must stay blank, got %q", got[1].Royalty)
	}
}

func TestListEligibleRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user_1", "a@example.com")
	seedUser(t, s, "user_2", "b@example.com")
	seedImport(t, s, "imp_sales", "user_1", domain.ImportTypeSales)
	seedImport(t, s, "imp_pay", "user_1", domain.ImportTypePayments)
	seedImport(t, s, "imp_other", "user_2", domain.ImportTypeSales)

	rows := []*domain.ImportRow{
		{ID: "row_1", ImportID: "imp_sales", UserID: "user_1", Royalty: "1.00", RowIndex: 1, CreatedAt: time.Now()},
		{ID: "row_2", ImportID: "imp_sales", UserID: "user_1", Royalty: "2.00", RowIndex: 2, IsDuplicate: true, CreatedAt: time.Now()},
		{ID: "row_3", ImportID: "imp_pay", UserID: "user_1", Royalty: "99.00", RowIndex: 1, CreatedAt: time.Now()},
		{ID: "row_4", ImportID: "imp_other", UserID: "user_2", Royalty: "5.00", RowIndex: 1, CreatedAt: time.Now()},
	}
	if err := s.CreateImportRows(ctx, rows); err != nil {
		t.Fatalf("create rows: %v", err)
	}

	records, err := s.ListEligibleRows(ctx, "user_1")
	if err != nil {
		t.Fatalf("list eligible: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 eligible row, got %d", len(records))
	}
	if records[0].Row.ID != "row_1" {
		t.Errorf("got row %q", records[0].Row.ID)
	}
	if records[0].Import.DetectedType != domain.ImportTypeSales {
		t.Errorf("import type: got %q", records[0].Import.DetectedType)
	}
}
