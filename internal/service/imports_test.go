package service

import (
	"context"
	"testing"

	apperrors "github.com/royaltydesk/royaltydesk-server/internal/errors"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

func TestCreateImportWithRows(t *testing.T) {
	st := newTestStore(t)
	svc := NewImportService(st, validation.New(), discardLogger())
	ctx := context.Background()

	user := seedUser(t, st, "user_1")

	imp, err := svc.CreateImport(ctx, user.ID, CreateImportRequest{
		FileName:     "KDP-report-2024-03.xlsx",
		DetectedType: "sales",
		Rows: []ImportRowInput{
			{Title: "First", ASIN: "B0AAAAAAAA", Royalty: "1.99", RowIndex: 1},
			{Title: "Second", Royalty: "", RowIndex: 2},
		},
	})
	if err != nil {
		t.Fatalf("create import: %v", err)
	}
	if imp.RowCount != 2 {
		t.Errorf("row count = %d", imp.RowCount)
	}

	detail, err := svc.GetImport(ctx, user.ID, imp.ID)
	if err != nil {
		t.Fatalf("get import: %v", err)
	}
	if len(detail.Rows) != 2 {
		t.Fatalf("rows = %d", len(detail.Rows))
	}
	if detail.Rows[0].Royalty != "1.99" {
		t.Errorf("royalty not verbatim: %q", detail.Rows[0].Royalty)
	}
	if detail.Rows[1].Royalty != "" {
		t.Errorf("blank royalty should stay blank: %q", detail.Rows[1].Royalty)
	}
}

func TestCreateImportRejectsBadType(t *testing.T) {
	st := newTestStore(t)
	svc := NewImportService(st, validation.New(), discardLogger())

	_, err := svc.CreateImport(context.Background(), "user_1", CreateImportRequest{
		FileName:     "report.xlsx",
		DetectedType: "orders",
	})
	if !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetImportScopedToOwner(t *testing.T) {
	st := newTestStore(t)
	svc := NewImportService(st, validation.New(), discardLogger())
	ctx := context.Background()

	owner := seedUser(t, st, "user_1")
	other := seedUser(t, st, "user_2")

	imp, err := svc.CreateImport(ctx, owner.ID, CreateImportRequest{
		FileName:     "report.xlsx",
		DetectedType: "sales",
	})
	if err != nil {
		t.Fatalf("create import: %v", err)
	}

	if _, err := svc.GetImport(ctx, other.ID, imp.ID); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("foreign import should read as not found, got %v", err)
	}
}

func TestListImports(t *testing.T) {
	st := newTestStore(t)
	svc := NewImportService(st, validation.New(), discardLogger())
	ctx := context.Background()

	user := seedUser(t, st, "user_1")

	for _, name := range []string{"one.xlsx", "two.xlsx"} {
		if _, err := svc.CreateImport(ctx, user.ID, CreateImportRequest{
			FileName:     name,
			DetectedType: "sales",
		}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	imports, err := svc.ListImports(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(imports) != 2 {
		t.Errorf("imports = %d", len(imports))
	}
}
