package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedUser(t *testing.T, st *store.Store, id string) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdHNhbHRzYWx0c2Fs$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		DisplayName:  "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedImport(t *testing.T, st *store.Store, id, userID, fileName string, detectedType domain.ImportType) *domain.Import {
	t.Helper()
	imp := &domain.Import{
		ID:           id,
		UserID:       userID,
		FileName:     fileName,
		DetectedType: detectedType,
		CreatedAt:    time.Now(),
	}
	if err := st.CreateImport(context.Background(), imp); err != nil {
		t.Fatalf("seed import: %v", err)
	}
	return imp
}

func seedRow(t *testing.T, st *store.Store, row *domain.ImportRow) {
	t.Helper()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := st.CreateImportRows(context.Background(), []*domain.ImportRow{row}); err != nil {
		t.Fatalf("seed row: %v", err)
	}
}
