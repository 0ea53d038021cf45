package store

import (
	"context"
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

func TestGetOrCreateMarketplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := &domain.Marketplace{
		ID:           "mp_1",
		RawName:      "Amazon.de",
		Code:         "DE",
		Country:      "Germany",
		Currency:     "EUR",
		LanguageHint: "de",
		CreatedAt:    time.Now(),
	}

	first, err := s.GetOrCreateMarketplace(ctx, m)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.ID != "mp_1" {
		t.Errorf("got ID %q", first.ID)
	}

	// Second call with a different candidate ID must return the existing row.
	second, err := s.GetOrCreateMarketplace(ctx, &domain.Marketplace{
		ID:        "mp_2",
		RawName:   "Amazon.de",
		Code:      "DE",
		Country:   "Germany",
		Currency:  "EUR",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.ID != "mp_1" {
		t.Errorf("expected existing marketplace mp_1, got %q", second.ID)
	}

	all, err := s.ListMarketplaces(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 marketplace, got %d", len(all))
	}
}

func TestGetMarketplaceByRawNameNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMarketplaceByRawName(context.Background(), "Amazon.xyz")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
