package store

import (
	"context"
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

func TestUpsertExchangeRate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := &domain.ExchangeRate{
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		Rate:         0.95,
		Date:         "2025-03-01",
		UpdatedAt:    time.Now(),
	}
	if err := s.UpsertExchangeRate(ctx, r); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Same day replaces.
	r.Rate = 0.97
	if err := s.UpsertExchangeRate(ctx, r); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetLatestExchangeRate(ctx, "EUR", "USD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Rate != 0.97 {
		t.Errorf("rate: got %f", got.Rate)
	}
}

func TestGetLatestExchangeRatePicksNewestDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	days := []struct {
		date string
		rate float64
	}{
		{"2025-02-28", 160.0},
		{"2025-03-02", 158.5},
		{"2025-03-01", 159.0},
	}
	for _, d := range days {
		err := s.UpsertExchangeRate(ctx, &domain.ExchangeRate{
			FromCurrency: "JPY",
			ToCurrency:   "USD",
			Rate:         d.rate,
			Date:         d.date,
			UpdatedAt:    time.Now(),
		})
		if err != nil {
			t.Fatalf("upsert %s: %v", d.date, err)
		}
	}

	got, err := s.GetLatestExchangeRate(ctx, "JPY", "USD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != "2025-03-02" || got.Rate != 158.5 {
		t.Errorf("got %+v", got)
	}
}

func TestListLatestExchangeRates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rates := []*domain.ExchangeRate{
		{FromCurrency: "EUR", ToCurrency: "USD", Rate: 0.95, Date: "2025-03-01", UpdatedAt: time.Now()},
		{FromCurrency: "EUR", ToCurrency: "USD", Rate: 0.96, Date: "2025-03-02", UpdatedAt: time.Now()},
		{FromCurrency: "GBP", ToCurrency: "USD", Rate: 0.83, Date: "2025-03-01", UpdatedAt: time.Now()},
	}
	for _, r := range rates {
		if err := s.UpsertExchangeRate(ctx, r); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := s.ListLatestExchangeRates(ctx, "USD")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 currencies, got %d", len(got))
	}
	if got["EUR"].Rate != 0.96 {
		t.Errorf("EUR: got %f, want newest rate", got["EUR"].Rate)
	}

	_, err = s.GetLatestExchangeRate(ctx, "BRL", "USD")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
