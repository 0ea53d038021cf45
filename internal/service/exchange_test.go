package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
)

func newExchangeService(t *testing.T, st *store.Store) *ExchangeRateService {
	t.Helper()
	return NewExchangeRateService(st, nil, ExchangeRateConfig{}, discardLogger())
}

func TestRatesFallback(t *testing.T) {
	st := newTestStore(t)
	svc := newExchangeService(t, st)

	rates, err := svc.Rates(context.Background())
	if err != nil {
		t.Fatalf("rates: %v", err)
	}

	if rates["USD"] != 1.0 {
		t.Errorf("USD = %v", rates["USD"])
	}
	if rates["EUR"] != 0.95 {
		t.Errorf("EUR fallback = %v", rates["EUR"])
	}
	if rates["JPY"] != 160.0 {
		t.Errorf("JPY fallback = %v", rates["JPY"])
	}
}

func TestRatesStoredOverrideFallback(t *testing.T) {
	st := newTestStore(t)
	svc := newExchangeService(t, st)
	ctx := context.Background()

	err := st.UpsertExchangeRate(ctx, &domain.ExchangeRate{
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		Rate:         0.91,
		Date:         "2025-06-10",
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rates, err := svc.Rates(ctx)
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if rates["EUR"] != 0.91 {
		t.Errorf("stored rate should win, got %v", rates["EUR"])
	}
	if rates["GBP"] != 0.83 {
		t.Errorf("untouched currency should stay on fallback, got %v", rates["GBP"])
	}
}

func TestConvertToUSD(t *testing.T) {
	rates := map[string]float64{
		"USD": 1.0,
		"EUR": 0.95,
		"JPY": 160.0,
	}

	tests := []struct {
		amount   float64
		currency string
		want     float64
		ok       bool
	}{
		{100, "USD", 100, true},
		{95, "EUR", 100, true},
		{1600, "JPY", 10, true},
		{50, "CHF", 0, false}, // no rate
	}

	for _, tt := range tests {
		got, _, ok := ConvertToUSD(tt.amount, tt.currency, rates)
		if ok != tt.ok {
			t.Errorf("%v %s: ok = %v", tt.amount, tt.currency, ok)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%v %s = %v, want %v", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestConvertToUSDZeroRate(t *testing.T) {
	if _, _, ok := ConvertToUSD(10, "XXX", map[string]float64{"XXX": 0}); ok {
		t.Error("zero rate must not convert")
	}
}

func TestRefreshRatesDisabled(t *testing.T) {
	st := newTestStore(t)
	svc := newExchangeService(t, st) // FetchEnabled false, no key

	if err := svc.RefreshRates(context.Background()); err != nil {
		t.Errorf("disabled refresh should be a no-op, got %v", err)
	}
}
