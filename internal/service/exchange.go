package service

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/ratelimit"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
)

// fallbackRates are approximate units-per-USD rates used when no fetched rate
// is stored for a currency. Good enough for a ballpark normalized view;
// the per-currency breakdown stays authoritative either way.
var fallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.95,
	"JPY": 160.0,
	"GBP": 0.83,
	"CAD": 1.45,
	"INR": 88.0,
	"AUD": 1.65,
	"BRL": 6.2,
	"MXN": 21.0,
}

const fixerAPIHost = "data.fixer.io"

// ExchangeRateConfig controls the optional remote rate fetch.
type ExchangeRateConfig struct {
	FetchEnabled bool
	FixerAPIKey  string
}

// ExchangeRateService provides units-per-USD conversion rates. Stored rates
// from the remote provider take precedence; the static fallback table covers
// everything else.
type ExchangeRateService struct {
	store   *store.Store
	client  *http.Client
	limiter *ratelimit.KeyedRateLimiter
	config  ExchangeRateConfig
	logger  *slog.Logger
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(st *store.Store, limiter *ratelimit.KeyedRateLimiter, config ExchangeRateConfig, logger *slog.Logger) *ExchangeRateService {
	return &ExchangeRateService{
		store:   st,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		config:  config,
		logger:  logger,
	}
}

// Rates returns the current units-per-USD rate table: the fallback table
// overlaid with the newest stored rate per currency.
func (s *ExchangeRateService) Rates(ctx context.Context) (map[string]float64, error) {
	rates := make(map[string]float64, len(fallbackRates))
	for currency, rate := range fallbackRates {
		rates[currency] = rate
	}

	stored, err := s.store.ListLatestExchangeRates(ctx, "USD")
	if err != nil {
		return nil, fmt.Errorf("load stored rates: %w", err)
	}
	for currency, r := range stored {
		rates[currency] = r.Rate
	}

	return rates, nil
}

// ConvertToUSD converts an amount in the given currency to USD using the
// provided rate table. Returns the converted amount, the rate used, and
// whether a rate was available.
func ConvertToUSD(amount float64, currency string, rates map[string]float64) (float64, float64, bool) {
	rate, ok := rates[currency]
	if !ok || rate == 0 {
		return 0, 0, false
	}
	return amount / rate, rate, true
}

// fixerResponse is the shape of the provider's latest-rates payload.
// The free tier always quotes against EUR, so USD cross rates are derived.
type fixerResponse struct {
	Success bool               `json:"success"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
}

// RefreshRates fetches current rates from the remote provider and stores
// them. A no-op when fetching is disabled or no API key is configured.
func (s *ExchangeRateService) RefreshRates(ctx context.Context) error {
	if !s.config.FetchEnabled || s.config.FixerAPIKey == "" {
		if s.logger != nil {
			s.logger.Debug("Exchange rate fetch disabled, using fallback rates")
		}
		return nil
	}

	if err := s.limiter.Wait(ctx, fixerAPIHost); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("https://%s/api/latest?access_key=%s", fixerAPIHost, s.config.FixerAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var payload fixerResponse
	if err := json.UnmarshalRead(resp.Body, &payload); err != nil {
		return fmt.Errorf("decode rates: %w", err)
	}
	if !payload.Success {
		return fmt.Errorf("rate provider reported failure")
	}

	usdPerEUR, ok := payload.Rates["USD"]
	if !ok || usdPerEUR == 0 {
		return fmt.Errorf("rate payload missing USD quote")
	}

	date := payload.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	stored := 0
	for currency, eurRate := range payload.Rates {
		if currency == "USD" {
			continue
		}
		// Provider quotes per EUR; derive units of currency per USD.
		perUSD := eurRate / usdPerEUR
		err := s.store.UpsertExchangeRate(ctx, &domain.ExchangeRate{
			FromCurrency: currency,
			ToCurrency:   "USD",
			Rate:         perUSD,
			Date:         date,
			UpdatedAt:    time.Now(),
		})
		if err != nil {
			return fmt.Errorf("store rate %s: %w", currency, err)
		}
		stored++
	}

	if s.logger != nil {
		s.logger.Info("Refreshed exchange rates", "stored", stored, "date", date)
	}

	return nil
}
