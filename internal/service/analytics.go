package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
)

// AnalyticsService serves aggregate views over a user's migrated events.
// Aggregation happens in SQL; this layer only shapes and, for the normalized
// view, converts.
type AnalyticsService struct {
	store    *store.Store
	exchange *ExchangeRateService
	logger   *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(st *store.Store, exchange *ExchangeRateService, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:    st,
		exchange: exchange,
		logger:   logger,
	}
}

// Overview returns the headline aggregates for a user's sales events.
func (s *AnalyticsService) Overview(ctx context.Context, userID string) (*domain.AnalyticsOverview, error) {
	overview, err := s.store.AnalyticsOverview(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("analytics overview: %w", err)
	}
	return overview, nil
}

// TopPerformers returns the revenue leaderboard, capped at limit rows.
// Limits outside 1..100 are clamped to the default of 10.
func (s *AnalyticsService) TopPerformers(ctx context.Context, userID string, limit int) ([]domain.TopPerformer, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	performers, err := s.store.TopPerformers(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("top performers: %w", err)
	}
	return performers, nil
}

// MarketplaceBreakdown returns per-marketplace revenue.
func (s *AnalyticsService) MarketplaceBreakdown(ctx context.Context, userID string) ([]domain.MarketplaceRevenue, error) {
	breakdown, err := s.store.MarketplaceBreakdown(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("marketplace breakdown: %w", err)
	}
	return breakdown, nil
}

// NormalizedOverview converts the per-currency breakdown into USD using the
// current rate table. Buckets without a known rate are carried through with a
// zero converted amount rather than dropped, so totals stay auditable.
func (s *AnalyticsService) NormalizedOverview(ctx context.Context, userID string) (*domain.NormalizedOverview, error) {
	overview, err := s.store.AnalyticsOverview(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("analytics overview: %w", err)
	}

	rates, err := s.exchange.Rates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}

	normalized := &domain.NormalizedOverview{
		TargetCurrency: "USD",
		ByCurrency:     make([]domain.ConvertedRoyalty, 0, len(overview.RoyaltiesByCurrency)),
	}

	for _, bucket := range overview.RoyaltiesByCurrency {
		converted := domain.ConvertedRoyalty{
			Currency:       bucket.Currency,
			OriginalAmount: bucket.OriginalAmount,
			Transactions:   bucket.Transactions,
		}

		if amount, rate, ok := ConvertToUSD(bucket.OriginalAmount, bucket.Currency, rates); ok {
			converted.ConvertedAmount = amount
			converted.Rate = rate
			normalized.Total += amount
		} else if s.logger != nil {
			s.logger.Warn("No exchange rate for currency", "currency", bucket.Currency)
		}

		normalized.ByCurrency = append(normalized.ByCurrency, converted)
	}

	return normalized, nil
}
