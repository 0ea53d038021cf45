package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "analytics-overview",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/overview",
		Summary:     "Analytics overview",
		Description: "Headline aggregates with a per-currency royalty breakdown. Amounts are never converted.",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAnalyticsOverview)

	huma.Register(s.api, huma.Operation{
		OperationID: "analytics-top-performers",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/top-performers",
		Summary:     "Top performing books",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleTopPerformers)

	huma.Register(s.api, huma.Operation{
		OperationID: "analytics-marketplaces",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/marketplaces",
		Summary:     "Per-marketplace revenue",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarketplaceBreakdown)

	huma.Register(s.api, huma.Operation{
		OperationID: "analytics-normalized",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/normalized",
		Summary:     "USD-normalized overview",
		Description: "Converts the per-currency breakdown into USD using current exchange rates. Approximate; the per-currency view is authoritative.",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleNormalizedOverview)
}

// OverviewOutput wraps the analytics overview for Huma.
type OverviewOutput struct {
	Body *domain.AnalyticsOverview
}

// TopPerformersInput holds leaderboard query parameters.
type TopPerformersInput struct {
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"100" doc:"Number of rows"`
}

// TopPerformersOutput wraps the leaderboard for Huma.
type TopPerformersOutput struct {
	Body []domain.TopPerformer
}

// MarketplaceBreakdownOutput wraps the per-marketplace breakdown for Huma.
type MarketplaceBreakdownOutput struct {
	Body []domain.MarketplaceRevenue
}

// NormalizedOverviewOutput wraps the USD-normalized view for Huma.
type NormalizedOverviewOutput struct {
	Body *domain.NormalizedOverview
}

func (s *Server) handleAnalyticsOverview(ctx context.Context, _ *struct{}) (*OverviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Analytics.Overview(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &OverviewOutput{Body: overview}, nil
}

func (s *Server) handleTopPerformers(ctx context.Context, input *TopPerformersInput) (*TopPerformersOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	performers, err := s.services.Analytics.TopPerformers(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &TopPerformersOutput{Body: performers}, nil
}

func (s *Server) handleMarketplaceBreakdown(ctx context.Context, _ *struct{}) (*MarketplaceBreakdownOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.services.Analytics.MarketplaceBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarketplaceBreakdownOutput{Body: breakdown}, nil
}

func (s *Server) handleNormalizedOverview(ctx context.Context, _ *struct{}) (*NormalizedOverviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Analytics.NormalizedOverview(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NormalizedOverviewOutput{Body: overview}, nil
}
