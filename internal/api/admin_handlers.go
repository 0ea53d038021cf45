package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "admin-migrate",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/migrate",
		Summary:     "Migrate imported rows into events",
		Description: "Turns every eligible imported row of a user into normalized sales and page-read events. Re-running appends events again; it does not deduplicate.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMigrate)

	huma.Register(s.api, huma.Operation{
		OperationID: "admin-reindex",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/reindex",
		Summary:     "Rebuild the search index",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindex)

	huma.Register(s.api, huma.Operation{
		OperationID: "admin-refresh-rates",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/exchange-rates/refresh",
		Summary:     "Refresh exchange rates",
		Description: "Fetches current rates from the configured provider. A no-op when fetching is disabled.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRefreshRates)
}

// MigrateRequest selects whose rows to migrate. Defaults to the caller.
type MigrateRequest struct {
	UserID string `json:"user_id,omitempty" doc:"User to migrate (defaults to the caller)"`
}

// MigrateInput wraps the migrate request for Huma.
type MigrateInput struct {
	Body MigrateRequest
}

// MigrateOutput wraps the migration result for Huma.
type MigrateOutput struct {
	Body *domain.MigrationResult
}

// ReindexResponse reports how many books were reindexed.
type ReindexResponse struct {
	IndexedBooks int `json:"indexed_books" doc:"Number of books written to the index"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

func (s *Server) handleMigrate(ctx context.Context, input *MigrateInput) (*MigrateOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	targetID := input.Body.UserID
	if targetID == "" {
		targetID = adminID
	}

	result, err := s.services.Migration.MigrateUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &MigrateOutput{Body: result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	indexed, err := s.services.Book.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Body: ReindexResponse{IndexedBooks: indexed}}, nil
}

func (s *Server) handleRefreshRates(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Exchange.RefreshRates(ctx); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Exchange rates refreshed"}}, nil
}
