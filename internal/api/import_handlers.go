package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/service"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "create-import",
		Method:      http.MethodPost,
		Path:        "/api/v1/imports",
		Summary:     "Upload a parsed report",
		Description: "Stores a parsed KDP report file and its rows for later migration.",
		Tags:        []string{"Imports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-imports",
		Method:      http.MethodGet,
		Path:        "/api/v1/imports",
		Summary:     "List imports",
		Tags:        []string{"Imports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListImports)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-import",
		Method:      http.MethodGet,
		Path:        "/api/v1/imports/{id}",
		Summary:     "Get an import with its rows",
		Tags:        []string{"Imports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetImport)
}

// CreateImportInput wraps the import request for Huma. Rows arrive already
// parsed; this endpoint only stores them.
type CreateImportInput struct {
	Body service.CreateImportRequest
}

// ImportOutput wraps a single import for Huma.
type ImportOutput struct {
	Body *domain.Import
}

// ImportListOutput wraps the import list for Huma.
type ImportListOutput struct {
	Body []*domain.Import
}

// ImportDetailInput identifies one import.
type ImportDetailInput struct {
	ID string `path:"id" doc:"Import ID"`
}

// ImportDetailOutput wraps an import with its rows for Huma.
type ImportDetailOutput struct {
	Body *service.ImportDetail
}

func (s *Server) handleCreateImport(ctx context.Context, input *CreateImportInput) (*ImportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	imp, err := s.services.Import.CreateImport(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Body: imp}, nil
}

func (s *Server) handleListImports(ctx context.Context, _ *struct{}) (*ImportListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	imports, err := s.services.Import.ListImports(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ImportListOutput{Body: imports}, nil
}

func (s *Server) handleGetImport(ctx context.Context, input *ImportDetailInput) (*ImportDetailOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Import.GetImport(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ImportDetailOutput{Body: detail}, nil
}
