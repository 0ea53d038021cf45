package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/search"
	"github.com/royaltydesk/royaltydesk-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-book",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get a book with identifiers and variants",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-book",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book metadata",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the catalog",
		Description: "Full-text search over titles with exact identifier lookup and typo tolerance.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-marketplaces",
		Method:      http.MethodGet,
		Path:        "/api/v1/marketplaces",
		Summary:     "List marketplaces",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMarketplaces)
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body []*domain.Book
}

// BookDetailInput identifies one book.
type BookDetailInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailOutput wraps a book with identifiers and variants for Huma.
type BookDetailOutput struct {
	Body *service.BookDetail
}

// UpdateBookInput wraps a book update for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.UpdateBookRequest
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// SearchInput holds catalog search query parameters.
type SearchInput struct {
	Query     string   `query:"q" doc:"Search query (title text or exact identifier)"`
	Formats   []string `query:"format" doc:"Filter by format"`
	Languages []string `query:"language" doc:"Filter by language"`
	Limit     int      `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset    int      `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
	SortBy    string   `query:"sort" default:"relevance" enum:"relevance,title,recent" doc:"Sort order"`
	SortOrder string   `query:"order" default:"desc" enum:"asc,desc" doc:"Sort direction"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// MarketplaceListOutput wraps the marketplace list for Huma.
type MarketplaceListOutput struct {
	Body []*domain.Marketplace
}

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: books}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookDetailInput) (*BookDetailOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Book.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookDetailOutput{Body: detail}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Formats = input.Formats
	params.Languages = input.Languages
	params.Limit = input.Limit
	params.Offset = input.Offset
	params.SortBy = input.SortBy
	params.SortOrder = input.SortOrder

	result, err := s.services.Book.Search(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}

func (s *Server) handleListMarketplaces(ctx context.Context, _ *struct{}) (*MarketplaceListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	marketplaces, err := s.store.ListMarketplaces(ctx)
	if err != nil {
		return nil, err
	}
	return &MarketplaceListOutput{Body: marketplaces}, nil
}
