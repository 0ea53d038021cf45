package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	apperrors "github.com/royaltydesk/royaltydesk-server/internal/errors"
	"github.com/royaltydesk/royaltydesk-server/internal/normalize"
	"github.com/royaltydesk/royaltydesk-server/internal/search"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

// BookService manages the catalog and keeps the search index in step with it.
type BookService struct {
	store     *store.Store
	index     *search.SearchIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(st *store.Store, index *search.SearchIndex, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     st,
		index:     index,
		validator: validator,
		logger:    logger,
	}
}

// IndexBook pushes one book into the search index. Satisfies the migration
// service's indexer dependency.
func (s *BookService) IndexBook(ctx context.Context, book *domain.Book, identifierValues []string) error {
	return s.index.IndexBook(search.BookToDocument(book, identifierValues))
}

// ListBooks returns a user's books, newest first.
func (s *BookService) ListBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// BookDetail is a book together with its identifiers and variants.
type BookDetail struct {
	Book        *domain.Book         `json:"book"`
	Identifiers []*domain.Identifier `json:"identifiers"`
	Variants    []*domain.Variant    `json:"variants"`
}

// GetBook returns one book with its identifiers and variants, scoped to the
// owner.
func (s *BookService) GetBook(ctx context.Context, userID, bookID string) (*BookDetail, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.UserID != userID {
		return nil, apperrors.NotFound("book not found")
	}

	identifiers, err := s.store.ListIdentifiers(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}

	variants, err := s.store.ListVariants(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	return &BookDetail{Book: book, Identifiers: identifiers, Variants: variants}, nil
}

// UpdateBookRequest carries the editable book fields.
type UpdateBookRequest struct {
	Title    string `json:"title" validate:"required,max=1024"`
	Language string `json:"language" validate:"required,max=16"`
	Format   string `json:"format" validate:"required,oneof=ebook paperback hardcover audiobook"`
}

// UpdateBook edits a book's metadata and reindexes it. The language is
// canonicalized to a base ISO 639-1 code, so "en-US" and "eng" both land
// as "en".
func (s *BookService) UpdateBook(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.UserID != userID {
		return nil, apperrors.NotFound("book not found")
	}

	book.Title = req.Title
	book.Language = normalize.LanguageCode(req.Language)
	book.Format = domain.Format(req.Format)
	book.UpdatedAt = time.Now()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.reindexBook(ctx, book); err != nil && s.logger != nil {
		// The edit succeeded; the index catches up on the next reindex.
		s.logger.Warn("Failed to reindex updated book", "book_id", book.ID, "error", err)
	}

	return book, nil
}

func (s *BookService) reindexBook(ctx context.Context, book *domain.Book) error {
	identifiers, err := s.store.ListIdentifiers(ctx, book.ID)
	if err != nil {
		return err
	}
	values := make([]string, 0, len(identifiers))
	for _, ident := range identifiers {
		values = append(values, ident.Value)
	}
	return s.IndexBook(ctx, book, values)
}

// Search runs a catalog search scoped to the user.
func (s *BookService) Search(ctx context.Context, userID string, params search.SearchParams) (*search.SearchResult, error) {
	params.UserID = userID
	return s.index.Search(ctx, params)
}

// ReindexAll rebuilds the search index from the database. Admin operation;
// covers every user's catalog.
func (s *BookService) ReindexAll(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	indexed := 0
	for _, user := range users {
		books, err := s.store.ListBooks(ctx, user.ID)
		if err != nil {
			return indexed, fmt.Errorf("list books for %s: %w", user.ID, err)
		}

		docs := make([]*search.BookDocument, 0, len(books))
		for _, book := range books {
			identifiers, err := s.store.ListIdentifiers(ctx, book.ID)
			if err != nil {
				return indexed, fmt.Errorf("list identifiers for %s: %w", book.ID, err)
			}
			values := make([]string, 0, len(identifiers))
			for _, ident := range identifiers {
				values = append(values, ident.Value)
			}
			docs = append(docs, search.BookToDocument(book, values))
		}

		if err := s.index.IndexBooks(docs); err != nil {
			return indexed, fmt.Errorf("index books for %s: %w", user.ID, err)
		}
		indexed += len(docs)
	}

	if s.logger != nil {
		s.logger.Info("Reindex complete", "books", indexed)
	}

	return indexed, nil
}
