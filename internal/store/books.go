package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

const bookColumns = `id, user_id, title, language, format, created_at, updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		format    string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Language,
		&format,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Format = domain.Format(format)

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBook inserts a new book.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, user_id, title, language, format, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.UserID,
		b.Title,
		b.Language,
		string(b.Format),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID.
// Returns ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns all books owned by a user, newest first.
func (s *Store) ListBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook performs a full row update on an existing book.
// Returns ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, language = ?, format = ?, updated_at = ?
		WHERE id = ?`,
		b.Title,
		b.Language,
		string(b.Format),
		formatTime(b.UpdatedAt),
		b.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const identifierColumns = `id, book_id, type, value, marketplace_id, created_at`

func scanIdentifier(scanner interface{ Scan(dest ...any) error }) (*domain.Identifier, error) {
	var ident domain.Identifier

	var (
		identType     string
		marketplaceID sql.NullString
		createdAt     string
	)

	err := scanner.Scan(
		&ident.ID,
		&ident.BookID,
		&identType,
		&ident.Value,
		&marketplaceID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	ident.Type = domain.IdentifierType(identType)
	if marketplaceID.Valid {
		ident.MarketplaceID = marketplaceID.String
	}

	ident.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &ident, nil
}

// AddIdentifier links an identifier to a book. Duplicate (book, type, value)
// triples are silently ignored so re-imports stay idempotent.
func (s *Store) AddIdentifier(ctx context.Context, ident *domain.Identifier) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO book_identifiers (id, book_id, type, value, marketplace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ident.ID,
		ident.BookID,
		string(ident.Type),
		ident.Value,
		nullString(ident.MarketplaceID),
		formatTime(ident.CreatedAt),
	)
	return err
}

// ListIdentifiers returns all identifiers for a book.
func (s *Store) ListIdentifiers(ctx context.Context, bookID string) ([]*domain.Identifier, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+identifierColumns+` FROM book_identifiers WHERE book_id = ? ORDER BY created_at ASC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var idents []*domain.Identifier
	for rows.Next() {
		ident, err := scanIdentifier(rows)
		if err != nil {
			return nil, err
		}
		idents = append(idents, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return idents, nil
}

// FindBookByIdentifier resolves a user's book through any identifier value.
// Returns ErrNotFound if no book of that user carries the value.
func (s *Store) FindBookByIdentifier(ctx context.Context, userID, value string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT b.id, b.user_id, b.title, b.language, b.format, b.created_at, b.updated_at
		FROM books b
		JOIN book_identifiers bi ON bi.book_id = b.id
		WHERE b.user_id = ? AND bi.value = ?
		ORDER BY bi.created_at ASC
		LIMIT 1`,
		userID, value)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
