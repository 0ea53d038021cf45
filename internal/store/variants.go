package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

const variantColumns = `id, book_id, format, marketplace_id, asin, isbn, is_active, created_at`

func scanVariant(scanner interface{ Scan(dest ...any) error }) (*domain.Variant, error) {
	var v domain.Variant

	var (
		format    string
		isActive  int
		createdAt string
	)

	err := scanner.Scan(
		&v.ID,
		&v.BookID,
		&format,
		&v.MarketplaceID,
		&v.ASIN,
		&v.ISBN,
		&isActive,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	v.Format = domain.Format(format)
	v.IsActive = isActive != 0

	v.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// CreateVariant inserts a new product variant.
// Returns ErrAlreadyExists when the (book, format, marketplace) triple is taken.
func (s *Store) CreateVariant(ctx context.Context, v *domain.Variant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_variants (id, book_id, format, marketplace_id, asin, isbn, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID,
		v.BookID,
		string(v.Format),
		v.MarketplaceID,
		v.ASIN,
		v.ISBN,
		boolToInt(v.IsActive),
		formatTime(v.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetVariant retrieves a variant by ID.
func (s *Store) GetVariant(ctx context.Context, id string) (*domain.Variant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE id = ?`, id)

	v, err := scanVariant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetVariantByKey retrieves a variant by its natural (book, format, marketplace) key.
// Returns ErrNotFound if no such variant exists.
func (s *Store) GetVariantByKey(ctx context.Context, bookID string, format domain.Format, marketplaceID string) (*domain.Variant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+variantColumns+` FROM product_variants
		WHERE book_id = ? AND format = ? AND marketplace_id = ?`,
		bookID, string(format), marketplaceID)

	v, err := scanVariant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetOrCreateVariant returns the variant for v's natural key, inserting v when
// none exists yet. A losing concurrent insert falls back to re-reading.
func (s *Store) GetOrCreateVariant(ctx context.Context, v *domain.Variant) (*domain.Variant, error) {
	existing, err := s.GetVariantByKey(ctx, v.BookID, v.Format, v.MarketplaceID)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	err = s.CreateVariant(ctx, v)
	if err == ErrAlreadyExists {
		return s.GetVariantByKey(ctx, v.BookID, v.Format, v.MarketplaceID)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListVariants returns all variants of a book.
func (s *Store) ListVariants(ctx context.Context, bookID string) ([]*domain.Variant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE book_id = ? ORDER BY created_at ASC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []*domain.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return variants, nil
}
