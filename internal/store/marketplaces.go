package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

const marketplaceColumns = `id, raw_name, code, country, currency, language_hint, created_at`

func scanMarketplace(scanner interface{ Scan(dest ...any) error }) (*domain.Marketplace, error) {
	var m domain.Marketplace

	var createdAt string

	err := scanner.Scan(
		&m.ID,
		&m.RawName,
		&m.Code,
		&m.Country,
		&m.Currency,
		&m.LanguageHint,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateMarketplace inserts a new marketplace.
// Returns ErrAlreadyExists if the raw name is already registered.
func (s *Store) CreateMarketplace(ctx context.Context, m *domain.Marketplace) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO marketplaces (id, raw_name, code, country, currency, language_hint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.RawName,
		m.Code,
		m.Country,
		m.Currency,
		m.LanguageHint,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetMarketplace retrieves a marketplace by ID.
func (s *Store) GetMarketplace(ctx context.Context, id string) (*domain.Marketplace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+marketplaceColumns+` FROM marketplaces WHERE id = ?`, id)

	m, err := scanMarketplace(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMarketplaceByRawName retrieves a marketplace by its exact raw name.
// Returns ErrNotFound if no marketplace with that name exists.
func (s *Store) GetMarketplaceByRawName(ctx context.Context, rawName string) (*domain.Marketplace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+marketplaceColumns+` FROM marketplaces WHERE raw_name = ?`, rawName)

	m, err := scanMarketplace(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetOrCreateMarketplace returns the marketplace with the given raw name,
// inserting m when none exists yet. Safe under concurrent callers: a losing
// insert falls back to re-reading the winner's row.
func (s *Store) GetOrCreateMarketplace(ctx context.Context, m *domain.Marketplace) (*domain.Marketplace, error) {
	existing, err := s.GetMarketplaceByRawName(ctx, m.RawName)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	err = s.CreateMarketplace(ctx, m)
	if err == ErrAlreadyExists {
		return s.GetMarketplaceByRawName(ctx, m.RawName)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMarketplaces returns all marketplaces ordered by raw name.
func (s *Store) ListMarketplaces(ctx context.Context) ([]*domain.Marketplace, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+marketplaceColumns+` FROM marketplaces ORDER BY raw_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marketplaces []*domain.Marketplace
	for rows.Next() {
		m, err := scanMarketplace(rows)
		if err != nil {
			return nil, err
		}
		marketplaces = append(marketplaces, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marketplaces, nil
}
