package store

import (
	"context"
	"database/sql"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

const exchangeRateColumns = `from_currency, to_currency, rate, date, updated_at`

func scanExchangeRate(scanner interface{ Scan(dest ...any) error }) (*domain.ExchangeRate, error) {
	var r domain.ExchangeRate

	var updatedAt string

	err := scanner.Scan(
		&r.FromCurrency,
		&r.ToCurrency,
		&r.Rate,
		&r.Date,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// UpsertExchangeRate stores a rate for one (from, to, date) triple, replacing
// any earlier value for the same day.
func (s *Store) UpsertExchangeRate(ctx context.Context, r *domain.ExchangeRate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, date, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (from_currency, to_currency, date)
		DO UPDATE SET rate = excluded.rate, updated_at = excluded.updated_at`,
		r.FromCurrency,
		r.ToCurrency,
		r.Rate,
		r.Date,
		formatTime(r.UpdatedAt),
	)
	return err
}

// GetLatestExchangeRate returns the most recent stored rate for a currency pair.
// Returns ErrNotFound if the pair has never been stored.
func (s *Store) GetLatestExchangeRate(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+exchangeRateColumns+` FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ?
		ORDER BY date DESC
		LIMIT 1`,
		from, to)

	r, err := scanExchangeRate(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListLatestExchangeRates returns the newest stored rate per source currency
// for one target currency, keyed by source currency.
func (s *Store) ListLatestExchangeRates(ctx context.Context, to string) (map[string]*domain.ExchangeRate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exchangeRateColumns+` FROM exchange_rates
		WHERE to_currency = ?
		ORDER BY date ASC`,
		to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Later dates overwrite earlier ones.
	rates := make(map[string]*domain.ExchangeRate)
	for rows.Next() {
		r, err := scanExchangeRate(rows)
		if err != nil {
			return nil, err
		}
		rates[r.FromCurrency] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rates, nil
}
