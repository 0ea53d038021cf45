package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

const salesEventColumns = `id, variant_id, import_id, user_id, event_date, reporting_period,
	units_sold, units_refunded, net_units_sold, original_currency, original_royalty,
	original_list_price, original_offer_price, delivery_cost, manufacturing_cost,
	royalty_rate, transaction_type, source_type, sheet_name, row_index, is_duplicate, created_at`

func scanSalesEvent(scanner interface{ Scan(dest ...any) error }) (*domain.SalesEvent, error) {
	var e domain.SalesEvent

	var (
		eventDate   sql.NullString
		isDuplicate int
		createdAt   string
	)

	err := scanner.Scan(
		&e.ID,
		&e.VariantID,
		&e.ImportID,
		&e.UserID,
		&eventDate,
		&e.ReportingPeriod,
		&e.UnitsSold,
		&e.UnitsRefunded,
		&e.NetUnitsSold,
		&e.OriginalCurrency,
		&e.OriginalRoyalty,
		&e.OriginalListPrice,
		&e.OriginalOfferPrice,
		&e.DeliveryCost,
		&e.ManufacturingCost,
		&e.RoyaltyRate,
		&e.TransactionType,
		&e.SourceType,
		&e.SheetName,
		&e.RowIndex,
		&isDuplicate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.EventDate, err = parseNullableTime(eventDate)
	if err != nil {
		return nil, err
	}
	e.IsDuplicate = isDuplicate != 0

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// CreateSalesEvent appends one migrated sale transaction.
func (s *Store) CreateSalesEvent(ctx context.Context, e *domain.SalesEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales_events (
			id, variant_id, import_id, user_id, event_date, reporting_period,
			units_sold, units_refunded, net_units_sold, original_currency, original_royalty,
			original_list_price, original_offer_price, delivery_cost, manufacturing_cost,
			royalty_rate, transaction_type, source_type, sheet_name, row_index, is_duplicate, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.VariantID,
		e.ImportID,
		e.UserID,
		nullTimeString(e.EventDate),
		e.ReportingPeriod,
		e.UnitsSold,
		e.UnitsRefunded,
		e.NetUnitsSold,
		e.OriginalCurrency,
		e.OriginalRoyalty,
		e.OriginalListPrice,
		e.OriginalOfferPrice,
		e.DeliveryCost,
		e.ManufacturingCost,
		e.RoyaltyRate,
		e.TransactionType,
		e.SourceType,
		e.SheetName,
		e.RowIndex,
		boolToInt(e.IsDuplicate),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ListSalesEvents returns a user's sales events, oldest first.
func (s *Store) ListSalesEvents(ctx context.Context, userID string) ([]*domain.SalesEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+salesEventColumns+` FROM sales_events
		WHERE user_id = ? ORDER BY created_at ASC, row_index ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.SalesEvent
	for rows.Next() {
		e, err := scanSalesEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// CountSalesEvents returns the number of sales events a user has.
func (s *Store) CountSalesEvents(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sales_events WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

const kenpReadColumns = `id, variant_id, import_id, user_id, read_date, reporting_period,
	kenp_pages, original_currency, original_royalty, source_type, is_duplicate, created_at`

func scanKenpRead(scanner interface{ Scan(dest ...any) error }) (*domain.KenpRead, error) {
	var k domain.KenpRead

	var (
		readDate    sql.NullString
		isDuplicate int
		createdAt   string
	)

	err := scanner.Scan(
		&k.ID,
		&k.VariantID,
		&k.ImportID,
		&k.UserID,
		&readDate,
		&k.ReportingPeriod,
		&k.KenpPages,
		&k.OriginalCurrency,
		&k.OriginalRoyalty,
		&k.SourceType,
		&isDuplicate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	k.ReadDate, err = parseNullableTime(readDate)
	if err != nil {
		return nil, err
	}
	k.IsDuplicate = isDuplicate != 0

	k.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &k, nil
}

// CreateKenpRead appends one migrated page-read transaction.
func (s *Store) CreateKenpRead(ctx context.Context, k *domain.KenpRead) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kenp_reads (
			id, variant_id, import_id, user_id, read_date, reporting_period,
			kenp_pages, original_currency, original_royalty, source_type, is_duplicate, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.ID,
		k.VariantID,
		k.ImportID,
		k.UserID,
		nullTimeString(k.ReadDate),
		k.ReportingPeriod,
		k.KenpPages,
		k.OriginalCurrency,
		k.OriginalRoyalty,
		k.SourceType,
		boolToInt(k.IsDuplicate),
		formatTime(k.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ListKenpReads returns a user's page-read events, oldest first.
func (s *Store) ListKenpReads(ctx context.Context, userID string) ([]*domain.KenpRead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+kenpReadColumns+` FROM kenp_reads
		WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reads []*domain.KenpRead
	for rows.Next() {
		k, err := scanKenpRead(rows)
		if err != nil {
			return nil, err
		}
		reads = append(reads, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reads, nil
}
