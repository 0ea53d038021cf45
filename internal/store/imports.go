package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

const importColumns = `id, user_id, file_name, detected_type, row_count, created_at`

func scanImport(scanner interface{ Scan(dest ...any) error }) (*domain.Import, error) {
	var imp domain.Import

	var (
		detectedType string
		createdAt    string
	)

	err := scanner.Scan(
		&imp.ID,
		&imp.UserID,
		&imp.FileName,
		&detectedType,
		&imp.RowCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	imp.DetectedType = domain.ImportType(detectedType)

	imp.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &imp, nil
}

// CreateImport inserts a new import record.
func (s *Store) CreateImport(ctx context.Context, imp *domain.Import) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kdp_imports (id, user_id, file_name, detected_type, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		imp.ID,
		imp.UserID,
		imp.FileName,
		string(imp.DetectedType),
		imp.RowCount,
		formatTime(imp.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetImport retrieves an import by ID.
func (s *Store) GetImport(ctx context.Context, id string) (*domain.Import, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+importColumns+` FROM kdp_imports WHERE id = ?`, id)

	imp, err := scanImport(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return imp, nil
}

// ListImports returns a user's imports, newest first.
func (s *Store) ListImports(ctx context.Context, userID string) ([]*domain.Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+importColumns+` FROM kdp_imports WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []*domain.Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return imports, nil
}

// importRowColumns matches the scan order in scanImportRow.
const importRowColumns = `id, import_id, user_id, title, asin, isbn, marketplace,
	format, currency, royalty, royalty_rate, list_price, offer_price,
	delivery_cost, manufacturing_cost, units_sold, units_refunded, net_units_sold,
	kenp_pages_read, transaction_type, matched_book_id, sales_date, sheet_name,
	row_index, is_duplicate, created_at`

func scanImportRow(scanner interface{ Scan(dest ...any) error }) (*domain.ImportRow, error) {
	var r domain.ImportRow

	var (
		matchedBookID sql.NullString
		salesDate     sql.NullString
		isDuplicate   int
		createdAt     string
	)

	err := scanner.Scan(
		&r.ID,
		&r.ImportID,
		&r.UserID,
		&r.Title,
		&r.ASIN,
		&r.ISBN,
		&r.Marketplace,
		&r.Format,
		&r.Currency,
		&r.Royalty,
		&r.RoyaltyRate,
		&r.ListPrice,
		&r.OfferPrice,
		&r.DeliveryCost,
		&r.ManufacturingCost,
		&r.UnitsSold,
		&r.UnitsRefunded,
		&r.NetUnitsSold,
		&r.KenpPagesRead,
		&r.TransactionType,
		&matchedBookID,
		&salesDate,
		&r.SheetName,
		&r.RowIndex,
		&isDuplicate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if matchedBookID.Valid {
		r.MatchedBookID = matchedBookID.String
	}
	r.SalesDate, err = parseNullableTime(salesDate)
	if err != nil {
		return nil, err
	}
	r.IsDuplicate = isDuplicate != 0

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateImportRows inserts a batch of parsed rows in one transaction.
func (s *Store) CreateImportRows(ctx context.Context, rows []*domain.ImportRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO kdp_import_rows (
			id, import_id, user_id, title, asin, isbn, marketplace,
			format, currency, royalty, royalty_rate, list_price, offer_price,
			delivery_cost, manufacturing_cost, units_sold, units_refunded, net_units_sold,
			kenp_pages_read, transaction_type, matched_book_id, sales_date, sheet_name,
			row_index, is_duplicate, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.ID,
			r.ImportID,
			r.UserID,
			r.Title,
			r.ASIN,
			r.ISBN,
			r.Marketplace,
			r.Format,
			r.Currency,
			r.Royalty,
			r.RoyaltyRate,
			r.ListPrice,
			r.OfferPrice,
			r.DeliveryCost,
			r.ManufacturingCost,
			r.UnitsSold,
			r.UnitsRefunded,
			r.NetUnitsSold,
			r.KenpPagesRead,
			r.TransactionType,
			nullString(r.MatchedBookID),
			nullTimeString(r.SalesDate),
			r.SheetName,
			r.RowIndex,
			boolToInt(r.IsDuplicate),
			formatTime(r.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert row %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// ListImportRows returns all rows of one import in sheet order.
func (s *Store) ListImportRows(ctx context.Context, importID string) ([]*domain.ImportRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+importRowColumns+` FROM kdp_import_rows
		WHERE import_id = ? ORDER BY row_index ASC`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectImportRows(rows)
}

// ListEligibleRows returns the migration input for a user: every non-duplicate
// row whose parent import is not a payments report, paired with that import.
// Ordered by import creation time then sheet position so migration output is
// deterministic.
func (s *Store) ListEligibleRows(ctx context.Context, userID string) ([]*domain.LegacyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id, r.import_id, r.user_id, r.title, r.asin, r.isbn, r.marketplace,
			r.format, r.currency, r.royalty, r.royalty_rate, r.list_price, r.offer_price,
			r.delivery_cost, r.manufacturing_cost, r.units_sold, r.units_refunded, r.net_units_sold,
			r.kenp_pages_read, r.transaction_type, r.matched_book_id, r.sales_date, r.sheet_name,
			r.row_index, r.is_duplicate, r.created_at,
			i.id, i.user_id, i.file_name, i.detected_type, i.row_count, i.created_at
		FROM kdp_import_rows r
		JOIN kdp_imports i ON i.id = r.import_id
		WHERE r.user_id = ?
		  AND r.is_duplicate = 0
		  AND i.detected_type != ?
		ORDER BY i.created_at ASC, r.row_index ASC`,
		userID, string(domain.ImportTypePayments))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.LegacyRecord
	for rows.Next() {
		var (
			r   domain.ImportRow
			imp domain.Import

			matchedBookID   sql.NullString
			salesDate       sql.NullString
			isDuplicate     int
			rowCreatedAt    string
			detectedType    string
			importCreatedAt string
		)

		err := rows.Scan(
			&r.ID, &r.ImportID, &r.UserID, &r.Title, &r.ASIN, &r.ISBN, &r.Marketplace,
			&r.Format, &r.Currency, &r.Royalty, &r.RoyaltyRate, &r.ListPrice, &r.OfferPrice,
			&r.DeliveryCost, &r.ManufacturingCost, &r.UnitsSold, &r.UnitsRefunded, &r.NetUnitsSold,
			&r.KenpPagesRead, &r.TransactionType, &matchedBookID, &salesDate, &r.SheetName,
			&r.RowIndex, &isDuplicate, &rowCreatedAt,
			&imp.ID, &imp.UserID, &imp.FileName, &detectedType, &imp.RowCount, &importCreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if matchedBookID.Valid {
			r.MatchedBookID = matchedBookID.String
		}
		r.SalesDate, err = parseNullableTime(salesDate)
		if err != nil {
			return nil, err
		}
		r.IsDuplicate = isDuplicate != 0
		r.CreatedAt, err = parseTime(rowCreatedAt)
		if err != nil {
			return nil, err
		}

		imp.DetectedType = domain.ImportType(detectedType)
		imp.CreatedAt, err = parseTime(importCreatedAt)
		if err != nil {
			return nil, err
		}

		records = append(records, &domain.LegacyRecord{Row: r, Import: imp})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func collectImportRows(rows *sql.Rows) ([]*domain.ImportRow, error) {
	var out []*domain.ImportRow
	for rows.Next() {
		r, err := scanImportRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
