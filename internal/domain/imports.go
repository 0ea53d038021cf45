package domain

import "time"

// ImportType is the detected type of an uploaded KDP report file. Detection
// happens upstream in the spreadsheet parser; we only consume the result.
type ImportType string

const (
	ImportTypeSales    ImportType = "sales"
	ImportTypePayments ImportType = "payments" // Cumulative totals; excluded from migration
	ImportTypeKenpRead ImportType = "kenp_read"
	ImportTypeUnknown  ImportType = "unknown"
)

// Import is one uploaded report file. Rows are grouped under it and inherit
// its detected type for migration decisions.
type Import struct {
	ID           string     `json:"id"` // UUID, assigned at upload time
	UserID       string     `json:"user_id"`
	FileName     string     `json:"file_name"`
	DetectedType ImportType `json:"detected_type"`
	RowCount     int        `json:"row_count,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ImportRow is one parsed spreadsheet line, exactly as the upstream parser
// produced it. Read-only input to migration. Monetary amounts are kept as the
// verbatim decimal strings from the report; an empty Royalty means the source
// cell was blank.
type ImportRow struct {
	ID                string     `json:"id"`
	ImportID          string     `json:"import_id"`
	UserID            string     `json:"user_id"`
	Title             string     `json:"title,omitempty"`
	ASIN              string     `json:"asin,omitempty"`
	ISBN              string     `json:"isbn,omitempty"`
	Marketplace       string     `json:"marketplace,omitempty"`
	Format            string     `json:"format,omitempty"`
	Currency          string     `json:"currency,omitempty"`
	Royalty           string     `json:"royalty,omitempty"`
	RoyaltyRate       string     `json:"royalty_rate,omitempty"`
	ListPrice         string     `json:"list_price,omitempty"`
	OfferPrice        string     `json:"offer_price,omitempty"`
	DeliveryCost      string     `json:"delivery_cost,omitempty"`
	ManufacturingCost string     `json:"manufacturing_cost,omitempty"`
	UnitsSold         int        `json:"units_sold,omitempty"`
	UnitsRefunded     int        `json:"units_refunded,omitempty"`
	NetUnitsSold      int        `json:"net_units_sold,omitempty"`
	KenpPagesRead     int        `json:"kenp_pages_read,omitempty"`
	TransactionType   string     `json:"transaction_type,omitempty"`
	MatchedBookID     string     `json:"matched_book_id,omitempty"`
	SalesDate         *time.Time `json:"sales_date,omitempty"`
	SheetName         string     `json:"sheet_name,omitempty"`
	RowIndex          int        `json:"row_index,omitempty"`
	IsDuplicate       bool       `json:"is_duplicate"`
	CreatedAt         time.Time  `json:"created_at"`
}

// LegacyRecord pairs an import row with its parent import for migration.
type LegacyRecord struct {
	Row    ImportRow
	Import Import
}
