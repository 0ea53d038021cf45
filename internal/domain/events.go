package domain

import "time"

// SalesEvent is one migrated unit-sale transaction. Append-only; the original
// currency and royalty are stored verbatim from the source row and are never
// converted at write time.
type SalesEvent struct {
	ID                 string     `json:"id"`
	VariantID          string     `json:"variant_id"`
	ImportID           string     `json:"import_id"`
	UserID             string     `json:"user_id"`
	EventDate          *time.Time `json:"event_date,omitempty"`
	ReportingPeriod    string     `json:"reporting_period"` // YYYY-MM
	UnitsSold          int        `json:"units_sold"`
	UnitsRefunded      int        `json:"units_refunded"`
	NetUnitsSold       int        `json:"net_units_sold"`
	OriginalCurrency   string     `json:"original_currency"`
	OriginalRoyalty    string     `json:"original_royalty"`
	OriginalListPrice  string     `json:"original_list_price,omitempty"`
	OriginalOfferPrice string     `json:"original_offer_price,omitempty"`
	DeliveryCost       string     `json:"delivery_cost,omitempty"`
	ManufacturingCost  string     `json:"manufacturing_cost,omitempty"`
	RoyaltyRate        string     `json:"royalty_rate,omitempty"`
	TransactionType    string     `json:"transaction_type,omitempty"`
	SourceType         string     `json:"source_type"`
	SheetName          string     `json:"sheet_name,omitempty"`
	RowIndex           int        `json:"row_index,omitempty"`
	IsDuplicate        bool       `json:"is_duplicate"`
	CreatedAt          time.Time  `json:"created_at"`
}

// KenpRead is one migrated subscription-library page-read transaction.
// Billed differently from a unit sale, so it gets its own event table.
type KenpRead struct {
	ID               string     `json:"id"`
	VariantID        string     `json:"variant_id"`
	ImportID         string     `json:"import_id"`
	UserID           string     `json:"user_id"`
	ReadDate         *time.Time `json:"read_date,omitempty"`
	ReportingPeriod  string     `json:"reporting_period"`
	KenpPages        int        `json:"kenp_pages"`
	OriginalCurrency string     `json:"original_currency"`
	OriginalRoyalty  string     `json:"original_royalty"`
	SourceType       string     `json:"source_type"`
	IsDuplicate      bool       `json:"is_duplicate"`
	CreatedAt        time.Time  `json:"created_at"`
}

// MigrationResult reports what a migration batch accomplished. The two counts
// cover exactly the eligible rows: migrated + skipped equals the number of
// non-payments, non-duplicate rows considered.
type MigrationResult struct {
	MigratedCount int `json:"migrated_count"`
	SkippedCount  int `json:"skipped_count"`
}
