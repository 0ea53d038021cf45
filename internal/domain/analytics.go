package domain

import "time"

// CurrencyRoyalty is a per-currency revenue bucket. Amounts within a bucket
// share one currency; buckets are never merged across currencies.
type CurrencyRoyalty struct {
	Currency       string  `json:"currency"`
	OriginalAmount float64 `json:"original_amount"`
	Transactions   int     `json:"transactions"`
}

// AnalyticsOverview summarizes a user's migrated sales events.
//
// TotalRoyalties is a nominal sum across currencies — it is intentionally NOT
// converted and is only meaningful when all events share one currency. The
// per-currency breakdown is the authoritative view.
type AnalyticsOverview struct {
	TotalRecords        int               `json:"total_records"`
	TotalRoyalties      float64           `json:"total_royalties"`
	UniqueBooks         int               `json:"unique_books"`
	UniqueMarketplaces  int               `json:"unique_marketplaces"`
	RoyaltiesByCurrency []CurrencyRoyalty `json:"royalties_by_currency"`
}

// TopPerformer is one row of the revenue leaderboard, grouped by
// (book, format, currency) so revenue in different currencies never mixes.
type TopPerformer struct {
	Title        string  `json:"title"`
	Format       Format  `json:"format"`
	TotalRevenue float64 `json:"total_revenue"`
	Currency     string  `json:"currency"`
	TotalSales   int     `json:"total_sales"`
	Marketplaces int     `json:"marketplaces"`
}

// MarketplaceRevenue is one row of the per-marketplace breakdown.
type MarketplaceRevenue struct {
	Marketplace  string  `json:"marketplace"`
	Code         string  `json:"code"`
	Revenue      float64 `json:"revenue"`
	Currency     string  `json:"currency"`
	Transactions int     `json:"transactions"`
	Books        int     `json:"books"`
}

// ExchangeRate is a fixed daily conversion rate, used only by the optional
// normalized analytics view. Core aggregates never touch this table.
type ExchangeRate struct {
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Rate         float64   `json:"rate"`
	Date         string    `json:"date"` // YYYY-MM-DD
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConvertedRoyalty is a per-currency bucket converted into a target currency.
type ConvertedRoyalty struct {
	Currency        string  `json:"currency"`
	OriginalAmount  float64 `json:"original_amount"`
	ConvertedAmount float64 `json:"converted_amount"`
	Rate            float64 `json:"rate"`
	Transactions    int     `json:"transactions"`
}

// NormalizedOverview is the optional consumer-side conversion of the currency
// breakdown into a single target currency using the exchange rate table.
type NormalizedOverview struct {
	TargetCurrency string             `json:"target_currency"`
	Total          float64            `json:"total"`
	ByCurrency     []ConvertedRoyalty `json:"by_currency"`
}
