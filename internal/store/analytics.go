package store

import (
	"context"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

// AnalyticsOverview aggregates a user's sales events. Duplicate-flagged
// events are excluded, here and in every other aggregate.
//
// Royalty sums are computed by casting the verbatim royalty strings to REAL
// at query time; the stored values are never mutated. The top-level royalty
// total is nominal across currencies, the per-currency slice is the
// authoritative breakdown.
func (s *Store) AnalyticsOverview(ctx context.Context, userID string) (*domain.AnalyticsOverview, error) {
	var overview domain.AnalyticsOverview

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CAST(e.original_royalty AS REAL)), 0),
			COUNT(DISTINCT v.book_id),
			COUNT(DISTINCT v.marketplace_id)
		FROM sales_events e
		JOIN product_variants v ON v.id = e.variant_id
		WHERE e.user_id = ? AND e.is_duplicate = 0`,
		userID,
	).Scan(
		&overview.TotalRecords,
		&overview.TotalRoyalties,
		&overview.UniqueBooks,
		&overview.UniqueMarketplaces,
	)
	if err != nil {
		return nil, err
	}

	byCurrency, err := s.royaltiesByCurrency(ctx, userID)
	if err != nil {
		return nil, err
	}
	overview.RoyaltiesByCurrency = byCurrency

	return &overview, nil
}

// royaltiesByCurrency groups a user's royalty totals per original currency,
// largest bucket first.
func (s *Store) royaltiesByCurrency(ctx context.Context, userID string) ([]domain.CurrencyRoyalty, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			original_currency,
			COALESCE(SUM(CAST(original_royalty AS REAL)), 0),
			COUNT(*)
		FROM sales_events
		WHERE user_id = ? AND is_duplicate = 0
		GROUP BY original_currency
		ORDER BY 2 DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []domain.CurrencyRoyalty{}
	for rows.Next() {
		var b domain.CurrencyRoyalty
		if err := rows.Scan(&b.Currency, &b.OriginalAmount, &b.Transactions); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}

// TopPerformers returns a user's revenue leaderboard grouped by
// (book, format, currency) so different currencies never sum together.
func (s *Store) TopPerformers(ctx context.Context, userID string, limit int) ([]domain.TopPerformer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			b.title,
			v.format,
			COALESCE(SUM(CAST(e.original_royalty AS REAL)), 0) AS revenue,
			e.original_currency,
			COALESCE(SUM(e.net_units_sold), 0),
			COUNT(DISTINCT v.marketplace_id)
		FROM sales_events e
		JOIN product_variants v ON v.id = e.variant_id
		JOIN books b ON b.id = v.book_id
		WHERE e.user_id = ? AND e.is_duplicate = 0
		GROUP BY v.book_id, v.format, e.original_currency
		ORDER BY revenue DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performers := []domain.TopPerformer{}
	for rows.Next() {
		var (
			p      domain.TopPerformer
			format string
		)
		err := rows.Scan(&p.Title, &format, &p.TotalRevenue, &p.Currency, &p.TotalSales, &p.Marketplaces)
		if err != nil {
			return nil, err
		}
		p.Format = domain.Format(format)
		performers = append(performers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return performers, nil
}

// MarketplaceBreakdown returns a user's revenue per marketplace and original
// currency, largest first.
func (s *Store) MarketplaceBreakdown(ctx context.Context, userID string) ([]domain.MarketplaceRevenue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			m.raw_name,
			m.code,
			COALESCE(SUM(CAST(e.original_royalty AS REAL)), 0) AS revenue,
			e.original_currency,
			COUNT(*),
			COUNT(DISTINCT v.book_id)
		FROM sales_events e
		JOIN product_variants v ON v.id = e.variant_id
		JOIN marketplaces m ON m.id = v.marketplace_id
		WHERE e.user_id = ? AND e.is_duplicate = 0
		GROUP BY m.id, e.original_currency
		ORDER BY revenue DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := []domain.MarketplaceRevenue{}
	for rows.Next() {
		var r domain.MarketplaceRevenue
		err := rows.Scan(&r.Marketplace, &r.Code, &r.Revenue, &r.Currency, &r.Transactions, &r.Books)
		if err != nil {
			return nil, err
		}
		breakdown = append(breakdown, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return breakdown, nil
}
