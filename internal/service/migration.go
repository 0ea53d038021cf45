// Package service contains the application services that sit between the API
// layer and the store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/id"
	"github.com/royaltydesk/royaltydesk-server/internal/normalize"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
)

// BookIndexer keeps the search index in sync with books created during
// migration. Implemented by BookService; nil disables indexing.
type BookIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book, identifierValues []string) error
}

// MigrationService turns raw imported report rows into normalized sales and
// page-read events, resolving marketplaces, books and variants on the way.
type MigrationService struct {
	store   *store.Store
	indexer BookIndexer
	logger  *slog.Logger

	// now is injectable for deterministic reporting-period fallbacks in tests.
	now func() time.Time
}

// NewMigrationService creates a new migration service.
func NewMigrationService(st *store.Store, indexer BookIndexer, logger *slog.Logger) *MigrationService {
	return &MigrationService{
		store:   st,
		indexer: indexer,
		logger:  logger,
		now:     time.Now,
	}
}

// MigrateUser migrates every eligible imported row belonging to a user.
//
// Eligible rows are non-duplicate rows whose parent import is not a payments
// report; payments files hold cumulative totals and would double-count
// revenue. Rows with a blank or zero royalty are counted as skipped, as is
// any row whose resolution fails. Negative royalties are refunds and migrate
// like any sale. A row failure never aborts the batch.
//
// Re-running the migration appends events again. Idempotency is the caller's
// concern; the admin endpoint is explicit about this.
func (s *MigrationService) MigrateUser(ctx context.Context, userID string) (*domain.MigrationResult, error) {
	records, err := s.store.ListEligibleRows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list eligible rows: %w", err)
	}

	result := &domain.MigrationResult{}

	for _, record := range records {
		if !hasNonzeroRoyalty(record.Row.Royalty) {
			result.SkippedCount++
			continue
		}

		if err := s.migrateRow(ctx, record); err != nil {
			result.SkippedCount++
			if s.logger != nil {
				s.logger.Warn("Skipping row after migration failure",
					"row_id", record.Row.ID,
					"import_id", record.Import.ID,
					"error", err,
				)
			}
			continue
		}

		result.MigratedCount++
	}

	if s.logger != nil {
		s.logger.Info("Migration complete",
			"user_id", userID,
			"migrated", result.MigratedCount,
			"skipped", result.SkippedCount,
		)
	}

	return result, nil
}

// hasNonzeroRoyalty reports whether the verbatim royalty string parses to a
// nonzero value. Blank and unparseable values are treated as zero; negative
// values are refunds and count.
func hasNonzeroRoyalty(royalty string) bool {
	trimmed := strings.TrimSpace(royalty)
	if trimmed == "" {
		return false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return false
	}
	return v != 0
}

// migrateRow resolves one row end to end and appends its event.
func (s *MigrationService) migrateRow(ctx context.Context, record *domain.LegacyRecord) error {
	row := &record.Row

	marketplace, err := s.resolveMarketplace(ctx, row.Marketplace)
	if err != nil {
		return fmt.Errorf("resolve marketplace: %w", err)
	}

	book, err := s.resolveBook(ctx, row, marketplace)
	if err != nil {
		return fmt.Errorf("resolve book: %w", err)
	}

	variant, err := s.resolveVariant(ctx, row, book, marketplace)
	if err != nil {
		return fmt.Errorf("resolve variant: %w", err)
	}

	period := normalize.ReportingPeriod(record.Import.FileName, row.SalesDate, s.now())

	currency := row.Currency
	if currency == "" {
		currency = "USD"
	}

	// KENP page reads are billed per page, not per unit, and land in their
	// own event table. Everything else is a unit sale.
	if record.Import.DetectedType == domain.ImportTypeKenpRead && row.KenpPagesRead > 0 {
		return s.createKenpRead(ctx, record, variant, period, currency)
	}
	return s.createSalesEvent(ctx, record, variant, period, currency)
}

// resolveMarketplace maps a raw storefront label to a stored marketplace,
// creating it on first sight. A blank label counts as Amazon.com.
func (s *MigrationService) resolveMarketplace(ctx context.Context, rawName string) (*domain.Marketplace, error) {
	if rawName == "" {
		rawName = "Amazon.com"
	}

	info := normalize.Marketplace(rawName)

	marketplaceID, err := id.Generate(id.PrefixMarketplace)
	if err != nil {
		return nil, err
	}

	return s.store.GetOrCreateMarketplace(ctx, &domain.Marketplace{
		ID:           marketplaceID,
		RawName:      rawName,
		Code:         info.Code,
		Country:      info.Country,
		Currency:     info.Currency,
		LanguageHint: info.LanguageHint,
		CreatedAt:    s.now(),
	})
}

// resolveBook finds or creates the book a row belongs to. Resolution order:
// the upstream parser's explicit match, then an identifier lookup, then a
// fresh auto-created book carrying whatever the row knows about itself.
func (s *MigrationService) resolveBook(ctx context.Context, row *domain.ImportRow, marketplace *domain.Marketplace) (*domain.Book, error) {
	if row.MatchedBookID != "" {
		return s.store.GetBook(ctx, row.MatchedBookID)
	}

	identValue := row.ASIN
	if identValue == "" {
		identValue = row.ISBN
	}

	if identValue != "" {
		book, err := s.store.FindBookByIdentifier(ctx, row.UserID, identValue)
		if err == nil {
			return book, nil
		}
		if err != store.ErrNotFound {
			return nil, err
		}
	}

	return s.createBook(ctx, row, marketplace)
}

// createBook auto-creates a book from row data and registers the row's
// identifiers against it.
func (s *MigrationService) createBook(ctx context.Context, row *domain.ImportRow, marketplace *domain.Marketplace) (*domain.Book, error) {
	title := row.Title
	if title == "" {
		title = "Unknown Title"
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, err
	}

	now := s.now()
	book := &domain.Book{
		ID:        bookID,
		UserID:    row.UserID,
		Title:     title,
		Language:  normalize.GuessLanguage(title),
		Format:    domain.ParseFormat(row.Format),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	var identifierValues []string
	for _, value := range []string{row.ASIN, row.ISBN} {
		if value == "" {
			continue
		}
		identID, err := id.Generate(id.PrefixIdentifier)
		if err != nil {
			return nil, err
		}
		ident := &domain.Identifier{
			ID:            identID,
			BookID:        bookID,
			Type:          normalize.IdentifierType(value),
			Value:         value,
			MarketplaceID: marketplace.ID,
			CreatedAt:     now,
		}
		if err := s.store.AddIdentifier(ctx, ident); err != nil {
			return nil, err
		}
		identifierValues = append(identifierValues, value)
	}

	if s.indexer != nil {
		if err := s.indexer.IndexBook(ctx, book, identifierValues); err != nil && s.logger != nil {
			// Search staleness is tolerable; event creation is not.
			s.logger.Warn("Failed to index auto-created book", "book_id", bookID, "error", err)
		}
	}

	return book, nil
}

// resolveVariant finds or creates the (book, format, marketplace) variant.
func (s *MigrationService) resolveVariant(ctx context.Context, row *domain.ImportRow, book *domain.Book, marketplace *domain.Marketplace) (*domain.Variant, error) {
	variantID, err := id.Generate(id.PrefixVariant)
	if err != nil {
		return nil, err
	}

	return s.store.GetOrCreateVariant(ctx, &domain.Variant{
		ID:            variantID,
		BookID:        book.ID,
		Format:        domain.ParseFormat(row.Format),
		MarketplaceID: marketplace.ID,
		ASIN:          row.ASIN,
		ISBN:          row.ISBN,
		IsActive:      true,
		CreatedAt:     s.now(),
	})
}

func (s *MigrationService) createSalesEvent(ctx context.Context, record *domain.LegacyRecord, variant *domain.Variant, period, currency string) error {
	row := &record.Row

	eventID, err := id.Generate(id.PrefixSalesEvent)
	if err != nil {
		return err
	}

	return s.store.CreateSalesEvent(ctx, &domain.SalesEvent{
		ID:                 eventID,
		VariantID:          variant.ID,
		ImportID:           row.ImportID,
		UserID:             row.UserID,
		EventDate:          row.SalesDate,
		ReportingPeriod:    period,
		UnitsSold:          row.UnitsSold,
		UnitsRefunded:      row.UnitsRefunded,
		NetUnitsSold:       row.NetUnitsSold,
		OriginalCurrency:   currency,
		OriginalRoyalty:    row.Royalty,
		OriginalListPrice:  row.ListPrice,
		OriginalOfferPrice: row.OfferPrice,
		DeliveryCost:       row.DeliveryCost,
		ManufacturingCost:  row.ManufacturingCost,
		RoyaltyRate:        row.RoyaltyRate,
		TransactionType:    row.TransactionType,
		SourceType:         string(record.Import.DetectedType),
		SheetName:          row.SheetName,
		RowIndex:           row.RowIndex,
		IsDuplicate:        row.IsDuplicate,
		CreatedAt:          s.now(),
	})
}

func (s *MigrationService) createKenpRead(ctx context.Context, record *domain.LegacyRecord, variant *domain.Variant, period, currency string) error {
	row := &record.Row

	eventID, err := id.Generate(id.PrefixKenpRead)
	if err != nil {
		return err
	}

	return s.store.CreateKenpRead(ctx, &domain.KenpRead{
		ID:               eventID,
		VariantID:        variant.ID,
		ImportID:         row.ImportID,
		UserID:           row.UserID,
		ReadDate:         row.SalesDate,
		ReportingPeriod:  period,
		KenpPages:        row.KenpPagesRead,
		OriginalCurrency: currency,
		OriginalRoyalty:  row.Royalty,
		SourceType:       string(record.Import.DetectedType),
		IsDuplicate:      row.IsDuplicate,
		CreatedAt:        s.now(),
	})
}
