package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	apperrors "github.com/royaltydesk/royaltydesk-server/internal/errors"
	"github.com/royaltydesk/royaltydesk-server/internal/id"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

// ImportService accepts pre-parsed report rows and stores them for later
// migration. Spreadsheet parsing and duplicate detection happen upstream;
// rows arrive here already structured.
type ImportService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(st *store.Store, validator *validation.Validator, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

// ImportRowInput is one parsed spreadsheet line as submitted by the client.
// Monetary fields are verbatim strings; blank means the source cell was blank.
type ImportRowInput struct {
	Title             string     `json:"title,omitempty"`
	ASIN              string     `json:"asin,omitempty"`
	ISBN              string     `json:"isbn,omitempty"`
	Marketplace       string     `json:"marketplace,omitempty"`
	Format            string     `json:"format,omitempty"`
	Currency          string     `json:"currency,omitempty" validate:"omitempty,iso4217"`
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
	IsDuplicate       bool       `json:"is_duplicate,omitempty"`
}

// CreateImportRequest registers one uploaded report file and its rows.
type CreateImportRequest struct {
	FileName     string           `json:"file_name" validate:"required,max=512"`
	DetectedType string           `json:"detected_type" validate:"required,oneof=sales payments kenp_read unknown"`
	Rows         []ImportRowInput `json:"rows,omitempty" validate:"max=100000"`
}

// CreateImport stores an import and its rows in one shot.
func (s *ImportService) CreateImport(ctx context.Context, userID string, req CreateImportRequest) (*domain.Import, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	imp := &domain.Import{
		ID:           uuid.NewString(),
		UserID:       userID,
		FileName:     req.FileName,
		DetectedType: domain.ImportType(req.DetectedType),
		RowCount:     len(req.Rows),
		CreatedAt:    now,
	}

	if err := s.store.CreateImport(ctx, imp); err != nil {
		return nil, fmt.Errorf("create import: %w", err)
	}

	rows := make([]*domain.ImportRow, 0, len(req.Rows))
	for _, in := range req.Rows {
		rowID, err := id.Generate(id.PrefixRow)
		if err != nil {
			return nil, fmt.Errorf("generate row ID: %w", err)
		}
		rows = append(rows, &domain.ImportRow{
			ID:                rowID,
			ImportID:          imp.ID,
			UserID:            userID,
			Title:             in.Title,
			ASIN:              in.ASIN,
			ISBN:              in.ISBN,
			Marketplace:       in.Marketplace,
			Format:            in.Format,
			Currency:          in.Currency,
			Royalty:           in.Royalty,
			RoyaltyRate:       in.RoyaltyRate,
			ListPrice:         in.ListPrice,
			OfferPrice:        in.OfferPrice,
			DeliveryCost:      in.DeliveryCost,
			ManufacturingCost: in.ManufacturingCost,
			UnitsSold:         in.UnitsSold,
			UnitsRefunded:     in.UnitsRefunded,
			NetUnitsSold:      in.NetUnitsSold,
			KenpPagesRead:     in.KenpPagesRead,
			TransactionType:   in.TransactionType,
			MatchedBookID:     in.MatchedBookID,
			SalesDate:         in.SalesDate,
			SheetName:         in.SheetName,
			RowIndex:          in.RowIndex,
			IsDuplicate:       in.IsDuplicate,
			CreatedAt:         now,
		})
	}

	if len(rows) > 0 {
		if err := s.store.CreateImportRows(ctx, rows); err != nil {
			return nil, fmt.Errorf("create import rows: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Import stored",
			"import_id", imp.ID,
			"user_id", userID,
			"type", imp.DetectedType,
			"rows", len(rows),
		)
	}

	return imp, nil
}

// ListImports returns a user's imports, newest first.
func (s *ImportService) ListImports(ctx context.Context, userID string) ([]*domain.Import, error) {
	imports, err := s.store.ListImports(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return imports, nil
}

// ImportDetail pairs an import with its rows.
type ImportDetail struct {
	Import *domain.Import      `json:"import"`
	Rows   []*domain.ImportRow `json:"rows"`
}

// GetImport returns one import with its rows. Access is scoped to the owner.
func (s *ImportService) GetImport(ctx context.Context, userID, importID string) (*ImportDetail, error) {
	imp, err := s.store.GetImport(ctx, importID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("import not found")
		}
		return nil, fmt.Errorf("get import: %w", err)
	}
	if imp.UserID != userID {
		return nil, apperrors.NotFound("import not found")
	}

	rows, err := s.store.ListImportRows(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}

	return &ImportDetail{Import: imp, Rows: rows}, nil
}
