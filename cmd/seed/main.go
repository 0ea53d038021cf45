// Package main provides a tool to seed the database with test sales data.
//
// This creates a demo user (unless one exists) and stages a few realistic
// KDP report imports so the migration and analytics features have something
// to chew on.
//
// Usage:
//
//	DATA_PATH=~/royaltydesk/data go run ./cmd/seed
//	DATA_PATH=~/royaltydesk/data go run ./cmd/seed --months 6
//
// Run the migration afterwards via POST /api/v1/admin/migrate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/royaltydesk/royaltydesk-server/internal/auth"
	"github.com/royaltydesk/royaltydesk-server/internal/domain"
	"github.com/royaltydesk/royaltydesk-server/internal/id"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
)

var months = flag.Int("months", 3, "Number of monthly reports to stage")

// sampleBooks are the titles seeded imports reference.
var sampleBooks = []struct {
	title  string
	asin   string
	format string
}{
	{"The Lighthouse Keeper", "B0C1SEED01", "ebook"},
	{"Midnight at the Marina", "B0C1SEED02", "ebook"},
	{"A Field Guide to Nothing", "B0C1SEED03", "paperback"},
	{"Der Zauberberg Revisited", "B0C1SEED04", "ebook"},
}

// storefronts pair a marketplace with its reporting currency.
var storefronts = []struct {
	marketplace string
	currency    string
}{
	{"Amazon.com", "USD"},
	{"Amazon.co.uk", "GBP"},
	{"Amazon.de", "EUR"},
	{"Amazon.co.jp", "JPY"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "./data"
	}
	dbPath := filepath.Join(dataPath, "royaltydesk.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	user, err := ensureDemoUser(ctx, s)
	if err != nil {
		log.Fatalf("Failed to ensure demo user: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	totalRows := 0
	for m := *months - 1; m >= 0; m-- {
		period := now.AddDate(0, -m-1, 0)
		fileName := fmt.Sprintf("KDP-report-%s.xlsx", period.Format("2006-01"))

		rows := buildSalesRows(rng, period)
		if err := stageImport(ctx, s, user.ID, fileName, domain.ImportTypeSales, rows); err != nil {
			log.Fatalf("Failed to stage %s: %v", fileName, err)
		}
		totalRows += len(rows)
		fmt.Printf("  Staged %s with %d rows\n", fileName, len(rows))

		kenpRows := buildKenpRows(rng, period)
		kenpName := fmt.Sprintf("KENP-read-%s.xlsx", period.Format("2006-01"))
		if err := stageImport(ctx, s, user.ID, kenpName, domain.ImportTypeKenpRead, kenpRows); err != nil {
			log.Fatalf("Failed to stage %s: %v", kenpName, err)
		}
		totalRows += len(kenpRows)
		fmt.Printf("  Staged %s with %d rows\n", kenpName, len(kenpRows))
	}

	// A payments report, which migration must leave alone.
	paymentRows := []*domain.ImportRow{
		{Royalty: "1234.56", Currency: "USD", RowIndex: 1},
	}
	if err := stageImport(ctx, s, user.ID, "KDP-payments.xlsx", domain.ImportTypePayments, paymentRows); err != nil {
		log.Fatalf("Failed to stage payments report: %v", err)
	}

	fmt.Printf("\nSeeding complete: %d rows staged for %s\n", totalRows, user.Email)
	fmt.Println("Run POST /api/v1/admin/migrate to turn them into sales events.")
}

// ensureDemoUser returns the first existing user, creating a demo account
// when the database is empty.
func ensureDemoUser(ctx context.Context, s *store.Store) (*domain.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		fmt.Printf("Using existing user: %s\n", users[0].Email)
		return users[0], nil
	}

	hash, err := auth.HashPassword("demopass123")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate(id.PrefixUser),
		Email:        "demo@example.com",
		PasswordHash: hash,
		DisplayName:  "Demo Author",
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	fmt.Println("Created demo user: demo@example.com / demopass123")
	return user, nil
}

// stageImport writes an import and its rows the way an upload would.
func stageImport(ctx context.Context, s *store.Store, userID, fileName string, detectedType domain.ImportType, rows []*domain.ImportRow) error {
	now := time.Now()
	imp := &domain.Import{
		ID:           uuid.NewString(),
		UserID:       userID,
		FileName:     fileName,
		DetectedType: detectedType,
		RowCount:     len(rows),
		CreatedAt:    now,
	}
	if err := s.CreateImport(ctx, imp); err != nil {
		return err
	}

	for _, row := range rows {
		row.ID = id.MustGenerate(id.PrefixRow)
		row.ImportID = imp.ID
		row.UserID = userID
		row.CreatedAt = now
	}
	return s.CreateImportRows(ctx, rows)
}

// buildSalesRows generates one sales row per book and storefront, with the
// occasional blank royalty and duplicate to mirror real report noise.
func buildSalesRows(rng *rand.Rand, period time.Time) []*domain.ImportRow {
	var rows []*domain.ImportRow
	index := 1
	saleDate := time.Date(period.Year(), period.Month(), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)

	for _, book := range sampleBooks {
		for _, sf := range storefronts {
			// Not every book sells everywhere every month.
			if rng.Float32() > 0.7 {
				continue
			}

			units := 1 + rng.Intn(25)
			royalty := float64(units) * (1.5 + rng.Float64()*3.5)
			if sf.currency == "JPY" {
				royalty *= 150
			}

			row := &domain.ImportRow{
				Title:           book.title,
				ASIN:            book.asin,
				Marketplace:     sf.marketplace,
				Format:          book.format,
				Currency:        sf.currency,
				Royalty:         strconv.FormatFloat(royalty, 'f', 2, 64),
				UnitsSold:       units,
				NetUnitsSold:    units,
				TransactionType: "Standard",
				SalesDate:       &saleDate,
				SheetName:       "Combined Sales",
				RowIndex:        index,
			}
			rows = append(rows, row)
			index++

			// Occasional duplicate flagged by the upstream parser.
			if rng.Float32() > 0.9 {
				dup := *row
				dup.IsDuplicate = true
				dup.RowIndex = index
				rows = append(rows, &dup)
				index++
			}
		}

		// Blank royalty rows happen when a sheet carries summary lines.
		if rng.Float32() > 0.8 {
			rows = append(rows, &domain.ImportRow{
				Title:    book.title,
				ASIN:     book.asin,
				Royalty:  "",
				RowIndex: index,
			})
			index++
		}
	}

	return rows
}

// buildKenpRows generates page-read rows for the ebook titles.
func buildKenpRows(rng *rand.Rand, period time.Time) []*domain.ImportRow {
	var rows []*domain.ImportRow
	index := 1
	readDate := time.Date(period.Year(), period.Month(), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)

	for _, book := range sampleBooks {
		if book.format != "ebook" || rng.Float32() > 0.6 {
			continue
		}

		pages := 100 + rng.Intn(5000)
		royalty := float64(pages) * 0.0045

		rows = append(rows, &domain.ImportRow{
			Title:         book.title,
			ASIN:          book.asin,
			Marketplace:   "Amazon.com",
			Currency:      "USD",
			Royalty:       strconv.FormatFloat(royalty, 'f', 2, 64),
			KenpPagesRead: pages,
			SalesDate:     &readDate,
			SheetName:     "KENP Read",
			RowIndex:      index,
		})
		index++
	}

	return rows
}
