package api

import (
	"github.com/royaltydesk/royaltydesk-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This keeps the NewServer signature short and makes handler tests easy to
// assemble.
type Services struct {
	Auth      *service.AuthService
	Import    *service.ImportService
	Migration *service.MigrationService
	Book      *service.BookService
	Analytics *service.AnalyticsService
	Exchange  *service.ExchangeRateService
}
