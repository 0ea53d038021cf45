// Package di provides dependency injection configuration for the RoyaltyDesk server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/royaltydesk/royaltydesk-server/internal/auth"
	"github.com/royaltydesk/royaltydesk-server/internal/config"
	"github.com/royaltydesk/royaltydesk-server/internal/di/providers"
	"github.com/royaltydesk/royaltydesk-server/internal/logger"
	"github.com/royaltydesk/royaltydesk-server/internal/service"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideFetchLimiter)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideMigrationService)
	do.Provide(injector, providers.ProvideExchangeRateService)
	do.Provide(injector, providers.ProvideAnalyticsService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)
	do.Provide(injector, providers.ProvideRateRefreshJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*providers.FetchLimiterHandle](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.MigrationService](injector)
	_ = do.MustInvoke[*service.ExchangeRateService](injector)
	_ = do.MustInvoke[*service.AnalyticsService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.RateRefreshJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index if it is empty but the catalog is not
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
