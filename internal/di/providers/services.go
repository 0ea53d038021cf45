package providers

import (
	"github.com/samber/do/v2"

	"github.com/royaltydesk/royaltydesk-server/internal/auth"
	"github.com/royaltydesk/royaltydesk-server/internal/config"
	"github.com/royaltydesk/royaltydesk-server/internal/logger"
	"github.com/royaltydesk/royaltydesk-server/internal/ratelimit"
	"github.com/royaltydesk/royaltydesk-server/internal/service"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

// FetchLimiterHandle wraps the outbound fetch rate limiter with shutdown
// capability.
type FetchLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *FetchLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideFetchLimiter provides the rate limiter guarding outbound exchange
// rate fetches.
func ProvideFetchLimiter(i do.Injector) (*FetchLimiterHandle, error) {
	// One request per minute per provider is plenty for rate refreshes.
	limiter := ratelimit.New(1.0/60.0, 1)
	return &FetchLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, validator, log.Logger), nil
}

// ProvideImportService provides the import staging service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideBookService provides the catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, indexHandle.SearchIndex, validator, log.Logger), nil
}

// ProvideMigrationService provides the row migration service.
func ProvideMigrationService(i do.Injector) (*service.MigrationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bookService := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMigrationService(storeHandle.Store, bookService, log.Logger), nil
}

// ProvideExchangeRateService provides the exchange rate service.
func ProvideExchangeRateService(i do.Injector) (*service.ExchangeRateService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiterHandle := do.MustInvoke[*FetchLimiterHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExchangeRateService(
		storeHandle.Store,
		limiterHandle.KeyedRateLimiter,
		service.ExchangeRateConfig{
			FetchEnabled: cfg.Exchange.FetchEnabled,
			FixerAPIKey:  cfg.Exchange.FixerAPIKey,
		},
		log.Logger,
	), nil
}

// ProvideAnalyticsService provides the analytics service.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	exchangeService := do.MustInvoke[*service.ExchangeRateService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(storeHandle.Store, exchangeService, log.Logger), nil
}
