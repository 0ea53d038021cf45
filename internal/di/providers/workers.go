package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/royaltydesk/royaltydesk-server/internal/config"
	"github.com/royaltydesk/royaltydesk-server/internal/logger"
	"github.com/royaltydesk/royaltydesk-server/internal/service"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := authService.CleanupExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := authService.CleanupExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// RateRefreshJob runs periodic exchange rate refreshes.
type RateRefreshJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *RateRefreshJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideRateRefreshJob provides the periodic exchange rate refresh job.
// Does nothing when remote fetching is disabled.
func ProvideRateRefreshJob(i do.Injector) (*RateRefreshJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	exchangeService := do.MustInvoke[*service.ExchangeRateService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	if !cfg.Exchange.FetchEnabled {
		log.Info("Exchange rate fetching disabled, using fallback rates")
		return &RateRefreshJob{cancel: cancel}, nil
	}

	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()

		if err := exchangeService.RefreshRates(ctx); err != nil {
			log.Warn("Initial exchange rate refresh failed", "error", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := exchangeService.RefreshRates(ctx); err != nil {
					log.Warn("Exchange rate refresh failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Exchange rate refresh job started")

	return &RateRefreshJob{cancel: cancel}, nil
}
