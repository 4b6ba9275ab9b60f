package di

import (
	"fmt"

	"github.com/kquant/dashboard/internal/clientdata"
	"github.com/kquant/dashboard/internal/config"
	"github.com/kquant/dashboard/internal/scheduler"
	"github.com/kquant/dashboard/internal/session"
	"github.com/rs/zerolog"
)

const (
	sessionExpirySchedule = "@every 1m"
	cacheCleanupSchedule  = "@hourly"
)

// RegisterJobs registers the background jobs with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	instances := &JobInstances{
		PriceTick:     scheduler.NewPriceTickJob(container.MarketHandler, log),
		SessionExpiry: session.NewExpiryJob(container.SessionStore, container.SessionRepo, log),
		CacheCleanup:  clientdata.NewCleanupJob(container.ClientDataRepo, log),
	}

	if err := sched.AddJob(cfg.PriceTickSchedule, instances.PriceTick); err != nil {
		return nil, fmt.Errorf("failed to register price tick job: %w", err)
	}
	if err := sched.AddJob(sessionExpirySchedule, instances.SessionExpiry); err != nil {
		return nil, fmt.Errorf("failed to register session expiry job: %w", err)
	}
	if err := sched.AddJob(cacheCleanupSchedule, instances.CacheCleanup); err != nil {
		return nil, fmt.Errorf("failed to register cache cleanup job: %w", err)
	}

	log.Info().Int("jobs", len(sched.Jobs())).Msg("Background jobs registered")
	return instances, nil
}
