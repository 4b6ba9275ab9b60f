// Package di provides dependency injection for the dashboard gateway.
package di

import (
	"fmt"

	"github.com/kquant/dashboard/internal/config"
	"github.com/kquant/dashboard/internal/scheduler"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container.
// The caller starts the scheduler and owns container.Close.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, *scheduler.Scheduler, *JobInstances, error) {
	// Step 1: Databases
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	// Step 2: Services and handlers
	if err := InitializeServices(container, cfg, log); err != nil {
		container.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Step 3: Jobs
	sched := scheduler.New(log)
	jobs, err := RegisterJobs(container, cfg, sched, log)
	if err != nil {
		container.Close()
		return nil, nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed")
	return container, sched, jobs, nil
}
