package scheduler

import (
	"github.com/rs/zerolog"
)

// Ticker refreshes the price of whatever chart is mounted
type Ticker interface {
	Tick() error
}

// PriceTickJob drives the background price refresh of the market view.
// Scheduled every DASHBOARD_PRICE_TICK.
type PriceTickJob struct {
	ticker Ticker
	log    zerolog.Logger
}

// NewPriceTickJob creates a price tick job
func NewPriceTickJob(ticker Ticker, log zerolog.Logger) *PriceTickJob {
	return &PriceTickJob{
		ticker: ticker,
		log:    log.With().Str("job", "price_tick").Logger(),
	}
}

// Run executes the job. A failed background refresh is logged and kept
// off the view, so it never fails the job.
func (j *PriceTickJob) Run() error {
	if err := j.ticker.Tick(); err != nil {
		j.log.Warn().Err(err).Msg("Price refresh failed")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *PriceTickJob) Name() string {
	return "price_tick"
}
