package session

import (
	"time"

	"github.com/rs/zerolog"
)

// ExpiryJob signs out an expired session and drops the stale row.
// Scheduled every minute.
type ExpiryJob struct {
	store *Store
	repo  *Repository
	log   zerolog.Logger
	now   func() time.Time
}

// NewExpiryJob creates a session expiry job. repo may be nil.
func NewExpiryJob(store *Store, repo *Repository, log zerolog.Logger) *ExpiryJob {
	return &ExpiryJob{
		store: store,
		repo:  repo,
		log:   log.With().Str("job", "session_expiry").Logger(),
		now:   time.Now,
	}
}

// Run executes the job
func (j *ExpiryJob) Run() error {
	if j.store.ExpireIfDue(j.now()) {
		j.log.Info().Msg("Session expired")
	}
	if j.repo == nil {
		return nil
	}

	deleted, err := j.repo.DeleteExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired session")
		return err
	}
	if deleted > 0 {
		j.log.Debug().Int64("deleted", deleted).Msg("Removed expired session row")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *ExpiryJob) Name() string {
	return "session_expiry"
}
