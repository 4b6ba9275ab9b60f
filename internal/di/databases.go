package di

import (
	"fmt"
	"path/filepath"

	"github.com/kquant/dashboard/internal/config"
	"github.com/kquant/dashboard/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens and migrates both databases.
// session.db survives restarts, cache.db holds disposable reference data.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	sessionDB, err := database.New(database.Config{
		Path:    cfg.SessionDBPath(),
		Profile: database.ProfileStandard,
		Name:    "session",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session database: %w", err)
	}
	if err := sessionDB.Migrate(); err != nil {
		sessionDB.Close()
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}
	container.SessionDB = sessionDB

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		sessionDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	if err := cacheDB.Migrate(); err != nil {
		sessionDB.Close()
		cacheDB.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	container.CacheDB = cacheDB

	log.Info().
		Str("session_db", sessionDB.Path()).
		Str("cache_db", cacheDB.Path()).
		Msg("Databases initialized")

	return container, nil
}
