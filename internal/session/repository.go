// Package session owns the process-wide authentication state: a single
// container hydrated from sqlite on start and cleared atomically on logout.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultTTL applies when the access token carries no readable expiry
const DefaultTTL = 24 * time.Hour

// Repository persists the single session row
type Repository struct {
	db *sql.DB
}

// NewRepository creates a session repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save replaces the persisted session
func (r *Repository) Save(sess domain.Session, expiresAt time.Time) error {
	blob, err := msgpack.Marshal(&sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO session (id, data, expires_at, updated_at) VALUES (1, ?, ?, ?)`,
		blob, expiresAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Load returns the persisted session, or nil when none exists or it expired
func (r *Repository) Load() (*domain.Session, error) {
	var blob []byte
	err := r.db.QueryRow(
		`SELECT data FROM session WHERE id = 1 AND expires_at > ?`,
		time.Now().Unix(),
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess domain.Session
	if err := msgpack.Unmarshal(blob, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

// ExpiresAt returns the persisted expiry, or zero time when nothing is stored
func (r *Repository) ExpiresAt() (time.Time, error) {
	var unix int64
	err := r.db.QueryRow(`SELECT expires_at FROM session WHERE id = 1`).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read session expiry: %w", err)
	}
	return time.Unix(unix, 0), nil
}

// Delete removes the persisted session
func (r *Repository) Delete() error {
	if _, err := r.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes the row if it expired and reports how many rows went
func (r *Repository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM session WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired session: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The
// signature belongs to the backend; only the expiry matters here.
func TokenExpiry(token string, fallback time.Duration) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Now().Add(fallback)
}
