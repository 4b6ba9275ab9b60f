// Package clientdata persists backend reference responses (stock details,
// filter options) as JSON blobs with an expiry, for cache-first reads with
// a stale fallback when the backend is unreachable.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Cache tables in cache.db
const (
	TableStockDetail  = "stock_detail"
	TableStockFilters = "stock_filters"
)

// AllTables lists every cache table for cleanup
var AllTables = []string{
	TableStockDetail,
	TableStockFilters,
}

var keyColumns = map[string]string{
	TableStockDetail:  "symbol",
	TableStockFilters: "scope",
}

// Repository provides cache operations for backend reference data
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// keyColumn validates the table against the allowed list and returns its key column.
// Table names are interpolated into SQL so only known names pass.
func keyColumn(table string) (string, error) {
	col, ok := keyColumns[table]
	if !ok {
		return "", fmt.Errorf("invalid table name: %s", table)
	}
	return col, nil
}

// Store upserts data with expiration = now + ttl
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	col, err := keyColumn(table)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s, data, expires_at) VALUES (?, ?, ?)", table, col)
	if _, err := r.db.Exec(query, key, string(jsonData), time.Now().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}
	return nil
}

// GetIfFresh returns data only if it has not expired. nil, nil means miss.
func (r *Repository) GetIfFresh(table, key string) (json.RawMessage, error) {
	col, err := keyColumn(table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT data FROM %s WHERE %s = ? AND expires_at > ?", table, col)
	return r.scan(table, r.db.QueryRow(query, key, time.Now().Unix()))
}

// Get returns data regardless of expiry, for use when the backend call failed
func (r *Repository) Get(table, key string) (json.RawMessage, error) {
	col, err := keyColumn(table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT data FROM %s WHERE %s = ?", table, col)
	return r.scan(table, r.db.QueryRow(query, key))
}

func (r *Repository) scan(table string, row *sql.Row) (json.RawMessage, error) {
	var data string
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data from %s: %w", table, err)
	}
	return json.RawMessage(data), nil
}

// Delete removes a specific entry
func (r *Repository) Delete(table, key string) error {
	col, err := keyColumn(table)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col)
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// DeleteExpired removes rows past their expiry and returns the count
func (r *Repository) DeleteExpired(table string) (int64, error) {
	if _, err := keyColumn(table); err != nil {
		return 0, err
	}

	result, err := r.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}
	return deleted, nil
}

// DeleteAllExpired sweeps every table
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	results := make(map[string]int64, len(AllTables))
	for _, table := range AllTables {
		deleted, err := r.DeleteExpired(table)
		if err != nil {
			return results, err
		}
		results[table] = deleted
	}
	return results, nil
}

// Load decodes a cached entry into out. fresh=false also accepts expired rows.
// Reports whether anything was found.
func (r *Repository) Load(table, key string, fresh bool, out interface{}) (bool, error) {
	var (
		raw json.RawMessage
		err error
	)
	if fresh {
		raw, err = r.GetIfFresh(table, key)
	} else {
		raw, err = r.Get(table, key)
	}
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode cached %s/%s: %w", table, key, err)
	}
	return true, nil
}
