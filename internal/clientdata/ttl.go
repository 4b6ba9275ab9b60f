package clientdata

import "time"

// TTLs added to time.Now() when storing
const (
	// Listing data changes rarely
	TTLStockDetail = 24 * time.Hour

	// Filter options change when the backend adds a sector or department
	TTLStockFilters = 6 * time.Hour
)
