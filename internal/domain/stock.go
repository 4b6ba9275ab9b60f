package domain

import "fmt"

// MarketType of a listed stock. MarketAll is only a search filter.
type MarketType string

const (
	MarketAll    MarketType = "ALL"
	MarketKOSPI  MarketType = "KOSPI"
	MarketKOSDAQ MarketType = "KOSDAQ"
)

// ParseMarketType validates a market filter. Empty means ALL.
func ParseMarketType(s string) (MarketType, error) {
	switch m := MarketType(s); m {
	case "":
		return MarketAll, nil
	case MarketAll, MarketKOSPI, MarketKOSDAQ:
		return m, nil
	}
	return "", fmt.Errorf("unknown market type %q", s)
}

// Stock is reference data, immutable from the dashboard's perspective
type Stock struct {
	ID           int64      `json:"id"`
	Symbol       string     `json:"symbol"`
	StandardCode string     `json:"standard_code,omitempty"`
	Name         string     `json:"name"`
	MarketType   MarketType `json:"market_type"`
	Sector       string     `json:"sector,omitempty"`
	Industry     string     `json:"industry,omitempty"`
	Dept         string     `json:"dept,omitempty"`
	MarketCap    *float64   `json:"market_cap,omitempty"`
}

// StockList is a search result or one page of the stock list
type StockList struct {
	Stocks []Stock `json:"stocks"`
	Total  int     `json:"total"`
}

// StockFilters are the selectable list filter values
type StockFilters struct {
	Sectors    []string `json:"sectors"`
	Industries []string `json:"industries"`
	Depts      []string `json:"depts"`
}

// SortKey for the stock list
type SortKey string

const (
	SortMarketCap SortKey = "market_cap"
	SortName      SortKey = "name"
	SortSymbol    SortKey = "symbol"
)

// SortOrder for the stock list
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StockQuery is the server-side filter/sort/page tuple of the stock list
type StockQuery struct {
	MarketType MarketType
	Sector     string
	Industry   string
	Dept       string
	SortBy     SortKey
	SortOrder  SortOrder
	Skip       int
	Limit      int
}

// StockSearch is a one-shot search request
type StockSearch struct {
	Query      string     `json:"query" validate:"required"`
	MarketType MarketType `json:"market_type" validate:"omitempty,oneof=ALL KOSPI KOSDAQ"`
	Limit      int        `json:"limit" validate:"gte=1,lte=100"`
}
