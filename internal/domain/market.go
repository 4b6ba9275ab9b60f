package domain

import "fmt"

// Interval of a chart series
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval10m Interval = "10m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
)

// Intervals lists the supported intervals in ascending length
var Intervals = []Interval{Interval1m, Interval5m, Interval10m, Interval30m, Interval1h, Interval1d}

// ParseInterval validates an interval string
func ParseInterval(s string) (Interval, error) {
	for _, iv := range Intervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}

// IsDaily reports whether collection for this interval uses the daily endpoint
func (i Interval) IsDaily() bool {
	return i == Interval1d
}

// OHLCV is one candlestick
type OHLCV struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// ChangePercent is the intrabar change (close-open)/open*100
func (p OHLCV) ChangePercent() float64 {
	if p.Open == 0 {
		return 0
	}
	return (p.Close - p.Open) / p.Open * 100
}

// ChartSeries is ordered chronologically ascending as received.
// Display reversal happens in the view layer on a copy.
type ChartSeries struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Days     int      `json:"days,omitempty"`
	Data     []OHLCV  `json:"data"`
}

// Price is the current quote for a symbol
type Price struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// CollectResult is the backend's report of a collection job
type CollectResult struct {
	Symbol    string  `json:"symbol"`
	Interval  string  `json:"interval"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
	Total     int     `json:"total"`
	Data      []OHLCV `json:"data"`
}
