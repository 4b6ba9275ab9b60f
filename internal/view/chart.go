package view

import (
	"math"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"
)

// LatestFirst returns a reversed copy for table display. The input
// series is left untouched for the chart.
func LatestFirst(points []domain.OHLCV) []domain.OHLCV {
	out := make([]domain.OHLCV, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// PriceRange is the chart's y-axis: low/high extremes padded by 10%,
// floored and ceiled. An empty series gets 0..100.
func PriceRange(points []domain.OHLCV) (min, max float64) {
	if len(points) == 0 {
		return 0, 100
	}
	prices := make([]float64, 0, len(points)*2)
	for _, p := range points {
		prices = append(prices, p.Low, p.High)
	}
	lo, hi := floats.Min(prices), floats.Max(prices)
	padding := (hi - lo) * 0.1
	return math.Floor(lo - padding), math.Ceil(hi + padding)
}

// Closes extracts close prices in series order
func Closes(points []domain.OHLCV) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// MovingAverage returns a simple moving average aligned with points.
// Leading positions without a full window are nil.
func MovingAverage(points []domain.OHLCV, period int) []*float64 {
	out := make([]*float64, len(points))
	if period < 2 || len(points) < period {
		return out
	}
	sma := talib.Sma(Closes(points), period)
	for i := period - 1; i < len(sma); i++ {
		v := sma[i]
		out[i] = &v
	}
	return out
}

// TableRow is one formatted row of the market data table
type TableRow struct {
	Timestamp     string  `json:"timestamp"`
	Open          string  `json:"open"`
	High          string  `json:"high"`
	Low           string  `json:"low"`
	Close         string  `json:"close"`
	Volume        string  `json:"volume"`
	ChangePercent string  `json:"change_percent"`
	Change        float64 `json:"change"`
	Tone          Tone    `json:"tone"`
}

// Rows formats points for the table. Input order is preserved.
func Rows(points []domain.OHLCV, daily bool) []TableRow {
	rows := make([]TableRow, 0, len(points))
	for _, p := range points {
		change := p.ChangePercent()
		rows = append(rows, TableRow{
			Timestamp:     FormatTimestamp(p.Timestamp, daily),
			Open:          FormatNumber(p.Open),
			High:          FormatNumber(p.High),
			Low:           FormatNumber(p.Low),
			Close:         FormatNumber(p.Close),
			Volume:        FormatNumber(p.Volume),
			ChangePercent: FormatPercent(change),
			Change:        change,
			Tone:          ToneOf(change),
		})
	}
	return rows
}
