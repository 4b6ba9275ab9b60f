package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const wonSign = "₩"

var (
	krwPrinter = message.NewPrinter(language.Korean)
	krwScale   = func() int32 {
		scale, _ := currency.Standard.Rounding(currency.KRW)
		return int32(scale)
	}()
)

// FormatKRW formats an amount as Korean won, e.g. ₩523,000
func FormatKRW(amount float64) string {
	return FormatKRWDecimal(decimal.NewFromFloat(amount))
}

// FormatKRWDecimal formats a decimal amount as Korean won
func FormatKRWDecimal(amount decimal.Decimal) string {
	rounded := amount.Round(krwScale)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + wonSign + krwPrinter.Sprintf("%d", rounded.IntPart())
}

// FormatNumber groups an integer-valued number, e.g. 1,234,567
func FormatNumber(v float64) string {
	return krwPrinter.Sprintf("%d", int64(math.Round(v)))
}

// FormatPercent formats with an explicit sign, e.g. +1.23% or -0.50%
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// Tone is the color direction of a change. Korean markets use red for up.
type Tone string

const (
	ToneUp   Tone = "up"
	ToneDown Tone = "down"
	ToneFlat Tone = "flat"
)

// ToneOf returns the tone of a signed change
func ToneOf(v float64) Tone {
	switch {
	case v > 0:
		return ToneUp
	case v < 0:
		return ToneDown
	}
	return ToneFlat
}

// Color returns the display color of the tone
func (t Tone) Color() string {
	switch t {
	case ToneUp:
		return "red"
	case ToneDown:
		return "blue"
	}
	return "gray"
}

// FormatMarketCap abbreviates to 조 (1e12) or 억 (1e8); missing or zero is N/A
func FormatMarketCap(v *float64) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	if trillion := *v / 1e12; trillion >= 1 {
		return fmt.Sprintf("%.2f조", trillion)
	}
	return fmt.Sprintf("%.0f억", *v/1e8)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

// ParseTimestamp accepts the timestamp shapes the backend emits
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a date for daily data and date+time otherwise.
// Unparseable input is returned unchanged.
func FormatTimestamp(s string, daily bool) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	if daily {
		return t.Format("2006.01.02")
	}
	return t.Format("2006.01.02 15:04")
}

// FormatWon renders a price the way the chart labels do, e.g. 71,500원
func FormatWon(v float64) string {
	return FormatNumber(v) + "원"
}
