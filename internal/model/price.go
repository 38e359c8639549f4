package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire format for calendar days in both artifacts.
const DateFormat = "2006-01-02"

// Midnight truncates t to midnight UTC, the canonical representation of a
// calendar day throughout the pipeline.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PricePoint is one daily observation: the opening price for a calendar day.
// Price is kept as a decimal so the value written back to disk is exactly
// the value that was read or fetched.
type PricePoint struct {
	Day   time.Time
	Price decimal.Decimal
}

// PriceText renders the price with the scale it was parsed or fetched with:
// decimal retains the exponent of "42000.00" but String() trims trailing
// zeros, so rendering goes through StringFixed to keep the digits intact
// across a store round trip.
func (p PricePoint) PriceText() string {
	if exp := p.Price.Exponent(); exp < 0 {
		return p.Price.StringFixed(-exp)
	}
	return p.Price.String()
}

// Series is an ordered sequence of PricePoints, unique and ascending by day.
type Series []PricePoint

// LastDay returns the most recent day present in the series.
// ok is false for an empty series.
func (s Series) LastDay() (day time.Time, ok bool) {
	for _, p := range s {
		if !ok || p.Day.After(day) {
			day = p.Day
			ok = true
		}
	}
	return day, ok
}

// Merge appends points to the series and returns the result sorted
// ascending by day. Input order is not assumed.
func (s Series) Merge(points []PricePoint) Series {
	merged := make(Series, 0, len(s)+len(points))
	merged = append(merged, s...)
	merged = append(merged, points...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Day.Before(merged[j].Day) })
	return merged
}
