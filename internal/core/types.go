package core

import (
	"math"
	"time"
)

// Record is one trading day for one instrument. Close is preferred for
// valuation; Value is the fallback used by feeds that publish no close
// (Nasdaq OMX typically doesn't). Either may be NaN when the feed did
// not quote it. Records are immutable once ingested.
type Record struct {
	Date   time.Time // calendar date, normalized to UTC midnight
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Value  float64
	Volume int64
}

// Price returns the closing price for the day: Close if quoted,
// otherwise Value. Fails with ErrMissingPrice when neither is quoted.
func (r Record) Price() (float64, error) {
	if !math.IsNaN(r.Close) {
		return r.Close, nil
	}
	if !math.IsNaN(r.Value) {
		return r.Value, nil
	}
	return 0, ErrMissingPrice
}

// HasClose reports whether the record carries a quoted close.
func (r Record) HasClose() bool {
	return !math.IsNaN(r.Close)
}

// Day truncates a time to its calendar date in UTC. All date
// comparisons in the store go through this so records and query dates
// agree on midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
