// Package market holds the historical daily series for each instrument
// and answers point-in-time queries against them. The store is
// read-only after ingestion; point-in-time views share its backing
// arrays and are therefore cheap to derive per simulated day.
package market

import (
	"fmt"
	"sort"
	"time"

	"github.com/osloquant/fjord/internal/core"
)

// Instrument owns one ticker's records, sorted ascending by date with
// no duplicates. The constructor validates the ordering; after that
// the record slice is never mutated.
type Instrument struct {
	ticker  string
	name    string
	records []core.Record
}

// NewInstrument builds an instrument from records already sorted
// ascending by date. Out-of-order or duplicate dates fail with
// ErrBadRecord; ingestion is expected to have sorted the feed before
// handoff and this is the fail-fast check on that contract. Dates are
// normalized to UTC midnight so day resolution and the trading
// calendar compare record dates exactly, whatever clock or zone the
// caller carried. The constructor takes ownership of the slice.
func NewInstrument(ticker, name string, records []core.Record) (*Instrument, error) {
	if ticker == "" {
		return nil, core.WrapError(core.ErrBadRecord, fmt.Errorf("empty ticker"))
	}
	for i := range records {
		records[i].Date = core.Day(records[i].Date)
	}
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1].Date, records[i].Date
		if !cur.After(prev) {
			return nil, core.WrapError(core.ErrBadRecord,
				fmt.Errorf("%s: record %d dated %s does not follow %s", ticker, i,
					cur.Format("2006-01-02"), prev.Format("2006-01-02")))
		}
	}
	return &Instrument{ticker: ticker, name: name, records: records}, nil
}

// Ticker returns the instrument's ticker symbol.
func (in *Instrument) Ticker() string { return in.ticker }

// Name returns the instrument's long name, if ingestion provided one.
func (in *Instrument) Name() string { return in.name }

// Len returns the number of records.
func (in *Instrument) Len() int { return len(in.records) }

// At returns the record at index i.
func (in *Instrument) At(i int) core.Record { return in.records[i] }

// FirstDate returns the date of the earliest record.
func (in *Instrument) FirstDate() time.Time {
	if len(in.records) == 0 {
		return time.Time{}
	}
	return in.records[0].Date
}

// LastDate returns the date of the latest record.
func (in *Instrument) LastDate() time.Time {
	if len(in.records) == 0 {
		return time.Time{}
	}
	return in.records[len(in.records)-1].Date
}

// ExistedAt reports whether the instrument has at least one record on
// or before date. An instrument exists from its first recorded date
// onward, across any gaps in trading.
func (in *Instrument) ExistedAt(date time.Time) bool {
	return len(in.records) > 0 && !in.records[0].Date.After(core.Day(date))
}

// DayIndexOrLastBefore resolves date to a record index: the record at
// date if one exists, otherwise the most recent record strictly before
// it. Fails with ErrNoData when date precedes the first record.
func (in *Instrument) DayIndexOrLastBefore(date time.Time) (int, error) {
	day := core.Day(date)
	// First index with record date > day; the record before it is the
	// resolution, if there is one.
	i := sort.Search(len(in.records), func(i int) bool {
		return in.records[i].Date.After(day)
	})
	if i == 0 {
		return 0, core.WrapError(core.ErrNoData,
			fmt.Errorf("%s has no data at or before %s", in.ticker, day.Format("2006-01-02")))
	}
	return i - 1, nil
}

// DayOrLastBefore resolves date to a record under the same fallback
// rule as DayIndexOrLastBefore. Markets are not traded every day;
// "last known value" semantics avoid spurious valuation gaps without
// ever looking forward.
func (in *Instrument) DayOrLastBefore(date time.Time) (core.Record, error) {
	i, err := in.DayIndexOrLastBefore(date)
	if err != nil {
		return core.Record{}, err
	}
	return in.records[i], nil
}

// PriceAt returns the closing price as of date: the resolved record's
// close if quoted, else its value. Propagates ErrNoData and
// ErrMissingPrice.
func (in *Instrument) PriceAt(date time.Time) (float64, error) {
	rec, err := in.DayOrLastBefore(date)
	if err != nil {
		return 0, err
	}
	return rec.Price()
}

// ViewAt derives the point-in-time view of the instrument as of date:
// an instrument containing exactly the records up to and including the
// resolved index for date, and nothing later. The view re-slices the
// shared immutable backing array, so deriving one is O(log n) and
// allocation-free; it must never be able to reach records dated after
// the as-of day. Fails with ErrNotYetListed when the instrument has no
// data at or before date, with the known date range in the cause.
func (in *Instrument) ViewAt(date time.Time) (*Instrument, error) {
	day := core.Day(date)
	if !in.ExistedAt(day) {
		return nil, core.WrapError(core.ErrNotYetListed,
			fmt.Errorf("%q at %s, first date: %s, last date: %s",
				in.ticker, day.Format("2006-01-02"),
				in.FirstDate().Format("2006-01-02"),
				in.LastDate().Format("2006-01-02")))
	}
	i, err := in.DayIndexOrLastBefore(day)
	if err != nil {
		return nil, err
	}
	end := i + 1
	return &Instrument{
		ticker:  in.ticker,
		name:    in.name,
		records: in.records[:end:end], // capped so appends can't leak future records
	}, nil
}

// Closes returns the close-or-value series for every record, in date
// order. Records with neither quoted carry NaN.
func (in *Instrument) Closes() []float64 {
	out := make([]float64, len(in.records))
	for i, r := range in.records {
		p, err := r.Price()
		if err != nil {
			p = r.Close // NaN, keeps positions aligned with dates
		}
		out[i] = p
	}
	return out
}
