package market

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osloquant/fjord/internal/core"
)

// Catalog is the full-history market data provider: every ingested
// instrument plus the trading calendar derived from them. A trading
// day is a date on which at least one tracked instrument has a record;
// no external exchange calendar is consulted. The catalog is read-only
// for the duration of a backtest, so any number of runs may share it:
// the calendar cache rebuild is guarded internally and calendar
// queries are safe from concurrent goroutines.
type Catalog struct {
	instruments map[string]*Instrument

	mu    sync.Mutex
	days  []time.Time // sorted union of all record dates
	stale bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{instruments: make(map[string]*Instrument)}
}

// Add registers an instrument. Adding a duplicate ticker fails with
// ErrBadRecord. Add must not be called once a backtest is running.
func (c *Catalog) Add(in *Instrument) error {
	if _, ok := c.instruments[in.Ticker()]; ok {
		return core.WrapError(core.ErrBadRecord, fmt.Errorf("duplicate ticker %q", in.Ticker()))
	}
	c.instruments[in.Ticker()] = in
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
	return nil
}

// Instrument returns the full-history instrument for ticker. Fails
// with ErrUnknownTicker for tickers never ingested.
func (c *Catalog) Instrument(ticker string) (*Instrument, error) {
	in, ok := c.instruments[ticker]
	if !ok {
		return nil, core.WrapError(core.ErrUnknownTicker, fmt.Errorf("%q", ticker))
	}
	return in, nil
}

// Tickers returns all known tickers in alphabetical order.
func (c *Catalog) Tickers() []string {
	out := make([]string, 0, len(c.instruments))
	for t := range c.instruments {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of instruments.
func (c *Catalog) Size() int { return len(c.instruments) }

// calendar returns the sorted union of all record dates, rebuilding
// the cache after instruments were added. The rebuild is serialized so
// concurrent runs querying a cold cache never observe a half-built
// calendar; the returned slice is never mutated afterwards.
func (c *Catalog) calendar() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stale {
		return c.days
	}
	seen := make(map[time.Time]struct{})
	for _, in := range c.instruments {
		for i := 0; i < in.Len(); i++ {
			seen[in.At(i).Date] = struct{}{}
		}
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	c.days = days
	c.stale = false
	return c.days
}

// TradingDays returns the trading days in the closed interval
// [from, to], ascending. The result is a copy; callers may keep it.
func (c *Catalog) TradingDays(from, to time.Time) []time.Time {
	days := c.calendar()
	lo, hi := core.Day(from), core.Day(to)
	start := sort.Search(len(days), func(i int) bool { return !days[i].Before(lo) })
	end := sort.Search(len(days), func(i int) bool { return days[i].After(hi) })
	if start >= end {
		return nil
	}
	out := make([]time.Time, end-start)
	copy(out, days[start:end])
	return out
}

// TradingDaysAgo returns the date n trading days in the past from
// today, counting strictly backwards: n=1 is the most recent trading
// day before today. When today itself is not a trading day, counting
// starts from the most recent trading day before it. Fails with
// ErrOutOfRange when fewer than n trading days exist before today, or
// when n < 1.
func (c *Catalog) TradingDaysAgo(today time.Time, n int) (time.Time, error) {
	if n < 1 {
		return time.Time{}, core.WrapError(core.ErrOutOfRange, fmt.Errorf("n must be >= 1, got %d", n))
	}
	days := c.calendar()
	day := core.Day(today)
	// Index of the last trading day strictly before today.
	before := sort.Search(len(days), func(i int) bool { return !days[i].Before(day) }) - 1
	i := before - (n - 1)
	if before < 0 || i < 0 {
		return time.Time{}, core.WrapError(core.ErrOutOfRange,
			fmt.Errorf("%d trading days before %s, only %d exist", n, day.Format("2006-01-02"), before+1))
	}
	return days[i], nil
}
