package strategy

import (
	"fmt"
	"time"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/core"
	"github.com/osloquant/fjord/internal/market"
)

// Run carries one strategy through one simulation: the horizon, the
// current day, and the money and portfolio the simulator hands back
// after applying fills. Constructing a Run is the only way to execute
// a strategy, so every strategy starts from a fully initialized state.
// A Run owns its state exclusively; parallel backtests each need their
// own.
type Run struct {
	strat Strategy
	data  MarketData

	money     float64
	portfolio broker.Portfolio
	today     time.Time
	from, to  time.Time

	started bool
}

// NewRun initializes a run over the closed horizon [from, to] with the
// opening money and portfolio.
func NewRun(strat Strategy, data MarketData, money float64, portfolio broker.Portfolio, from, to time.Time) (*Run, error) {
	if strat == nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("nil strategy"))
	}
	if data == nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("nil market data"))
	}
	f, t := core.Day(from), core.Day(to)
	if t.Before(f) {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("horizon ends %s before it starts %s", t.Format("2006-01-02"), f.Format("2006-01-02")))
	}
	if portfolio == nil {
		portfolio = make(broker.Portfolio)
	}
	return &Run{
		strat:     strat,
		data:      data,
		money:     money,
		portfolio: portfolio,
		today:     f,
		from:      f,
		to:        t,
	}, nil
}

// Strategy returns the strategy under execution.
func (r *Run) Strategy() Strategy { return r.strat }

// Today returns the current simulated day.
func (r *Run) Today() time.Time { return r.today }

// Execute advances the run to today and invokes the strategy with the
// updated portfolio and money. Days must fall inside the horizon and
// advance strictly across calls; a call after the horizon's last day
// fails with ErrHorizonExceeded.
func (r *Run) Execute(today time.Time, portfolio broker.Portfolio, money float64) ([]*broker.Order, error) {
	day := core.Day(today)
	if day.Before(r.from) || day.After(r.to) {
		return nil, core.WrapError(core.ErrHorizonExceeded,
			fmt.Errorf("%s outside [%s, %s]", day.Format("2006-01-02"),
				r.from.Format("2006-01-02"), r.to.Format("2006-01-02")))
	}
	if r.started && !day.After(r.today) {
		return nil, core.WrapError(core.ErrNotMonotonic,
			fmt.Errorf("%s does not advance past %s", day.Format("2006-01-02"), r.today.Format("2006-01-02")))
	}
	r.started = true
	r.today = day
	r.portfolio = portfolio
	r.money = money

	return r.strat.Execute(&Context{run: r})
}

// Context is the strategy's window onto the run for a single day. All
// instrument access goes through point-in-time views resolved at
// Today, so nothing dated later is reachable.
type Context struct {
	run *Run
}

// Today returns the present simulated day.
func (c *Context) Today() time.Time { return c.run.today }

// From returns the first day of the simulation horizon.
func (c *Context) From() time.Time { return c.run.from }

// To returns the last day of the simulation horizon.
func (c *Context) To() time.Time { return c.run.to }

// Money returns the liquid funds available today.
func (c *Context) Money() float64 { return c.run.money }

// Portfolio returns the current holdings.
func (c *Context) Portfolio() broker.Portfolio { return c.run.portfolio }

// Position returns the holding for ticker, if any.
func (c *Context) Position(ticker string) (broker.Share, bool) {
	s, ok := c.run.portfolio[ticker]
	return s, ok
}

// Instrument returns the point-in-time view of ticker as of today.
// Fails with ErrNotYetListed (carrying the instrument's known date
// range) when the ticker has no data yet, and ErrUnknownTicker when it
// was never ingested.
func (c *Context) Instrument(ticker string) (*market.Instrument, error) {
	in, err := c.run.data.Instrument(ticker)
	if err != nil {
		return nil, err
	}
	return in.ViewAt(c.run.today)
}

// Instruments returns point-in-time views for every ticker that exists
// today, in alphabetical order. Tickers with no data yet are excluded,
// not reported: each candidate is existence-checked before the view is
// derived.
func (c *Context) Instruments() ([]*market.Instrument, error) {
	var views []*market.Instrument
	for _, ticker := range c.run.data.Tickers() {
		in, err := c.run.data.Instrument(ticker)
		if err != nil {
			return nil, err
		}
		if !in.ExistedAt(c.run.today) {
			continue
		}
		view, err := in.ViewAt(c.run.today)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// TradingDays returns the trading days in the closed interval
// [from, to].
func (c *Context) TradingDays(from, to time.Time) []time.Time {
	return c.run.data.TradingDays(from, to)
}

// TradingDaysAgo returns the date n trading days before today. Fails
// with ErrOutOfRange when the calendar is too short.
func (c *Context) TradingDaysAgo(n int) (time.Time, error) {
	return c.run.data.TradingDaysAgo(c.run.today, n)
}
