// Package strategy defines the contract concrete trading strategies
// implement and the per-day execution state the framework drives them
// through. A strategy only ever sees market data through point-in-time
// views scoped to the simulated day, which is what keeps look-ahead
// bias out of a backtest.
package strategy

import (
	"time"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/market"
)

// MarketData is the full-history market data provider a run consumes.
// market.Catalog satisfies it. The run never writes to it, and
// strategies never touch it directly.
type MarketData interface {
	Instrument(ticker string) (*market.Instrument, error)
	Tickers() []string
	TradingDays(from, to time.Time) []time.Time
	TradingDaysAgo(today time.Time, n int) (time.Time, error)
}

// Strategy is the contract a concrete trading strategy implements.
// Execute is called once per trading day, conceptually before the
// market opens: the context exposes data up to and including the most
// recent trading day resolved for today, never later. It returns the
// day's order recommendations in the sequence they should be filled.
//
// A strategy may treat ErrNotYetListed as "skip this ticker today";
// other data errors (ErrNoData, ErrMissingPrice) should propagate out
// of Execute, where the framework aborts the run rather than trade on
// a gap.
type Strategy interface {
	Name() string
	Execute(ctx *Context) ([]*broker.Order, error)
}
