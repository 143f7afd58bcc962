// Package sim drives a strategy through its horizon one trading day at
// a time: execute before the open, fill the returned orders against
// historical prices, book the fills, move on. The core data layer
// guarantees the strategy never sees past the simulated day; the
// simulator guarantees money and positions stay consistent as fills
// are applied.
package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/core"
	"github.com/osloquant/fjord/internal/market"
	"github.com/osloquant/fjord/internal/metrics"
	"github.com/osloquant/fjord/internal/strategy"
)

// Options configure one run.
type Options struct {
	From        time.Time
	To          time.Time
	InitialCash float64
	Portfolio   broker.Portfolio // opening holdings, may be nil
}

// Simulator owns the collaborators shared across runs: the read-only
// catalog, the fee schedule, logging and metrics. Per-run state lives
// in the strategy.Run it creates, so independent runs can use one
// Simulator from separate goroutines.
type Simulator struct {
	catalog *market.Catalog
	fees    broker.Brokerage
	logger  *zap.Logger
	metrics *metrics.Registry
}

// New creates a Simulator. logger and registry may be nil.
func New(catalog *market.Catalog, fees broker.Brokerage, logger *zap.Logger, registry *metrics.Registry) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{catalog: catalog, fees: fees, logger: logger, metrics: registry}
}

// Run backtests strat over the options' horizon and returns the
// result. The context is checked between days; cancellation aborts the
// run with ctx.Err().
func (s *Simulator) Run(ctx context.Context, strat strategy.Strategy, opts Options) (*Result, error) {
	started := time.Now()
	result, err := s.run(ctx, strat, opts)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordRun(strat.Name(), status, time.Since(started).Seconds())
	}
	return result, err
}

func (s *Simulator) run(ctx context.Context, strat strategy.Strategy, opts Options) (*Result, error) {
	portfolio := opts.Portfolio.Clone() // runs never share mutable holdings
	money := opts.InitialCash

	run, err := strategy.NewRun(strat, s.catalog, money, portfolio, opts.From, opts.To)
	if err != nil {
		return nil, err
	}

	days := s.catalog.TradingDays(opts.From, opts.To)
	if len(days) == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("no trading days in [%s, %s]",
				core.Day(opts.From).Format("2006-01-02"), core.Day(opts.To).Format("2006-01-02")))
	}

	result := &Result{
		RunID:    uuid.NewString(),
		Strategy: strat.Name(),
		From:     days[0],
		To:       days[len(days)-1],
	}
	log := s.logger.With(zap.String("run_id", result.RunID), zap.String("strategy", strat.Name()))
	log.Info("backtest starting",
		zap.Time("from", result.From),
		zap.Time("to", result.To),
		zap.Float64("initial_cash", money),
		zap.Int("trading_days", len(days)))

	for _, day := range days {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		orders, err := run.Execute(day, portfolio, money)
		if err != nil {
			log.Error("strategy failed", zap.Time("day", day), zap.Error(err))
			return nil, err
		}

		row := LedgerRow{Day: day, Orders: len(orders)}
		for _, order := range orders {
			filled, err := s.fill(order, day, &money)
			if err != nil {
				return nil, err
			}
			result.Orders = append(result.Orders, order)
			result.Stats.OrdersIssued++
			outcome := "open"
			if filled {
				outcome = "filled"
				row.Fills++
				row.Brokerage += order.Brokerage()
				result.Stats.OrdersFilled++
				result.Stats.BrokeragePaid += order.Brokerage()
				if err := portfolio.Apply(order); err != nil {
					return nil, err
				}
				log.Debug("order filled", zap.Time("day", day), zap.Stringer("order", order))
			} else {
				log.Debug("order not filled", zap.Time("day", day), zap.Stringer("order", order))
			}
			if s.metrics != nil {
				s.metrics.RecordOrder(string(order.Action), outcome)
				if filled {
					s.metrics.RecordBrokerage(order.Brokerage())
				}
			}
		}

		holdings, err := portfolio.Value(s.catalog, day)
		if err != nil {
			return nil, err
		}
		row.Cash = money
		row.Holdings = holdings
		row.Equity = money + holdings
		result.Ledger = append(result.Ledger, row)
		result.Equity = append(result.Equity, EquityPoint{Day: day, Value: row.Equity})
		if s.metrics != nil {
			s.metrics.RecordDay()
		}
	}

	result.FinalCash = money
	result.Portfolio = portfolio
	counts := result.Stats
	result.Stats = CalculateStats(result.Equity)
	result.Stats.OrdersIssued = counts.OrdersIssued
	result.Stats.OrdersFilled = counts.OrdersFilled
	result.Stats.BrokeragePaid = counts.BrokeragePaid

	log.Info("backtest finished",
		zap.Float64("final_equity", result.Equity[len(result.Equity)-1].Value),
		zap.Float64("total_return_pct", result.Stats.TotalReturn),
		zap.Int("orders_filled", result.Stats.OrdersFilled))
	return result, nil
}

// fill matches one order against day's prices and, on a fill, settles
// it and adjusts cash. Market orders fill at the day's open when the
// instrument traded that day, otherwise at the last known close. Buy
// limits fill when the day's low reaches the limit, sell limits when
// the high does; the matched price is the better of open and limit.
// Buys the cash cannot cover are left open. Returns whether the order
// filled.
func (s *Simulator) fill(order *broker.Order, day time.Time, money *float64) (bool, error) {
	in, err := s.catalog.Instrument(order.Ticker)
	if err != nil {
		return false, err
	}
	rec, err := in.DayOrLastBefore(day)
	if err != nil {
		return false, err
	}
	tradedToday := rec.Date.Equal(core.Day(day))

	var price float64
	switch {
	case order.IsMarket():
		if tradedToday && !math.IsNaN(rec.Open) {
			price = rec.Open
		} else {
			price, err = rec.Price()
			if err != nil {
				return false, err
			}
		}
	case order.Action == broker.ActionBuy:
		if !tradedToday || math.IsNaN(rec.Low) || rec.Low > order.Limit {
			return false, nil
		}
		price = order.Limit
		if !math.IsNaN(rec.Open) && rec.Open < price {
			price = rec.Open
		}
	default: // sell limit
		if !tradedToday || math.IsNaN(rec.High) || rec.High < order.Limit {
			return false, nil
		}
		price = order.Limit
		if !math.IsNaN(rec.Open) && rec.Open > price {
			price = rec.Open
		}
	}

	if order.Action == broker.ActionBuy {
		// Probe the settled total on a copy so an unaffordable order
		// stays unfilled.
		probe := *order
		if err := probe.Fill(price, s.fees); err != nil {
			return false, err
		}
		if probe.Total() > *money {
			s.logger.Warn("insufficient funds",
				zap.Stringer("order", order),
				zap.Float64("total", probe.Total()),
				zap.Float64("cash", *money))
			return false, nil
		}
	}

	if err := order.Fill(price, s.fees); err != nil {
		return false, err
	}
	if order.Action == broker.ActionBuy {
		*money -= order.Total()
	} else {
		*money += order.Cost() - order.Brokerage()
	}
	return true, nil
}
