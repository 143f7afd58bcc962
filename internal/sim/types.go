package sim

import (
	"time"

	"github.com/osloquant/fjord/internal/broker"
)

// Result holds the complete output of one backtest run.
type Result struct {
	RunID     string
	Strategy  string
	From      time.Time
	To        time.Time
	Orders    []*broker.Order
	Ledger    []LedgerRow
	Equity    []EquityPoint
	FinalCash float64
	Portfolio broker.Portfolio
	Stats     Stats
}

// LedgerRow records what happened on one simulated trading day. This
// is the primary artifact for "what happened" in a run.
type LedgerRow struct {
	Day       time.Time
	Orders    int
	Fills     int
	Brokerage float64
	Cash      float64
	Holdings  float64
	Equity    float64
}

// EquityPoint is one day's total account value.
type EquityPoint struct {
	Day   time.Time
	Value float64
}

// Stats holds performance statistics for a run.
type Stats struct {
	TradingDays   int
	OrdersIssued  int
	OrdersFilled  int
	BrokeragePaid float64
	TotalReturn   float64 // Net return percentage over the run
	MaxDrawdown   float64 // Largest peak-to-trough equity decline, percent
	SharpeRatio   float64 // Risk-adjusted daily return, annualized
}
