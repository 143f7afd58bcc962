// Package broker holds the position and order bookkeeping model: the
// Order a strategy recommends, the Share holdings a portfolio carries,
// and the fee schedule applied on fills.
package broker

import (
	"fmt"
	"math"

	"github.com/osloquant/fjord/internal/core"
)

// Action represents the direction of an order.
type Action string

const (
	// ActionBuy opens or increases a position.
	ActionBuy Action = "buy"
	// ActionSell closes or decreases a position.
	ActionSell Action = "sell"
)

// Order is a single-day trade recommendation issued by a strategy.
// The simulator fills it against historical prices; Fill is a one-way
// transition and the filled-state fields are all set together or not
// at all.
type Order struct {
	Ticker   string
	Action   Action
	Quantity int64   // positive share count
	Limit    float64 // limit price, NaN for market orders

	filled      bool
	filledPrice float64
	brokerage   float64
	cost        float64
	total       float64
}

// NewMarketOrder creates an order to be filled at market price.
func NewMarketOrder(ticker string, action Action, quantity int64) *Order {
	return &Order{Ticker: ticker, Action: action, Quantity: quantity, Limit: math.NaN()}
}

// NewLimitOrder creates an order with a limit price.
func NewLimitOrder(ticker string, action Action, quantity int64, limit float64) *Order {
	return &Order{Ticker: ticker, Action: action, Quantity: quantity, Limit: limit}
}

// IsMarket reports whether the order has no limit price.
func (o *Order) IsMarket() bool { return math.IsNaN(o.Limit) }

// Filled reports whether the order has been filled.
func (o *Order) Filled() bool { return o.filled }

// FilledPrice returns the matched price. Zero until filled.
func (o *Order) FilledPrice() float64 { return o.filledPrice }

// Brokerage returns the fee charged on the fill. Zero until filled.
func (o *Order) Brokerage() float64 { return o.brokerage }

// Cost returns quantity times filled price. Zero until filled.
func (o *Order) Cost() float64 { return o.cost }

// Total returns cost plus brokerage. Zero until filled.
func (o *Order) Total() float64 { return o.total }

// Fill settles the order at price, charging fees from schedule.
// Typically called by the simulator. Filling an already-filled order
// is a programming error and fails with ErrAlreadyFilled.
func (o *Order) Fill(price float64, schedule Brokerage) error {
	if o.filled {
		return core.WrapError(core.ErrAlreadyFilled, fmt.Errorf("%s", o))
	}
	o.filledPrice = price
	o.filled = true
	o.brokerage = schedule.Calculate(o)
	o.cost = float64(o.Quantity) * o.filledPrice
	o.total = o.cost + o.brokerage
	return nil
}

// String renders the order for reports. Monetary amounts are rounded
// to 2 decimals for display only; full precision is retained.
func (o *Order) String() string {
	s := fmt.Sprintf("%s %d %s", o.Action, o.Quantity, o.Ticker)
	if o.IsMarket() {
		s += ", market price"
	} else {
		s += fmt.Sprintf(", limit: %.2f", o.Limit)
	}
	if o.filled {
		s += fmt.Sprintf(", filled: %.2f, cost: %.2f, brokerage: %.2f, total: %.2f",
			o.filledPrice, o.cost, o.brokerage, o.total)
	} else {
		s += ", open"
	}
	return s
}
