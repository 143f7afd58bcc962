package broker

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Bookkeeping errors.
var (
	// ErrNotFilled indicates an unfilled order was applied.
	ErrNotFilled = errors.New("broker: order not filled")
	// ErrUnknownAction indicates an order with an unrecognized action.
	ErrUnknownAction = errors.New("broker: unknown order action")
)

// Portfolio maps tickers to share holdings. Keys are unique; a ticker
// holds at most one Share whose quantity and cost basis are updated as
// fills are applied.
type Portfolio map[string]Share

// Clone returns an independent copy. Runs must never share a mutable
// portfolio.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	for t, s := range p {
		out[t] = s
	}
	return out
}

// Tickers returns the held tickers in alphabetical order.
func (p Portfolio) Tickers() []string {
	out := make([]string, 0, len(p))
	for t := range p {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Value returns the portfolio's total value as of date.
func (p Portfolio) Value(quotes Pricer, date time.Time) (float64, error) {
	var total float64
	for _, s := range p {
		v, err := s.Value(quotes, date)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// Apply books a filled order into the portfolio. Buys average the cost
// basis over the combined quantity; sells reduce the position and drop
// it at zero. Applying an unfilled order fails.
func (p Portfolio) Apply(order *Order) error {
	if !order.Filled() {
		return fmt.Errorf("%w: %s", ErrNotFilled, order)
	}
	held := p[order.Ticker]
	switch order.Action {
	case ActionBuy:
		combined := held.Quantity + order.Quantity
		if combined != 0 {
			held.Price = (float64(held.Quantity)*held.Price + order.Cost()) / float64(combined)
		}
		held.Quantity = combined
	case ActionSell:
		held.Quantity -= order.Quantity
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, order.Action)
	}
	held.Ticker = order.Ticker
	if held.Quantity == 0 {
		delete(p, order.Ticker)
		return nil
	}
	p[order.Ticker] = held
	return nil
}
