// Package buyhold implements an equal-weight buy-and-hold baseline.
package buyhold

import (
	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/market"
	"github.com/osloquant/fjord/internal/strategy"
)

// BuyHold buys every instrument it wants as soon as it is listed,
// splitting the available money equally across the names still
// missing from the portfolio, and never sells. A buy that does not
// fill (insufficient cash under the fee schedule, say) is retried the
// next day against the money actually left, so the strategy converges
// on holding everything it can afford rather than silently stopping
// at a partial portfolio.
type BuyHold struct {
	tickers []string
}

// New creates the strategy. tickers may be nil to mean "everything
// listed".
func New(tickers []string) *BuyHold {
	return &BuyHold{tickers: tickers}
}

func (b *BuyHold) Name() string { return "buyhold" }

// Execute buys the wanted names not yet held, then holds.
func (b *BuyHold) Execute(ctx *strategy.Context) ([]*broker.Order, error) {
	views, err := ctx.Instruments()
	if err != nil {
		return nil, err
	}
	if len(b.tickers) > 0 {
		want := make(map[string]bool, len(b.tickers))
		for _, t := range b.tickers {
			want[t] = true
		}
		kept := views[:0]
		for _, v := range views {
			if want[v.Ticker()] {
				kept = append(kept, v)
			}
		}
		views = kept
	}

	var missing []*market.Instrument
	for _, v := range views {
		if _, held := ctx.Position(v.Ticker()); !held {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return nil, nil // fully invested, or nothing listed yet
	}

	budget := ctx.Money() / float64(len(missing))
	var orders []*broker.Order
	for _, view := range missing {
		price, err := view.PriceAt(ctx.Today())
		if err != nil {
			return nil, err
		}
		if price <= 0 {
			continue
		}
		qty := int64(budget / price)
		if qty > 0 {
			orders = append(orders, broker.NewMarketOrder(view.Ticker(), broker.ActionBuy, qty))
		}
	}
	return orders, nil
}
