// Package macross implements a moving average crossover strategy over
// point-in-time daily closes.
package macross

import (
	"errors"
	"fmt"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/core"
	"github.com/osloquant/fjord/internal/indicator"
	"github.com/osloquant/fjord/internal/strategy"
)

// MACross buys a ticker on a golden cross and sells the whole position
// on a death cross. Position size is a fraction of the liquid funds at
// the time of the signal.
type MACross struct {
	tickers    []string
	fastPeriod int
	slowPeriod int
	sizePct    float64 // fraction of money per entry, e.g. 0.25
}

// New creates the strategy for the given tickers and MA periods.
func New(tickers []string, fastPeriod, slowPeriod int, sizePct float64) (*MACross, error) {
	if fastPeriod < 1 || slowPeriod <= fastPeriod {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("ma periods fast=%d slow=%d", fastPeriod, slowPeriod))
	}
	if sizePct <= 0 || sizePct > 1 {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("size_pct %f", sizePct))
	}
	return &MACross{tickers: tickers, fastPeriod: fastPeriod, slowPeriod: slowPeriod, sizePct: sizePct}, nil
}

func (m *MACross) Name() string {
	return fmt.Sprintf("macross_%d_%d", m.fastPeriod, m.slowPeriod)
}

// Execute scans the configured tickers for crossovers as of today.
// Tickers that are not listed yet are skipped; every other data error
// aborts the day.
func (m *MACross) Execute(ctx *strategy.Context) ([]*broker.Order, error) {
	var orders []*broker.Order

	for _, ticker := range m.tickers {
		view, err := ctx.Instrument(ticker)
		if errors.Is(err, core.ErrNotYetListed) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if view.Len() < m.slowPeriod+1 {
			continue // not enough history for both MA points
		}

		closes := view.Closes()
		fast := indicator.SMA(closes, m.fastPeriod)
		slow := indicator.SMA(closes, m.slowPeriod)

		held, holding := ctx.Position(ticker)
		switch indicator.Cross(fast, slow) {
		case 1:
			if holding {
				continue
			}
			last, err := view.PriceAt(ctx.Today())
			if err != nil {
				return nil, err
			}
			if last <= 0 {
				continue // cannot size an entry off a zero quote
			}
			qty := int64(ctx.Money() * m.sizePct / last)
			if qty > 0 {
				orders = append(orders, broker.NewMarketOrder(ticker, broker.ActionBuy, qty))
			}
		case -1:
			if holding && held.Quantity > 0 {
				orders = append(orders, broker.NewMarketOrder(ticker, broker.ActionSell, held.Quantity))
			}
		}
	}

	return orders, nil
}
