package broker

import (
	"time"

	"github.com/osloquant/fjord/internal/market"
)

// Pricer resolves tickers to their historical series. market.Catalog
// satisfies it; tests substitute small fixtures.
type Pricer interface {
	Instrument(ticker string) (*market.Instrument, error)
}

// Share is a holding: a signed quantity of one ticker at a cost basis.
// Negative quantity is a short position. Valuation is computed on
// demand because it depends on the as-of date.
type Share struct {
	Ticker   string
	Quantity int64   // negative for short positions
	Price    float64 // cost basis per share
}

// Value returns the holding's monetary value as of date, using the
// point-in-time closing price (close if quoted, else value).
// Propagates ErrNoData when the instrument has no data at or before
// date.
func (s Share) Value(quotes Pricer, date time.Time) (float64, error) {
	in, err := quotes.Instrument(s.Ticker)
	if err != nil {
		return 0, err
	}
	price, err := in.PriceAt(date)
	if err != nil {
		return 0, err
	}
	return float64(s.Quantity) * price, nil
}
