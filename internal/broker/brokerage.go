package broker

// Brokerage computes the fee charged for a filled order. It is a pure
// function of the order's action, quantity and filled price; the
// simulator injects one schedule per run so there is no process-wide
// fee state.
type Brokerage interface {
	Calculate(order *Order) float64
}

// CommissionSchedule is a discount-broker style schedule: a rate on
// traded value with a per-order minimum.
type CommissionSchedule struct {
	Minimum float64 // floor fee per order
	Rate    float64 // fraction of traded value, e.g. 0.0005
}

// Calculate implements Brokerage.
func (s CommissionSchedule) Calculate(order *Order) float64 {
	fee := s.Rate * float64(order.Quantity) * order.FilledPrice()
	if fee < s.Minimum {
		fee = s.Minimum
	}
	return fee
}

// FreeSchedule charges nothing. Useful for tests and for isolating
// strategy performance from fees.
type FreeSchedule struct{}

// Calculate implements Brokerage.
func (FreeSchedule) Calculate(*Order) float64 { return 0 }
