package sim

import (
	"math"
)

// CalculateStats computes performance statistics from the daily equity
// curve.
func CalculateStats(equity []EquityPoint) Stats {
	if len(equity) == 0 {
		return Stats{}
	}

	stats := Stats{TradingDays: len(equity)}

	first, last := equity[0].Value, equity[len(equity)-1].Value
	if first != 0 {
		stats.TotalReturn = (last - first) / first * 100
	}
	stats.MaxDrawdown = calculateMaxDrawdown(equity) * 100
	stats.SharpeRatio = calculateSharpeRatio(dailyReturns(equity))
	return stats
}

func dailyReturns(equity []EquityPoint) []float64 {
	var returns []float64
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Value-prev)/prev)
	}
	return returns
}

// calculateMaxDrawdown finds the largest peak-to-trough decline
func calculateMaxDrawdown(equity []EquityPoint) float64 {
	var maxDD float64
	var peak float64

	for _, p := range equity {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			dd := (peak - p.Value) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// calculateSharpeRatio computes risk-adjusted return from daily
// returns. Assumes risk-free rate of 0 for simplicity.
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))

	if stdDev == 0 {
		return 0
	}

	// Annualize (assuming ~252 trading days)
	annualizedReturn := mean * 252
	annualizedStdDev := stdDev * math.Sqrt(252)

	return annualizedReturn / annualizedStdDev
}
