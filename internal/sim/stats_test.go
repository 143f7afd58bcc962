package sim_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osloquant/fjord/internal/sim"
)

func curve(values ...float64) []sim.EquityPoint {
	points := make([]sim.EquityPoint, len(values))
	start := day(2020, time.January, 1)
	for i, v := range values {
		points[i] = sim.EquityPoint{Day: start.AddDate(0, 0, i), Value: v}
	}
	return points
}

func TestCalculateStats_Empty(t *testing.T) {
	assert.Equal(t, sim.Stats{}, sim.CalculateStats(nil))
}

func TestCalculateStats_TotalReturn(t *testing.T) {
	stats := sim.CalculateStats(curve(100, 110, 121))
	assert.Equal(t, 3, stats.TradingDays)
	assert.InDelta(t, 21.0, stats.TotalReturn, 1e-9)
}

func TestCalculateStats_FlatCurve(t *testing.T) {
	stats := sim.CalculateStats(curve(100, 100, 100, 100))
	assert.Zero(t, stats.TotalReturn)
	assert.Zero(t, stats.MaxDrawdown)
	assert.Zero(t, stats.SharpeRatio, "zero volatility yields no ratio")
}

func TestCalculateStats_MaxDrawdown(t *testing.T) {
	// Peak 120, trough 90: drawdown 25%. The later recovery to 130
	// does not shrink it.
	stats := sim.CalculateStats(curve(100, 120, 90, 130))
	assert.InDelta(t, 25.0, stats.MaxDrawdown, 1e-9)
}

func TestCalculateStats_SharpeSign(t *testing.T) {
	up := sim.CalculateStats(curve(100, 101, 103, 104, 107))
	down := sim.CalculateStats(curve(100, 99, 97, 96, 93))
	assert.Positive(t, up.SharpeRatio)
	assert.Negative(t, down.SharpeRatio)
}

func TestLedgerCSV(t *testing.T) {
	ledger := []sim.LedgerRow{
		{Day: day(2020, time.January, 2), Orders: 2, Fills: 1, Brokerage: 29, Cash: 8941, Holdings: 1030, Equity: 9971},
		{Day: day(2020, time.January, 3), Cash: 8941, Holdings: 1080, Equity: 10021},
	}

	out, err := sim.LedgerCSV(ledger)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "day,orders,fills,brokerage,cash,holdings,equity", lines[0])
	assert.Equal(t, "2020-01-02,2,1,29,8941,1030,9971", lines[1])
	assert.Equal(t, "2020-01-03,0,0,0,8941,1080,10021", lines[2])
}

func TestLedgerCSV_Empty(t *testing.T) {
	out, err := sim.LedgerCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "day,orders,fills,brokerage,cash,holdings,equity\n", string(out))
}
