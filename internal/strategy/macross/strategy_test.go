package macross_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/core"
	"github.com/osloquant/fjord/internal/market"
	"github.com/osloquant/fjord/internal/sim"
	"github.com/osloquant/fjord/internal/strategy/macross"
)

// crossCatalog holds a close series built so a 2/3 crossover fires a
// golden cross on Jan 7 and a death cross on Jan 9.
func crossCatalog(t *testing.T) *market.Catalog {
	t.Helper()

	days := []time.Time{
		core.Date(2020, time.January, 2),
		core.Date(2020, time.January, 3),
		core.Date(2020, time.January, 6),
		core.Date(2020, time.January, 7),
		core.Date(2020, time.January, 8),
		core.Date(2020, time.January, 9),
	}
	closes := []float64{10, 9, 8, 12, 12, 5}

	records := make([]core.Record, len(days))
	for i, d := range days {
		c := closes[i]
		records[i] = core.Record{Date: d, Open: c, High: c, Low: c, Close: c, Value: c}
	}

	in, err := market.NewInstrument("ACME", "", records)
	require.NoError(t, err)

	c := market.NewCatalog()
	require.NoError(t, c.Add(in))
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := macross.New([]string{"ACME"}, 0, 3, 0.5)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)

	_, err = macross.New([]string{"ACME"}, 3, 3, 0.5)
	assert.ErrorIs(t, err, core.ErrConfigInvalid, "slow must exceed fast")

	_, err = macross.New([]string{"ACME"}, 2, 3, 0)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)

	_, err = macross.New([]string{"ACME"}, 2, 3, 1.5)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestName(t *testing.T) {
	strat, err := macross.New([]string{"ACME"}, 2, 3, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "macross_2_3", strat.Name())
}

func TestExecute_BuysCrossUpSellsCrossDown(t *testing.T) {
	strat, err := macross.New([]string{"ACME"}, 2, 3, 1.0)
	require.NoError(t, err)

	simulator := sim.New(crossCatalog(t), broker.FreeSchedule{}, zap.NewNop(), nil)
	result, err := simulator.Run(context.Background(), strat, sim.Options{
		From:        core.Date(2020, time.January, 2),
		To:          core.Date(2020, time.January, 9),
		InitialCash: 1200,
	})
	require.NoError(t, err)

	// Golden cross on the 7th (close jumps 8 -> 12) enters with the
	// whole stake; death cross on the 9th (drop to 5) exits it.
	require.Len(t, result.Orders, 2)

	buy := result.Orders[0]
	assert.Equal(t, broker.ActionBuy, buy.Action)
	assert.Equal(t, int64(100), buy.Quantity)
	require.True(t, buy.Filled())
	assert.Equal(t, 12.0, buy.FilledPrice())

	sell := result.Orders[1]
	assert.Equal(t, broker.ActionSell, sell.Action)
	assert.Equal(t, int64(100), sell.Quantity)
	require.True(t, sell.Filled())
	assert.Equal(t, 5.0, sell.FilledPrice())

	assert.NotContains(t, result.Portfolio, "ACME")
	assert.InDelta(t, 500.0, result.FinalCash, 1e-9)
}

func TestExecute_SkipsUnlistedTickers(t *testing.T) {
	strat, err := macross.New([]string{"ACME", "LATER"}, 2, 3, 0.5)
	require.NoError(t, err)

	catalog := crossCatalog(t)
	later, err := market.NewInstrument("LATER", "", []core.Record{
		{Date: core.Date(2021, time.June, 1), Close: 1},
	})
	require.NoError(t, err)
	require.NoError(t, catalog.Add(later))

	simulator := sim.New(catalog, broker.FreeSchedule{}, zap.NewNop(), nil)
	result, err := simulator.Run(context.Background(), strat, sim.Options{
		From:        core.Date(2020, time.January, 2),
		To:          core.Date(2020, time.January, 9),
		InitialCash: 1000,
	})
	require.NoError(t, err)

	for _, o := range result.Orders {
		assert.NotEqual(t, "LATER", o.Ticker)
	}
}

func TestExecute_SkipsEntryOnZeroQuote(t *testing.T) {
	// Zero is a legal quote but no entry can be sized off it. This
	// series golden-crosses on the 7th while closing at 0.
	days := []time.Time{
		core.Date(2020, time.January, 2),
		core.Date(2020, time.January, 3),
		core.Date(2020, time.January, 6),
		core.Date(2020, time.January, 7),
	}
	closes := []float64{2, 1, 3, 0}

	records := make([]core.Record, len(days))
	for i, d := range days {
		c := closes[i]
		records[i] = core.Record{Date: d, Open: c, High: c, Low: c, Close: c, Value: c}
	}
	in, err := market.NewInstrument("ACME", "", records)
	require.NoError(t, err)
	catalog := market.NewCatalog()
	require.NoError(t, catalog.Add(in))

	strat, err := macross.New([]string{"ACME"}, 2, 3, 1.0)
	require.NoError(t, err)

	simulator := sim.New(catalog, broker.FreeSchedule{}, zap.NewNop(), nil)
	result, err := simulator.Run(context.Background(), strat, sim.Options{
		From:        core.Date(2020, time.January, 2),
		To:          core.Date(2020, time.January, 7),
		InitialCash: 1000,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Orders)
}

func TestExecute_NoOrdersWithoutHistory(t *testing.T) {
	strat, err := macross.New([]string{"ACME"}, 2, 3, 0.5)
	require.NoError(t, err)

	// Only three bars exist through the 6th, one short of what the
	// slow average needs for two points.
	simulator := sim.New(crossCatalog(t), broker.FreeSchedule{}, zap.NewNop(), nil)
	result, err := simulator.Run(context.Background(), strat, sim.Options{
		From:        core.Date(2020, time.January, 2),
		To:          core.Date(2020, time.January, 6),
		InitialCash: 1000,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Orders)
}
