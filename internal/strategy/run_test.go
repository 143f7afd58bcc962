package strategy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/core"
	"github.com/osloquant/fjord/internal/market"
	"github.com/osloquant/fjord/internal/strategy"
)

func day(y int, m time.Month, d int) time.Time { return core.Date(y, m, d) }

func rec(y int, m time.Month, d int, close float64) core.Record {
	return core.Record{Date: day(y, m, d), Open: close, High: close, Low: close, Close: close, Value: close}
}

// testCatalog: ACME trades 2020-01-02, -06, -08; NEWCO lists 2020-01-06.
func testCatalog(t *testing.T) *market.Catalog {
	t.Helper()
	c := market.NewCatalog()

	a, err := market.NewInstrument("ACME", "", []core.Record{
		rec(2020, time.January, 2, 10),
		rec(2020, time.January, 6, 12),
		rec(2020, time.January, 8, 11),
	})
	require.NoError(t, err)
	require.NoError(t, c.Add(a))

	n, err := market.NewInstrument("NEWCO", "", []core.Record{
		rec(2020, time.January, 6, 50),
	})
	require.NoError(t, err)
	require.NoError(t, c.Add(n))

	return c
}

// probe records the context of each execution for assertions.
type probe struct {
	lastCtx *strategy.Context
	orders  []*broker.Order
	err     error
	calls   int
}

func (p *probe) Name() string { return "probe" }

func (p *probe) Execute(ctx *strategy.Context) ([]*broker.Order, error) {
	p.calls++
	p.lastCtx = ctx
	return p.orders, p.err
}

func newRun(t *testing.T, strat strategy.Strategy) *strategy.Run {
	t.Helper()
	run, err := strategy.NewRun(strat, testCatalog(t), 1000, nil, day(2020, time.January, 2), day(2020, time.January, 8))
	require.NoError(t, err)
	return run
}

func TestNewRun_Validation(t *testing.T) {
	cat := testCatalog(t)

	_, err := strategy.NewRun(nil, cat, 0, nil, day(2020, time.January, 2), day(2020, time.January, 8))
	assert.ErrorIs(t, err, core.ErrConfigInvalid)

	_, err = strategy.NewRun(&probe{}, nil, 0, nil, day(2020, time.January, 2), day(2020, time.January, 8))
	assert.ErrorIs(t, err, core.ErrConfigInvalid)

	_, err = strategy.NewRun(&probe{}, cat, 0, nil, day(2020, time.January, 8), day(2020, time.January, 2))
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestRun_Execute_UpdatesState(t *testing.T) {
	p := &probe{}
	run := newRun(t, p)

	portfolio := broker.Portfolio{"ACME": {Ticker: "ACME", Quantity: 5, Price: 9}}
	_, err := run.Execute(day(2020, time.January, 6), portfolio, 500)
	require.NoError(t, err)

	require.NotNil(t, p.lastCtx)
	assert.Equal(t, day(2020, time.January, 6), p.lastCtx.Today())
	assert.Equal(t, 500.0, p.lastCtx.Money())
	assert.Equal(t, portfolio, p.lastCtx.Portfolio())
	assert.Equal(t, day(2020, time.January, 2), p.lastCtx.From())
	assert.Equal(t, day(2020, time.January, 8), p.lastCtx.To())

	held, ok := p.lastCtx.Position("ACME")
	require.True(t, ok)
	assert.Equal(t, int64(5), held.Quantity)
}

func TestRun_Execute_MustAdvance(t *testing.T) {
	run := newRun(t, &probe{})

	_, err := run.Execute(day(2020, time.January, 6), nil, 0)
	require.NoError(t, err)

	_, err = run.Execute(day(2020, time.January, 6), nil, 0)
	assert.ErrorIs(t, err, core.ErrNotMonotonic)

	_, err = run.Execute(day(2020, time.January, 3), nil, 0)
	assert.ErrorIs(t, err, core.ErrNotMonotonic)
}

func TestRun_Execute_OutsideHorizon(t *testing.T) {
	run := newRun(t, &probe{})

	_, err := run.Execute(day(2020, time.January, 1), nil, 0)
	assert.ErrorIs(t, err, core.ErrHorizonExceeded)

	_, err = run.Execute(day(2020, time.January, 9), nil, 0)
	assert.ErrorIs(t, err, core.ErrHorizonExceeded, "no calls after the horizon's last day")
}

func TestContext_Instrument_PointInTime(t *testing.T) {
	p := &probe{}
	run := newRun(t, p)

	_, err := run.Execute(day(2020, time.January, 5), nil, 0)
	require.NoError(t, err)

	view, err := p.lastCtx.Instrument("ACME")
	require.NoError(t, err)
	// Resolved index for the 5th is the record of the 2nd; nothing
	// later is visible even though the store has the 6th and 8th.
	assert.Equal(t, 1, view.Len())
	assert.Equal(t, day(2020, time.January, 2), view.LastDate())
}

func TestContext_Instrument_NotYetListed(t *testing.T) {
	p := &probe{}
	run := newRun(t, p)

	_, err := run.Execute(day(2020, time.January, 3), nil, 0)
	require.NoError(t, err)

	_, err = p.lastCtx.Instrument("NEWCO")
	assert.ErrorIs(t, err, core.ErrNotYetListed)
}

func TestContext_Instrument_Unknown(t *testing.T) {
	p := &probe{}
	run := newRun(t, p)

	_, err := run.Execute(day(2020, time.January, 3), nil, 0)
	require.NoError(t, err)

	_, err = p.lastCtx.Instrument("NOPE")
	assert.ErrorIs(t, err, core.ErrUnknownTicker)
}

func TestContext_Instruments_SkipsUnlisted(t *testing.T) {
	p := &probe{}
	run := newRun(t, p)

	_, err := run.Execute(day(2020, time.January, 3), nil, 0)
	require.NoError(t, err)

	views, err := p.lastCtx.Instruments()
	require.NoError(t, err)
	require.Len(t, views, 1, "NEWCO does not exist yet and is skipped silently")
	assert.Equal(t, "ACME", views[0].Ticker())
}

func TestContext_Instruments_AlphabeticalWhenAllExist(t *testing.T) {
	p := &probe{}
	run := newRun(t, p)

	_, err := run.Execute(day(2020, time.January, 7), nil, 0)
	require.NoError(t, err)

	views, err := p.lastCtx.Instruments()
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "ACME", views[0].Ticker())
	assert.Equal(t, "NEWCO", views[1].Ticker())
}

func TestContext_TradingDays(t *testing.T) {
	p := &probe{}
	run := newRun(t, p)

	_, err := run.Execute(day(2020, time.January, 8), nil, 0)
	require.NoError(t, err)

	days := p.lastCtx.TradingDays(day(2020, time.January, 1), day(2020, time.January, 7))
	assert.Equal(t, []time.Time{day(2020, time.January, 2), day(2020, time.January, 6)}, days)

	ago, err := p.lastCtx.TradingDaysAgo(1)
	require.NoError(t, err)
	assert.Equal(t, day(2020, time.January, 6), ago)

	_, err = p.lastCtx.TradingDaysAgo(10)
	assert.ErrorIs(t, err, core.ErrOutOfRange)
}

func TestRun_Execute_PropagatesStrategyError(t *testing.T) {
	p := &probe{err: core.WrapError(core.ErrNoData, nil)}
	run := newRun(t, p)

	_, err := run.Execute(day(2020, time.January, 6), nil, 0)
	assert.ErrorIs(t, err, core.ErrNoData)
}
