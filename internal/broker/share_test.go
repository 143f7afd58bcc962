package broker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/core"
	"github.com/osloquant/fjord/internal/market"
)

func day(y int, m time.Month, d int) time.Time { return core.Date(y, m, d) }

func rec(y int, m time.Month, d int, close float64) core.Record {
	return core.Record{Date: day(y, m, d), Open: close, High: close, Low: close, Close: close, Value: close}
}

// quotes builds a single-ACME catalog priced at 25.0 from 2020-01-02.
func quotes(t *testing.T) *market.Catalog {
	t.Helper()
	c := market.NewCatalog()
	in, err := market.NewInstrument("ACME", "", []core.Record{rec(2020, time.January, 2, 25.0)})
	require.NoError(t, err)
	require.NoError(t, c.Add(in))
	return c
}

func TestShare_Value_Long(t *testing.T) {
	s := broker.Share{Ticker: "ACME", Quantity: 10, Price: 20}

	v, err := s.Value(quotes(t), day(2020, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, 250.0, v)
}

func TestShare_Value_Short(t *testing.T) {
	s := broker.Share{Ticker: "ACME", Quantity: -5, Price: 20}

	v, err := s.Value(quotes(t), day(2020, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, -125.0, v)
}

func TestShare_Value_NoDataYet(t *testing.T) {
	s := broker.Share{Ticker: "ACME", Quantity: 10}

	_, err := s.Value(quotes(t), day(2020, time.January, 1))
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestShare_Value_UnknownTicker(t *testing.T) {
	s := broker.Share{Ticker: "NOPE", Quantity: 10}

	_, err := s.Value(quotes(t), day(2020, time.January, 5))
	assert.ErrorIs(t, err, core.ErrUnknownTicker)
}
