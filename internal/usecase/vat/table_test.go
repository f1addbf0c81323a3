package vat

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finnishRules(t *testing.T) []Rule {
	t.Helper()
	d := func(s string) *civil.Date {
		day, err := civil.ParseDate(s)
		require.NoError(t, err)
		return &day
	}
	return []Rule{
		{From: nil, Rate: decimal.NewFromFloat(0.24)},
		{From: d("2022-12-01"), Rate: decimal.NewFromFloat(0.10)},
		{From: d("2023-05-01"), Rate: decimal.NewFromFloat(0.24)},
		{From: d("2024-09-01"), Rate: decimal.NewFromFloat(0.255)},
	}
}

func TestRateFor_BoundarySecond(t *testing.T) {
	// The rate changes exactly at local midnight: one second before the
	// boundary the old rate applies, at the boundary the new one.
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	table, err := NewTable(finnishRules(t))
	require.NoError(t, err)

	before := time.Date(2024, 8, 31, 23, 59, 59, 0, helsinki)
	at := time.Date(2024, 9, 1, 0, 0, 0, 0, helsinki)

	assert.True(t, table.RateFor(before, helsinki).Equal(decimal.NewFromFloat(0.24)),
		"one second before the boundary should keep the old rate")
	assert.True(t, table.RateFor(at, helsinki).Equal(decimal.NewFromFloat(0.255)),
		"the boundary instant should already use the new rate")
}

func TestRateFor_LocalDayDecides(t *testing.T) {
	// 2024-08-31T23:30Z is still August 31 in UTC but already September 1
	// in Helsinki (UTC+3); the local day decides the rate.
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	table, err := NewTable(finnishRules(t))
	require.NoError(t, err)

	instant := time.Date(2024, 8, 31, 23, 30, 0, 0, time.UTC)
	assert.True(t, table.RateFor(instant, helsinki).Equal(decimal.NewFromFloat(0.255)),
		"the Helsinki calendar day, not the UTC one, should pick the rate")
}

func TestRateFor_FutureInstantUsesLastRange(t *testing.T) {
	table, err := NewTable(finnishRules(t))
	require.NoError(t, err)

	future := time.Date(2042, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, table.RateFor(future, time.UTC).Equal(decimal.NewFromFloat(0.255)))
}

func TestRateFor_TemporaryReduction(t *testing.T) {
	table, err := NewTable(finnishRules(t))
	require.NoError(t, err)

	during := time.Date(2023, 2, 15, 12, 0, 0, 0, time.UTC)
	assert.True(t, table.RateFor(during, time.UTC).Equal(decimal.NewFromFloat(0.10)),
		"instants inside the temporary reduction window should get the reduced rate")
}

func TestNewTable_RejectsBadRuleOrder(t *testing.T) {
	d1, err := civil.ParseDate("2023-05-01")
	require.NoError(t, err)
	d2, err := civil.ParseDate("2022-12-01")
	require.NoError(t, err)

	_, err = NewTable([]Rule{
		{From: nil, Rate: decimal.NewFromFloat(0.24)},
		{From: &d1, Rate: decimal.NewFromFloat(0.10)},
		{From: &d2, Rate: decimal.NewFromFloat(0.24)},
	})
	assert.Error(t, err, "out-of-order rule dates must be rejected")
}

func TestNewTable_RequiresOpenEndedFirstRule(t *testing.T) {
	d1, err := civil.ParseDate("2022-12-01")
	require.NoError(t, err)

	_, err = NewTable([]Rule{{From: &d1, Rate: decimal.NewFromFloat(0.10)}})
	assert.Error(t, err)

	_, err = NewTable(nil)
	assert.Error(t, err)
}
