package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadBudgets(t *testing.T) {
	_, err := New(0, 10, true)
	require.Error(t, err)

	_, err = New(10, -1, true)
	require.Error(t, err)

	lim, err := New(1, 1, true)
	require.NoError(t, err)
	assert.True(t, lim.Enabled())
}

func TestBudgetEnforcement(t *testing.T) {
	lim, err := New(3, 2, true)
	require.NoError(t, err)

	assert.Equal(t, 3, lim.RemainingBudget(KindConnection))
	assert.Equal(t, 2, lim.RemainingBudget(KindMessage))
	assert.False(t, lim.IsExhausted(KindConnection))

	lim.RecordAction(KindConnection)
	lim.RecordAction(KindConnection)
	assert.Equal(t, 1, lim.RemainingBudget(KindConnection))
	assert.False(t, lim.IsExhausted(KindConnection))

	lim.RecordAction(KindConnection)
	assert.Equal(t, 0, lim.RemainingBudget(KindConnection))
	assert.True(t, lim.IsExhausted(KindConnection))

	// Kinds are independent.
	assert.Equal(t, 2, lim.RemainingBudget(KindMessage))
	assert.False(t, lim.IsExhausted(KindMessage))
}

func TestRemainingBudgetFloorsAtZero(t *testing.T) {
	lim, err := New(1, 1, true)
	require.NoError(t, err)

	lim.RecordAction(KindMessage)
	lim.RecordAction(KindMessage)
	assert.Equal(t, 0, lim.RemainingBudget(KindMessage))
}

func TestDisabledLimiterNeverExhausts(t *testing.T) {
	lim, err := New(1, 1, false)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		lim.RecordAction(KindConnection)
	}
	assert.False(t, lim.IsExhausted(KindConnection))
	assert.False(t, lim.Enabled())
}

func TestDayBoundaryResetsCounters(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 50, 0, 0, time.UTC)
	lim, err := New(2, 2, true)
	require.NoError(t, err)
	lim.WithClock(func() time.Time { return now })

	lim.RecordAction(KindConnection)
	lim.RecordAction(KindConnection)
	require.True(t, lim.IsExhausted(KindConnection))

	// Cross midnight: counters roll without any explicit reset call.
	now = time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC)
	assert.False(t, lim.IsExhausted(KindConnection))
	assert.Equal(t, 2, lim.RemainingBudget(KindConnection))
}

func TestSeedLoadsPriorActions(t *testing.T) {
	lim, err := New(5, 5, true)
	require.NoError(t, err)

	lim.Seed(KindConnection, 4)
	assert.Equal(t, 1, lim.RemainingBudget(KindConnection))

	lim.Seed(KindMessage, -3)
	assert.Equal(t, 5, lim.RemainingBudget(KindMessage))
}

func TestReset(t *testing.T) {
	lim, err := New(2, 2, true)
	require.NoError(t, err)

	lim.RecordAction(KindConnection)
	lim.RecordAction(KindConnection)
	require.True(t, lim.IsExhausted(KindConnection))

	lim.Reset()
	assert.Equal(t, 2, lim.RemainingBudget(KindConnection))
}
