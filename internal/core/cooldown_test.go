package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCooldowns(t *testing.T) {
	c := NewMemoryCooldowns()
	clock := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return clock }
	cmd := &Command{Name: "daily", Cooldown: 5 * time.Second}
	ctx := context.Background()

	wait, err := c.CheckAndRecordUse(ctx, userID, cmd)
	require.NoError(t, err)
	assert.Zero(t, wait)

	clock = clock.Add(time.Second)
	wait, err = c.CheckAndRecordUse(ctx, userID, cmd)
	require.NoError(t, err)
	assert.InDelta(t, (4 * time.Second).Seconds(), wait.Seconds(), 0.001)

	// a rejected attempt does not push the window further out
	clock = clock.Add(4 * time.Second)
	wait, err = c.CheckAndRecordUse(ctx, userID, cmd)
	require.NoError(t, err)
	assert.Zero(t, wait)

	wait, err = c.CheckAndRecordUse(ctx, "other", cmd)
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestMemoryCooldownsIgnoresZeroCooldown(t *testing.T) {
	c := NewMemoryCooldowns()
	cmd := &Command{Name: "ping"}
	for range 3 {
		wait, err := c.CheckAndRecordUse(context.Background(), userID, cmd)
		require.NoError(t, err)
		assert.Zero(t, wait)
	}
	assert.Zero(t, c.Len())
}

func TestMemoryCooldownsSweep(t *testing.T) {
	c := NewMemoryCooldowns()
	clock := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return clock }
	short := &Command{Name: "short", Cooldown: time.Second}
	long := &Command{Name: "long", Cooldown: time.Hour}

	_, _ = c.CheckAndRecordUse(context.Background(), userID, short)
	_, _ = c.CheckAndRecordUse(context.Background(), userID, long)
	require.Equal(t, 2, c.Len())

	clock = clock.Add(2 * time.Second)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCooldownsSweeperStops(t *testing.T) {
	c := NewMemoryCooldowns()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
