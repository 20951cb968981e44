package redial

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestScheduleGrowsToCeiling ensures delays never shrink within a failure
// streak and settle exactly at the 15s ceiling.
func TestScheduleGrowsToCeiling(t *testing.T) {
	bo := New()
	require.Equal(t, time.Second, bo.NextBackOff())

	prev := time.Second
	for i := 0; i < 20; i++ {
		d := bo.NextBackOff()
		require.GreaterOrEqual(t, d, prev)
		require.LessOrEqual(t, d, 15*time.Second)
		prev = d
	}
	require.Equal(t, 15*time.Second, prev)
}

func TestScheduleSecondDelay(t *testing.T) {
	bo := New()
	bo.NextBackOff()
	second := bo.NextBackOff()
	require.InDelta(t, float64(1600*time.Millisecond), float64(second), float64(time.Millisecond))
}

// TestResetRestartsSchedule mirrors a successful connect mid-streak.
func TestResetRestartsSchedule(t *testing.T) {
	bo := New()
	for i := 0; i < 5; i++ {
		bo.NextBackOff()
	}
	bo.Reset()
	require.Equal(t, time.Second, bo.NextBackOff())
}

func TestSleepHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, Sleep(ctx, time.Minute))
	require.True(t, Sleep(context.Background(), time.Millisecond))
}
