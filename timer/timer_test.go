package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var ran bool
	ts := New(50*time.Millisecond, func() { ran = true })
	require.True(t, ts.Running())
	time.Sleep(100 * time.Millisecond)
	require.True(t, ran)
}

func TestResetAfter(t *testing.T) {
	var ran bool
	ts := New(50*time.Millisecond, func() { ran = true })
	time.Sleep(20 * time.Millisecond)
	ts.ResetAfter(100 * time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	require.False(t, ran, "timer fired before the rearmed interval elapsed")
	time.Sleep(80 * time.Millisecond)
	require.True(t, ran, "timer never fired after being rearmed")
}

func TestStop(t *testing.T) {
	var ran bool
	ts := New(50*time.Millisecond, func() { ran = true })
	ts.Stop()
	require.False(t, ts.Running())
	time.Sleep(100 * time.Millisecond)
	require.False(t, ran)
}

func TestRunning(t *testing.T) {
	ts := New(50*time.Millisecond, func() {})
	require.True(t, ts.Running())
	ts.Stop()
	require.False(t, ts.Running())
}

func TestJitterWithinBounds(t *testing.T) {
	base := 5 * time.Second
	for i := 0; i < 200; i++ {
		d := Jitter(base, 0.8, 1.2)
		require.GreaterOrEqual(t, d, time.Duration(float64(base)*0.8))
		require.LessOrEqual(t, d, time.Duration(float64(base)*1.2))
	}
}
