package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelSchedulerCoalescesPendingTicks(t *testing.T) {
	sched := &ChannelScheduler{}
	runs := 0
	h1 := sched.Schedule(func() { runs++ })
	h2 := sched.Schedule(func() { runs++ }) // replaces h1's pending callback

	sched.Cancel(h1) // stale handle, should be a no-op now
	sched.Drain()
	require.Equal(t, 1, runs)

	sched.Cancel(h2) // nothing pending anymore, still a no-op
	sched.Drain()
	require.Equal(t, 1, runs)
}

func TestChannelSchedulerCancelDropsPending(t *testing.T) {
	sched := &ChannelScheduler{}
	runs := 0
	h := sched.Schedule(func() { runs++ })
	sched.Cancel(h)
	sched.Drain()
	require.Equal(t, 0, runs)
}

// TestMachineWithChannelScheduler drives a machine under ChannelScheduler
// instead of the default SyncScheduler, confirming a host that defers tick
// execution to its own loop still observes the same transitions.
func TestMachineWithChannelScheduler(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "off"}, {Value: 1, Name: "on"}})
	require.NoError(t, err)
	require.NoError(t, m.AddInput("power", TypeBool, BoolValue(false)))
	_, err = m.CreateDefaultCondition("power", EQ)
	require.NoError(t, err)
	require.NoError(t, m.AddEdge(0, 1, "power"))

	sched := &ChannelScheduler{}
	m.SetScheduler(sched)
	m.SetRunning(true)
	sched.Drain()

	m.SetInput("power", BoolValue(true))
	require.Equal(t, StateID(0), m.GetState(), "tick is pending, not yet drained")

	sched.Drain()
	require.Equal(t, StateID(1), m.GetState())
}
