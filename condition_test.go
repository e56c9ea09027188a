package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newGearMachine(t *testing.T) (*Machine, *Condition) {
	t.Helper()
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}})
	require.NoError(t, err)
	require.NoError(t, m.AddInputEnum("gear", []string{"low", "mid", "high"}, 0))
	cond, err := m.CreateDefaultCondition("gear", GEQ)
	require.NoError(t, err)
	return m, cond
}

func TestExpandPositiveGEQ(t *testing.T) {
	_, cond := newGearMachine(t)

	// active index 1 ("mid"): >=low and >=mid hold, >=high does not.
	active := expandPositive(1, cond)
	require.Len(t, active, 3)

	for j, label := range cond.labels {
		want := cond.posAtoms[j]
		if j > 1 {
			want = cond.negAtoms[j]
		}
		require.Contains(t, active, want, "label %s", label)
	}
}

func TestExpandPositiveBooleanInactive(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}})
	require.NoError(t, err)
	require.NoError(t, m.AddInput("door", TypeBool, BoolValue(false)))
	cond, err := m.CreateDefaultCondition("door", EQ)
	require.NoError(t, err)

	active := expandPositive(-1, cond)
	require.Equal(t, atomSet{cond.negAtoms[0]}, active)
}

func TestExpandNoOverlapEQContradictsEveryOtherLabel(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}})
	require.NoError(t, err)
	require.NoError(t, m.AddInputEnum("mode", []string{"a", "b", "c"}, 0))
	cond, err := m.CreateDefaultCondition("mode", EQ)
	require.NoError(t, err)

	ref := m.atomOwner[cond.posAtoms[1]]
	contradiction := expandNoOverlap(ref)

	// "mode == b" is contradicted by "mode != b" (the negative atom at
	// index 1) and by either other label being active (the positive atoms
	// at indices 0 and 2).
	require.Contains(t, contradiction, cond.negAtoms[1])
	require.Contains(t, contradiction, cond.posAtoms[0])
	require.Contains(t, contradiction, cond.posAtoms[2])
}
