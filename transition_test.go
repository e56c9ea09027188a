package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenarioOrthogonalConflictDetectionRejected builds two boolean conditions on
// completely unrelated inputs and gates two transitions out of the same
// source state with them. Nothing proves the two guards mutually
// exclusive — both inputs can be true at once — so AddEdge must reject
// the second edge as conflicting, even though the two conditions never
// mention each other's atoms at all.
func TestScenarioOrthogonalConflictDetectionRejected(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}, {Value: 1, Name: "a"}, {Value: 2, Name: "b"}})
	require.NoError(t, err)
	require.NoError(t, m.AddInput("doorOpen", TypeBool, BoolValue(false)))
	require.NoError(t, m.AddInput("engineOn", TypeBool, BoolValue(false)))
	_, err = m.CreateDefaultCondition("doorOpen", EQ)
	require.NoError(t, err)
	_, err = m.CreateDefaultCondition("engineOn", EQ)
	require.NoError(t, err)

	require.NoError(t, m.AddEdge(0, 1, "doorOpen"))
	err = m.AddEdge(0, 2, "engineOn")
	require.Error(t, err)
}

// TestAddEdgeAcceptsProvablyDisjointGuards checks the other side of the
// same mechanism: two edges guarded by different labels of the *same* EQ
// condition are accepted, because exactly one label of an EQ condition
// can be active at a time — the contradiction set of one guard always
// contains the other's positive atom.
func TestAddEdgeAcceptsProvablyDisjointGuards(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}, {Value: 1, Name: "a"}, {Value: 2, Name: "b"}})
	require.NoError(t, err)
	require.NoError(t, m.AddInputEnum("mode", []string{"a", "b", "c"}, 0))
	_, err = m.CreateDefaultCondition("mode", EQ)
	require.NoError(t, err)

	require.NoError(t, m.AddEdge(0, 1, "a"))
	require.NoError(t, m.AddEdge(0, 2, "b"))
}

func TestAddEdgeRejectsOverlappingGuards(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}, {Value: 1, Name: "a"}, {Value: 2, Name: "b"}})
	require.NoError(t, err)
	require.NoError(t, m.AddInputEnum("gear", []string{"low", "mid", "high"}, 0))
	_, err = m.CreateDefaultCondition("gear", GEQ)
	require.NoError(t, err)

	require.NoError(t, m.AddEdge(0, 1, ">=mid"))
	err = m.AddEdge(0, 2, ">=low")
	require.Error(t, err)
}

func TestAddEdgeRejectsSameStateSource(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}})
	require.NoError(t, err)
	err = m.AddEdge(0, 0)
	require.Error(t, err)
}

func TestAddEdgeRejectsUnknownToken(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "idle"}, {Value: 1, Name: "a"}})
	require.NoError(t, err)
	err = m.AddEdge(0, 1, "nonsense")
	require.Error(t, err)
}
