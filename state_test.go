package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateGroupReparentsChildrenAndSetsLeader(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "a"}, {Value: 1, Name: "b"}, {Value: 2, Name: "c"}})
	require.NoError(t, err)

	group, err := m.CreateGroup("ab", 0, 1)
	require.NoError(t, err)

	groupState := m.states[group]
	require.Equal(t, m.root, groupState.parent)
	require.Len(t, groupState.children, 2)
	require.Equal(t, m.states[0], groupState.leader, "first listed child becomes the leader")
	require.Equal(t, StateID(0), real(groupState).id)

	// c was untouched and remains a direct child of root.
	require.Equal(t, m.root, m.states[2].parent)
}

func TestCreateGroupRejectsChildrenWithDifferentParents(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "a"}, {Value: 1, Name: "b"}, {Value: 2, Name: "c"}})
	require.NoError(t, err)
	inner, err := m.CreateGroup("inner", 0, 1)
	require.NoError(t, err)
	_ = inner

	_, err = m.CreateGroup("mixed", 1, 2)
	require.Error(t, err, "1 now lives under inner, not root, so it no longer shares a parent with 2")
}

func TestCreateGroupRejectsUnknownChild(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "a"}})
	require.NoError(t, err)
	_, err = m.CreateGroup("x", 0, 99)
	require.Error(t, err)
}

func TestCreateGroupRejectsDuplicateChild(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "a"}, {Value: 1, Name: "b"}})
	require.NoError(t, err)
	_, err = m.CreateGroup("x", 0, 0)
	require.Error(t, err)
}

// TestCreateGroupValidatesNestedLeaderChains builds a group-of-groups and
// checks that real() correctly walks a two-hop leader chain, and that
// CreateGroup's call to validate() for the outer group doesn't panic
// even though its leader is itself a compound state rather than a leaf.
func TestCreateGroupValidatesNestedLeaderChains(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "a"}, {Value: 1, Name: "b"}, {Value: 2, Name: "c"}})
	require.NoError(t, err)

	inner, err := m.CreateGroup("inner", 0, 1)
	require.NoError(t, err)

	outer, err := m.CreateGroup("outer", inner, 2)
	require.NoError(t, err)

	outerState := m.states[outer]
	require.Equal(t, m.states[inner], outerState.leader)
	require.Equal(t, StateID(0), real(outerState).id, "real() must walk through inner's leader to reach leaf a")
	require.True(t, outerState.validated)
	require.True(t, m.states[inner].validated)
}

// TestValidatePanicsOnBrokenLeaderChain exercises the defensive panic
// path directly: a compound state with no leader at all (which CreateGroup
// itself can never produce, since reparent always assigns one) must still
// be caught by validate rather than silently resolved.
func TestValidatePanicsOnBrokenLeaderChain(t *testing.T) {
	broken := newState(-99, "broken")
	broken.children = []*State{newState(1000, "child")} // non-leaf, leader left nil

	require.Panics(t, func() { validate(broken) })
}

func TestIsAncestorOrSelf(t *testing.T) {
	m, err := New([]StateDecl{{Value: 0, Name: "a"}, {Value: 1, Name: "b"}})
	require.NoError(t, err)
	group, err := m.CreateGroup("g", 0, 1)
	require.NoError(t, err)

	a := m.states[0]
	g := m.states[group]
	require.True(t, isAncestorOrSelf(a, g))
	require.True(t, isAncestorOrSelf(a, a))
	require.False(t, isAncestorOrSelf(g, a), "a child is not an ancestor of its own parent")
}
