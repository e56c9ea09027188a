package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternerAssignsDenseCreationOrderIds(t *testing.T) {
	in := newInterner()
	a := in.intern("a")
	b := in.intern("b")
	aAgain := in.intern("a")

	assert.Equal(t, atomID(0), a)
	assert.Equal(t, atomID(1), b)
	assert.Equal(t, a, aAgain)
	assert.Equal(t, "a", in.name(a))
	assert.Equal(t, "b", in.name(b))

	_, ok := in.lookup("c")
	assert.False(t, ok)
}

func TestIsSubset(t *testing.T) {
	set := atomSet{1, 2, 3, 5}
	assert.True(t, isSubset(set, atomSet{2, 3}))
	assert.True(t, isSubset(set, atomSet{}))
	assert.False(t, isSubset(set, atomSet{4}))
	assert.False(t, isSubset(set, atomSet{3, 4}))
}

func TestIsDisjoint(t *testing.T) {
	set := atomSet{1, 2, 3}
	assert.True(t, isDisjoint(set, atomSet{4, 5}))
	assert.False(t, isDisjoint(set, atomSet{3, 4}))
	assert.True(t, isDisjoint(set, atomSet{}))
}
