package fsm

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// atomID is a dense, creation-ordered handle for an interned symbol —
// condition atoms and event names share this id space. Input and output
// names are not interned; checkFreshSymbol looks them up in their own
// tables. It plays the role of a GQuark in the original.
type atomID int

// interner assigns a small dense integer to every symbol the first time it
// is seen, and keeps the id order equal to first-seen order so that
// comparing two atomIDs numerically reproduces a deterministic, stable
// symbol order — exactly what GQuark comparison gives the original for
// free. An ordered map takes names to ids; the names slice takes ids back
// to names.
type interner struct {
	ids   *orderedmap.OrderedMap[string, atomID]
	names []string
}

func newInterner() *interner {
	return &interner{ids: orderedmap.New[string, atomID]()}
}

// intern returns name's id, assigning a fresh one if this is the first time
// name has been seen.
func (in *interner) intern(name string) atomID {
	if id, ok := in.ids.Get(name); ok {
		return id
	}
	id := atomID(len(in.names))
	in.names = append(in.names, name)
	in.ids.Set(name, id)
	return id
}

// lookup returns name's id without interning it.
func (in *interner) lookup(name string) (atomID, bool) {
	return in.ids.Get(name)
}

// name returns the symbol an id was assigned to.
func (in *interner) name(id atomID) string {
	return in.names[id]
}

// atomSet is a conjunction of atoms, kept sorted ascending by atomID so
// that subset/disjoint tests run in linear time over both arrays, as in
// the original's sorted GArray of GQuarks.
type atomSet []atomID

func sortAtoms(s atomSet) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// isSubset reports whether every atom of conditions also appears in set.
// Both slices must already be sorted ascending.
func isSubset(set, conditions atomSet) bool {
	j := 0
	for _, c := range conditions {
		for j < len(set) && set[j] < c {
			j++
		}
		if j >= len(set) || set[j] != c {
			return false
		}
	}
	return true
}

// isDisjoint reports whether no atom of conditions appears in set.
// Both slices must already be sorted ascending.
func isDisjoint(set, conditions atomSet) bool {
	j := 0
	for _, c := range conditions {
		for j < len(set) && set[j] < c {
			j++
		}
		if j < len(set) && set[j] == c {
			return false
		}
	}
	return true
}
