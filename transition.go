package fsm

import "github.com/pkg/errors"

// Transition is a guarded, directed edge from one state to another,
// carrying the sorted conjunction of atoms that must all hold, and
// optionally the single event name that must be the currently-dispatching
// event for the edge to be eligible.
type Transition struct {
	src      *State
	target   *State
	hasEvent bool
	event    atomID
	atoms    atomSet
}

// AddEdge declares a transition from src to target, gated by the given
// tokens. Each token must name either a known condition atom (joined into
// the transition's conjunction) or a known event (becomes the triggering
// event; at most one event token per edge). The new transition is rejected
// — with no partial effect — if it could fire simultaneously with an
// existing transition reachable from the same leaf under the same event.
func (m *Machine) AddEdge(src, target StateID, tokens ...string) error {
	if src == target {
		return errors.Errorf("add edge: source and target state must differ (both %d)", src)
	}
	srcState, ok := m.states[src]
	if !ok {
		return errors.Wrapf(ErrUnknownState, "add edge: source %d", src)
	}
	targetState, ok := m.states[target]
	if !ok {
		return errors.Wrapf(ErrUnknownState, "add edge: target %d", target)
	}
	validate(targetState)

	t := &Transition{src: srcState, target: targetState}
	for _, token := range tokens {
		id, known := m.interner.lookup(token)
		if _, isAtom := m.atomOwner[id]; known && isAtom {
			t.atoms = append(t.atoms, id)
			continue
		}
		if _, isEvent := m.events.Get(token); known && isEvent {
			if t.hasEvent {
				return errors.Errorf("add edge %d->%d: transition already has event %q, cannot also use %q",
					src, target, m.interner.name(t.event), token)
			}
			t.hasEvent = true
			t.event = id
			continue
		}
		return errors.Errorf("add edge %d->%d: token %q is neither a known condition atom nor a known event", src, target, token)
	}
	sortAtoms(t.atoms)

	if conflict := m.findConflict(srcState, t); conflict != nil {
		return errors.Wrapf(ErrConflict, "add edge %d->%d: conflicts with existing transition on state %q", src, target, conflict.name)
	}

	srcState.transitions = append(srcState.transitions, t)
	return nil
}

// contradictionSet computes the set of atoms that, if all concurrently
// active, prove t's conjunction cannot currently hold — the union, over
// every atom in t's conjunction, of that atom's expandNoOverlap set.
func (m *Machine) contradictionSet(t *Transition) atomSet {
	var out atomSet
	for _, a := range t.atoms {
		ref, ok := m.atomOwner[a]
		if !ok {
			panic("fsm: transition atom has no condition backing it")
		}
		out = append(out, expandNoOverlap(ref)...)
	}
	sortAtoms(out)
	return out
}

// findConflict walks src's own transitions, its ancestors' transitions,
// and all of src's descendants' transitions, looking for an existing
// transition with the same event gate whose conjunction is disjoint from
// t's contradiction set — meaning some reachable active-condition set
// would let both t and that transition fire at once. Returns the state
// owning the first such transition found, or nil.
func (m *Machine) findConflict(src *State, t *Transition) *State {
	contradiction := m.contradictionSet(t)

	if s := findSameEventDisjoint(src, t, contradiction, true); s != nil {
		return s
	}
	return findSameEventDisjoint(src, t, contradiction, false)
}

// findSameEventDisjoint searches either upward through ancestors (upward
// == true) or downward through src and its descendants (upward == false)
// for a transition sharing t's event gate whose conjunction is disjoint
// from contradiction.
func findSameEventDisjoint(src *State, t *Transition, contradiction atomSet, upward bool) *State {
	if upward {
		for s := src; s != nil; s = s.parent {
			if found := scanTransitions(s, t, contradiction); found {
				return s
			}
		}
		return nil
	}

	var walk func(s *State) *State
	walk = func(s *State) *State {
		if scanTransitions(s, t, contradiction) {
			return s
		}
		for _, c := range s.children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(src)
}

func scanTransitions(s *State, t *Transition, contradiction atomSet) bool {
	for _, existing := range s.transitions {
		if existing.hasEvent != t.hasEvent {
			continue
		}
		if existing.hasEvent && existing.event != t.event {
			continue
		}
		if isDisjoint(contradiction, existing.atoms) {
			return true
		}
	}
	return false
}

// findApplicable walks from leaf up through ancestors (the same order
// gsm_state_machine_find_transition uses), returning the first transition
// whose event gate matches wantEvent/hasEvent and whose conjunction is a
// subset of active.
func findApplicable(leaf *State, active atomSet, hasEvent bool, wantEvent atomID) *Transition {
	for s := leaf; s != nil; s = s.parent {
		for _, t := range s.transitions {
			if t.hasEvent != hasEvent {
				continue
			}
			if hasEvent && t.event != wantEvent {
				continue
			}
			if isSubset(active, t.atoms) {
				return t
			}
		}
	}
	return nil
}
