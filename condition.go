package fsm

import "github.com/pkg/errors"

// ConditionKind selects how an input's current value maps to an ordered
// set of positive/negative atoms.
type ConditionKind int

const (
	// EQ: exactly one label is active; it gets the positive atom, every
	// other label gets its negative atom.
	EQ ConditionKind = iota
	// GEQ: every label at or below the active one (by declared order)
	// gets the positive atom.
	GEQ
	// LEQ: every label at or above the active one gets the positive atom.
	LEQ
)

// Reader converts an input's current Value into the index (within a
// Condition's label list) of the currently active label. For a boolean EQ
// condition (single label), Reader should return -1 to mean "false" — the
// condition's sole label is not active — matching the original's
// special-cased zero-quark return for that case.
type Reader func(Value) int

// Condition is a symbolic boolean term derived from one input's live
// value: a kind, an ordered list of atom labels, and the reader that picks
// out which label is currently active. From the labels it materializes
// parallel positive/negative atomID arrays, one pair per label.
type Condition struct {
	input    string
	kind     ConditionKind
	labels   []string
	posAtoms []atomID
	negAtoms []atomID
	reader   Reader
}

// CreateCondition declares a new input condition. atomLabels must be
// non-empty and in the order that GEQ/LEQ geometry is evaluated against.
func (m *Machine) CreateCondition(inputName string, atomLabels []string, kind ConditionKind, reader Reader) (*Condition, error) {
	if _, ok := m.inputs.Get(inputName); !ok {
		return nil, errors.Wrapf(ErrUnknownInput, "create condition: input %q", inputName)
	}
	if len(atomLabels) == 0 {
		return nil, errors.Errorf("create condition: input %q: at least one atom label is required", inputName)
	}
	if reader == nil {
		return nil, errors.Errorf("create condition: input %q: reader function is required", inputName)
	}

	cond := &Condition{input: inputName, kind: kind, labels: atomLabels, reader: reader}
	for _, label := range atomLabels {
		var pos, neg string
		switch kind {
		case EQ:
			pos, neg = label, "!"+label
		case GEQ:
			pos, neg = ">="+label, "<"+label
		case LEQ:
			pos, neg = "<="+label, ">"+label
		default:
			return nil, errors.Errorf("create condition: input %q: unknown condition kind %d", inputName, int(kind))
		}

		// A label equal to the condition's own input name (the boolean
		// default condition's atom) is already taken by that input, so only
		// a clash with an existing atom is checked for it.
		if pos == inputName {
			if id, ok := m.interner.lookup(pos); ok {
				if _, isAtom := m.atomOwner[id]; isAtom {
					return nil, errors.Errorf("symbol %q already in use as a condition atom", pos)
				}
			}
		} else if err := m.checkFreshSymbol(pos); err != nil {
			return nil, err
		}
		if err := m.checkFreshSymbol(neg); err != nil {
			return nil, err
		}

		posID := m.interner.intern(pos)
		negID := m.interner.intern(neg)
		cond.posAtoms = append(cond.posAtoms, posID)
		cond.negAtoms = append(cond.negAtoms, negID)
		m.atomOwner[posID] = atomRef{condition: cond, index: len(cond.posAtoms) - 1, positive: true}
		m.atomOwner[negID] = atomRef{condition: cond, index: len(cond.negAtoms) - 1, positive: false}
	}

	m.conditions = append(m.conditions, cond)
	return cond, nil
}

// checkFreshSymbol rejects a symbol that already names an atom, an event,
// an input, or an output, so the whole shared symbol space spec §3
// describes ("Event names share the global symbol space with condition
// atoms and inputs and must not collide") is actually enforced in every
// direction, not just atom-vs-event.
func (m *Machine) checkFreshSymbol(name string) error {
	if id, ok := m.interner.lookup(name); ok {
		if _, isAtom := m.atomOwner[id]; isAtom {
			return errors.Errorf("symbol %q already in use as a condition atom", name)
		}
		if _, isEvent := m.events.Get(name); isEvent {
			return errors.Errorf("symbol %q already in use as an event name", name)
		}
	}
	if _, isInput := m.inputs.Get(name); isInput {
		return errors.Errorf("symbol %q already in use as an input name", name)
	}
	if _, isOutput := m.outputs.Get(name); isOutput {
		return errors.Errorf("symbol %q already in use as an output name", name)
	}
	return nil
}

// CreateDefaultCondition synthesizes atom labels from the input's declared
// type: one label per enum member for an enum input, or the input's own
// name for a boolean input.
func (m *Machine) CreateDefaultCondition(inputName string, kind ConditionKind) (*Condition, error) {
	input, ok := m.inputs.Get(inputName)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInput, "create default condition: input %q", inputName)
	}

	switch input.typeTag {
	case TypeBool:
		reader := func(v Value) int {
			if v.Bool() {
				return 0
			}
			return -1
		}
		return m.CreateCondition(inputName, []string{inputName}, kind, reader)
	case TypeEnum:
		if len(input.enumLabels) == 0 {
			return nil, errors.Errorf("create default condition: enum input %q has no declared members", inputName)
		}
		reader := func(v Value) int { return v.EnumOrdinal() }
		return m.CreateCondition(inputName, input.enumLabels, kind, reader)
	default:
		return nil, errors.Errorf("create default condition: input %q has type %s, which has no default atom labels", inputName, input.typeTag)
	}
}

// atomRef records, for one atomID, which Condition it belongs to, its
// index within that condition's label list, and whether it is the
// positive or negative atom at that index. This is the reverse index that
// lets AddEdge turn a bare atom token back into "index 3 of the enum
// condition on input gear, negative form" without a linear scan.
type atomRef struct {
	condition *Condition
	index     int
	positive  bool
}

// expandPositive computes the conjunction of atoms that are true right now
// for one condition, given which label index is currently active (-1 for
// the boolean "false" special case). Ported from
// _condition_expand_positive in gsm-state-machine.c.
func expandPositive(activeIdx int, cond *Condition) atomSet {
	if activeIdx < 0 {
		if len(cond.labels) != 1 {
			panic("fsm: boolean-style inactive reading (-1) on a multi-label condition")
		}
		return atomSet{cond.negAtoms[0]}
	}

	var lesser, greater bool
	switch cond.kind {
	case EQ:
		lesser, greater = false, false
	case GEQ:
		lesser, greater = true, false
	case LEQ:
		lesser, greater = false, true
	}

	found := false
	out := make(atomSet, 0, len(cond.labels))
	for j := range cond.labels {
		this := j == activeIdx
		if this {
			found = true
		}
		var condState bool
		switch {
		case this:
			condState = true
		case found:
			condState = greater
		default:
			condState = lesser
		}
		if condState {
			out = append(out, cond.posAtoms[j])
		} else {
			out = append(out, cond.negAtoms[j])
		}
	}
	if !found {
		panic("fsm: active index out of range for condition")
	}
	return out
}

// expandNoOverlap computes the "contradiction set" for a single already-
// known atom of a condition: the set of concrete atom assignments that
// would make this exact atom false. Follows the branch structure of
// _condition_expand_no_overlap in gsm-state-machine.c, with the truth
// table derived per kind: for GEQ/LEQ only the same-index atom flips with
// the atom's sign, while the side that can never contradict it is
// suppressed; an EQ negative atom is contradicted only by its own label.
func expandNoOverlap(ref atomRef) atomSet {
	cond := ref.condition
	idx := ref.index
	// Confusingly named in the original too: "negated" is true when the
	// atom we're contradicting is itself the *positive* form at idx.
	negated := ref.positive

	var equal, lesser, greater, suppressSameState bool
	switch cond.kind {
	case EQ:
		equal, lesser, greater, suppressSameState = !negated, negated, negated, !negated
	case GEQ:
		equal, lesser, greater, suppressSameState = !negated, false, true, true
	case LEQ:
		equal, lesser, greater, suppressSameState = !negated, true, false, true
	}

	out := make(atomSet, 0, len(cond.labels))
	for j := range cond.labels {
		var condState bool
		switch {
		case j == idx:
			condState = equal
		case j > idx:
			condState = greater
		default:
			condState = lesser
		}

		if !suppressSameState || condState != negated {
			if condState {
				out = append(out, cond.posAtoms[j])
			} else {
				out = append(out, cond.negAtoms[j])
			}
		}
	}
	return out
}
