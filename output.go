package fsm

import "github.com/pkg/errors"

// MapOutput binds output outputName, at state state, to alias input
// inputName's live value: from then on, whenever state (or one of its
// descendants with no closer binding) is the real leaf, that output
// publishes whatever the input currently holds.
func (m *Machine) MapOutput(state StateID, outputName, inputName string) error {
	st, ok := m.states[state]
	if !ok {
		return errors.Wrapf(ErrUnknownState, "map output: state %d", state)
	}
	out, ok := m.outputs.Get(outputName)
	if !ok {
		return errors.Wrapf(ErrUnknownOutput, "map output: output %q", outputName)
	}
	in, ok := m.inputs.Get(inputName)
	if !ok {
		return errors.Wrapf(ErrUnknownInput, "map output: input %q", inputName)
	}
	if out.typeTag != in.typeTag {
		return errors.Wrapf(ErrTypeMismatch, "map output %q to input %q: output is %s, input is %s", outputName, inputName, out.typeTag, in.typeTag)
	}

	ensureOutputs(st, m.outputs.Len())
	untrackOwned(st, out.idx)
	st.outputs[out.idx] = in.box

	m.maybeRecompute(st)
	return nil
}

// SetOutput binds output outputName, at state state, to the constant
// value. The state owns a fresh boxed copy of value; later calls to
// SetOutput on the same (state, output) pair replace it.
func (m *Machine) SetOutput(state StateID, outputName string, value Value) error {
	st, ok := m.states[state]
	if !ok {
		return errors.Wrapf(ErrUnknownState, "set output: state %d", state)
	}
	out, ok := m.outputs.Get(outputName)
	if !ok {
		return errors.Wrapf(ErrUnknownOutput, "set output: output %q", outputName)
	}
	if out.typeTag != value.Type() {
		return errors.Wrapf(ErrTypeMismatch, "set output %q: declared type %s, got %s", outputName, out.typeTag, value.Type())
	}

	ensureOutputs(st, m.outputs.Len())
	untrackOwned(st, out.idx)

	box := &valueBox{v: value}
	st.ownedValues = append(st.ownedValues, box)
	st.outputs[out.idx] = box

	m.maybeRecompute(st)
	return nil
}

// untrackOwned drops whatever box currently occupies st.outputs[idx] from
// st.ownedValues, if it was an owned constant (as opposed to an alias or
// unset slot) — mirroring g_ptr_array_remove_fast in the original before
// the slot is overwritten.
func untrackOwned(st *State, idx int) {
	if idx >= len(st.outputs) || st.outputs[idx] == nil {
		return
	}
	old := st.outputs[idx]
	for i, box := range st.ownedValues {
		if box == old {
			st.ownedValues[i] = st.ownedValues[len(st.ownedValues)-1]
			st.ownedValues = st.ownedValues[:len(st.ownedValues)-1]
			return
		}
	}
}

// maybeRecompute re-runs current-output resolution when a binding change
// at st could affect the currently published vector: that's the case
// exactly when st is the current real leaf or one of its ancestors (spec
// §9 Open Questions, second bullet — made explicit here as isAncestorOrSelf
// rather than the original's exact-match-only check, since a binding
// change on any ancestor of the real leaf can also surface through
// hierarchical fallback).
func (m *Machine) maybeRecompute(st *State) {
	currentLeaf := m.states[m.current]
	if !isAncestorOrSelf(currentLeaf, st) {
		return
	}
	m.recomputeOutputs(currentLeaf)
}

// recomputeOutputs walks from leaf upward, taking the first non-nil
// binding for each output slot, then emits output-changed(state_change =
// true) for every slot whose resolved box pointer actually changed.
// Ported from gsm_state_machine_internal_update_outputs.
func (m *Machine) recomputeOutputs(leaf *State) {
	old := m.currentOutputs
	resolved := make([]*valueBox, len(old))

	for s := leaf; ; {
		missing := false
		for i := range resolved {
			if resolved[i] != nil {
				continue
			}
			if i < len(s.outputs) && s.outputs[i] != nil {
				resolved[i] = s.outputs[i]
			}
			if resolved[i] == nil {
				missing = true
			}
		}
		if !missing {
			break
		}
		if s.parent == nil {
			panic("fsm: output resolution did not terminate at root; an output is missing its root default")
		}
		s = s.parent
	}

	m.currentOutputs = resolved
	for i := range resolved {
		if resolved[i] == old[i] {
			continue
		}
		name := m.outputNameByIndex(i)
		m.emitOutputChanged(name, resolved[i].v, true)
	}
}

func (m *Machine) outputNameByIndex(idx int) string {
	return m.outputNames[idx]
}
