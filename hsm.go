package fsm

import (
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Machine is a configured, runnable instance of a declarative finite state
// machine: a state graph, typed inputs and outputs, input conditions,
// events, and guarded transitions between states. Construction (New plus
// the Add*/Create*/Map*/Set* configuration calls) and running (SetInput,
// QueueEvent, SetRunning) share one type, unlike the
// StateMachine/StateMachineInstance split dragomit-hsm uses — this
// runtime has no per-instance extended state to separate out, so there is
// nothing a second type would buy.
type Machine struct {
	states      map[StateID]*State
	root        *State
	nextGroupID StateID

	inputs      *orderedmap.OrderedMap[string, *Input]
	outputs     *orderedmap.OrderedMap[string, *Output]
	outputNames []string
	events      *orderedmap.OrderedMap[string, atomID]

	interner   *interner
	conditions []*Condition
	atomOwner  map[atomID]atomRef

	current StateID

	running       bool
	scheduler     Scheduler
	pendingHandle Handle

	activeConditions atomSet
	pendingEvents    []atomID

	currentOutputs []*valueBox

	observers observers
	diagSink  DiagnosticSink
}

// New constructs a Machine from a declared set of leaf states. states must
// contain exactly one declaration with Value 0 (the mandatory initial
// state); no Value may be negative (negative ids are reserved for
// runtime-allocated compound groups).
func New(states []StateDecl) (*Machine, error) {
	if len(states) == 0 {
		return nil, errors.New("new machine: at least one state is required")
	}

	m := &Machine{
		states:      make(map[StateID]*State),
		nextGroupID: AllStateID - 1,
		inputs:      orderedmap.New[string, *Input](),
		outputs:     orderedmap.New[string, *Output](),
		events:      orderedmap.New[string, atomID](),
		interner:    newInterner(),
		atomOwner:   make(map[atomID]atomRef),
		scheduler:   SyncScheduler{},
		diagSink:    func(Severity, string) {},
	}

	m.root = newState(AllStateID, "all")
	m.states[AllStateID] = m.root

	haveZero := false
	seenNames := make(map[string]bool)
	for _, decl := range states {
		if decl.Value < 0 {
			return nil, errors.Errorf("new machine: state %q has negative value %d; negative values are reserved for compound groups", decl.Name, decl.Value)
		}
		if _, exists := m.states[StateID(decl.Value)]; exists {
			return nil, errors.Errorf("new machine: duplicate state value %d", decl.Value)
		}
		if seenNames[decl.Name] {
			return nil, errors.Errorf("new machine: duplicate state name %q", decl.Name)
		}
		seenNames[decl.Name] = true

		leaf := newState(StateID(decl.Value), decl.Name)
		reparent(leaf, m.root)
		m.states[StateID(decl.Value)] = leaf
		if decl.Value == 0 {
			haveZero = true
			m.root.leader = leaf
			m.current = 0
		}
	}
	if !haveZero {
		return nil, errors.New("new machine: state enumeration must contain a value of 0 for the initial state")
	}

	return m, nil
}

// AddInput declares a new input slot named name, of the given type, with
// an initial value of def.
func (m *Machine) AddInput(name string, typeTag TypeTag, def Value) error {
	if typeTag != def.Type() {
		return errors.Wrapf(ErrTypeMismatch, "add input %q: declared type %s, default is %s", name, typeTag, def.Type())
	}
	if _, exists := m.inputs.Get(name); exists {
		return errors.Wrapf(ErrDuplicateName, "add input: %q", name)
	}
	if err := m.checkFreshSymbol(name); err != nil {
		return errors.Wrapf(err, "add input %q", name)
	}

	in := &Input{name: name, typeTag: typeTag, idx: m.inputs.Len(), box: &valueBox{v: def}}
	m.inputs.Set(name, in)
	return nil
}

// AddInputEnum declares a new enum-typed input slot, additionally
// recording its ordered member labels so CreateDefaultCondition can
// synthesize one atom label per member.
func (m *Machine) AddInputEnum(name string, members []string, defaultOrdinal int) error {
	if len(members) == 0 {
		return errors.Errorf("add input %q: enum must declare at least one member", name)
	}
	if defaultOrdinal < 0 || defaultOrdinal >= len(members) {
		return errors.Errorf("add input %q: default ordinal %d out of range for %d members", name, defaultOrdinal, len(members))
	}
	if err := m.AddInput(name, TypeEnum, EnumValue(name, defaultOrdinal)); err != nil {
		return err
	}
	in, _ := m.inputs.Get(name)
	in.enumLabels = members
	return nil
}

// AddOutput declares a new output slot named name, of the given type, with
// default value def. The root state is seeded with a reference to def, so
// output resolution always terminates (spec §4.5).
func (m *Machine) AddOutput(name string, typeTag TypeTag, def Value) error {
	if typeTag != def.Type() {
		return errors.Wrapf(ErrTypeMismatch, "add output %q: declared type %s, default is %s", name, typeTag, def.Type())
	}
	if _, exists := m.outputs.Get(name); exists {
		return errors.Wrapf(ErrDuplicateName, "add output: %q", name)
	}
	if err := m.checkFreshSymbol(name); err != nil {
		return errors.Wrapf(err, "add output %q", name)
	}

	idx := m.outputs.Len()
	box := &valueBox{v: def}
	out := &Output{name: name, typeTag: typeTag, idx: idx, defaultBox: box}
	m.outputs.Set(name, out)
	m.outputNames = append(m.outputNames, name)

	ensureOutputs(m.root, m.outputs.Len())
	m.root.outputs[idx] = box
	m.currentOutputs = append(m.currentOutputs, box)
	return nil
}

// AddEvent declares a new named, discrete event.
func (m *Machine) AddEvent(name string) error {
	if _, exists := m.events.Get(name); exists {
		return errors.Wrapf(ErrDuplicateName, "add event: %q", name)
	}
	if err := m.checkFreshSymbol(name); err != nil {
		return errors.Wrapf(err, "add event %q", name)
	}
	m.events.Set(name, m.interner.intern(name))
	return nil
}

// QueueEvent appends event to the FIFO event queue and requests an update
// tick. Queueing an undeclared event is a runtime error: reported via the
// diagnostic sink, otherwise a no-op.
func (m *Machine) QueueEvent(name string) {
	id, ok := m.events.Get(name)
	if !ok {
		m.diagnose(SeverityWarning, "queue event: unknown event %q", name)
		return
	}
	m.pendingEvents = append(m.pendingEvents, id)
	m.requestTick()
}

// SetInput writes value into input name's live box, emits input-changed,
// and — only if the value actually differs from the previous one — emits
// output-changed(state_change=false) for every currently-published output
// slot aliased to this input (spec testable property: idempotence).
// Setting an unknown input is a runtime error: diagnosed, otherwise a
// no-op.
func (m *Machine) SetInput(name string, value Value) {
	in, ok := m.inputs.Get(name)
	if !ok {
		m.diagnose(SeverityWarning, "set input: unknown input %q", name)
		return
	}
	if in.typeTag != value.Type() {
		m.diagnose(SeverityWarning, "set input %q: declared type %s, got %s", name, in.typeTag, value.Type())
		return
	}

	changed := !in.box.v.Equal(value)
	in.box.v = value
	m.emitInputChanged(name, value)

	if changed {
		for i, box := range m.currentOutputs {
			if box == in.box {
				m.emitOutputChanged(m.outputNames[i], value, false)
			}
		}
	}

	m.requestTick()
}

// GetInput returns the current value of input name.
func (m *Machine) GetInput(name string) (Value, error) {
	in, ok := m.inputs.Get(name)
	if !ok {
		return Value{}, errors.Wrapf(ErrUnknownInput, "get input: %q", name)
	}
	return in.box.v, nil
}

// GetOutput returns the currently published value of output name.
func (m *Machine) GetOutput(name string) (Value, error) {
	out, ok := m.outputs.Get(name)
	if !ok {
		return Value{}, errors.Wrapf(ErrUnknownOutput, "get output: %q", name)
	}
	return m.currentOutputs[out.idx].v, nil
}

// GetState returns the id of the current real leaf state.
func (m *Machine) GetState() StateID { return m.current }

// SetRunning starts or stops the scheduler. While stopped, SetInput and
// QueueEvent still update internal state but no tick is scheduled; a
// pending tick is cancelled when running is set to false.
func (m *Machine) SetRunning(running bool) {
	m.running = running
	if running {
		m.requestTick()
		return
	}
	if m.pendingHandle != nil {
		m.scheduler.Cancel(m.pendingHandle)
		m.pendingHandle = nil
	}
}

// SetScheduler installs the Scheduler the machine uses for tick requests.
// Must be called before SetRunning(true); machines default to
// SyncScheduler.
func (m *Machine) SetScheduler(s Scheduler) {
	m.scheduler = s
}

func (m *Machine) requestTick() {
	if !m.running || m.pendingHandle != nil {
		return
	}
	m.pendingHandle = m.scheduler.Schedule(m.runTick)
}

func (m *Machine) runTick() {
	m.pendingHandle = nil
	m.tick()
}

// tick is the single-entry update procedure (spec §4.6): recompute active
// conditions, attempt one conditional transition, otherwise consume at
// most one queued event, then re-request a tick if a transition fired (so
// a chain of transitions drains to stability one tick at a time, per the
// one-transition-per-tick redesign in spec §9).
func (m *Machine) tick() {
	m.activeConditions = m.computeActiveConditions()

	leaf := m.states[m.current]
	if t := findApplicable(leaf, m.activeConditions, false, 0); t != nil {
		m.performTransition(t)
		return
	}

	if len(m.pendingEvents) == 0 {
		return
	}
	event := m.pendingEvents[0]
	m.pendingEvents = m.pendingEvents[1:]

	if t := findApplicable(leaf, m.activeConditions, true, event); t != nil {
		m.performTransition(t)
	}
}

// computeActiveConditions evaluates every declared input condition's
// reader against that input's current value and returns the sorted union
// of their positive expansions — the conjunction of atoms true right now.
func (m *Machine) computeActiveConditions() atomSet {
	var active atomSet
	for _, cond := range m.conditions {
		in, _ := m.inputs.Get(cond.input)
		idx := cond.reader(in.box.v)
		active = append(active, expandPositive(idx, cond)...)
	}
	sortAtoms(active)
	return active
}

// performTransition executes one state change (spec §4.7): resolve the
// real target via leader links, no-op if that's already current, otherwise
// exit, switch, recompute outputs, enter, and request a follow-up tick.
func (m *Machine) performTransition(t *Transition) {
	oldLeaf := m.states[m.current]
	newLeaf := real(t.target)

	if newLeaf == oldLeaf {
		return
	}

	m.emitStateExit(oldLeaf.name, oldLeaf.id, newLeaf.id)

	m.current = newLeaf.id
	m.recomputeOutputs(newLeaf)

	m.emitStateEnter(t.target.name, newLeaf.id, oldLeaf.id)

	m.requestTick()
}
