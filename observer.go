package fsm

// StateEnterFunc observes a state-enter notification: name is the nominal
// target's name (not necessarily the real leaf's, for compound targets),
// newID is the real leaf now current, oldID is the leaf that was exited.
type StateEnterFunc func(name string, newID, oldID StateID)

// StateExitFunc observes a state-exit notification: name and oldID
// identify the leaf being left, newID the real leaf about to become
// current.
type StateExitFunc func(name string, oldID, newID StateID)

// InputChangedFunc observes an input-changed notification.
type InputChangedFunc func(name string, value Value)

// OutputChangedFunc observes an output-changed notification. stateChange
// is true when the change was discovered during output recomputation
// after a transition or a SetOutput on the active state, false when it
// was discovered because the aliased input's value itself changed.
type OutputChangedFunc func(name string, value Value, stateChange bool)

// observers holds every registered callback per notification kind, fired
// in registration order.
type observers struct {
	onEnter  []StateEnterFunc
	onExit   []StateExitFunc
	onInput  []InputChangedFunc
	onOutput []OutputChangedFunc
}

// OnStateEnter registers f to be called on every state-enter notification.
func (m *Machine) OnStateEnter(f StateEnterFunc) {
	m.observers.onEnter = append(m.observers.onEnter, f)
}

// OnStateExit registers f to be called on every state-exit notification.
func (m *Machine) OnStateExit(f StateExitFunc) {
	m.observers.onExit = append(m.observers.onExit, f)
}

// OnInputChanged registers f to be called on every input-changed
// notification.
func (m *Machine) OnInputChanged(f InputChangedFunc) {
	m.observers.onInput = append(m.observers.onInput, f)
}

// OnOutputChanged registers f to be called on every output-changed
// notification.
func (m *Machine) OnOutputChanged(f OutputChangedFunc) {
	m.observers.onOutput = append(m.observers.onOutput, f)
}

func (m *Machine) emitStateEnter(name string, newID, oldID StateID) {
	for _, f := range m.observers.onEnter {
		f(name, newID, oldID)
	}
}

func (m *Machine) emitStateExit(name string, oldID, newID StateID) {
	for _, f := range m.observers.onExit {
		f(name, oldID, newID)
	}
}

func (m *Machine) emitInputChanged(name string, value Value) {
	for _, f := range m.observers.onInput {
		f(name, value)
	}
}

func (m *Machine) emitOutputChanged(name string, value Value, stateChange bool) {
	for _, f := range m.observers.onOutput {
		f(name, value, stateChange)
	}
}
