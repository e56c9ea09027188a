package fsm

import "github.com/pkg/errors"

// Sentinel causes for returned errors: an unknown input/output/event/state,
// a conflicting transition, a duplicate name, or a type mismatch. Methods
// wrap these with errors.Wrapf for context; callers that need to branch on
// the specific cause can use errors.Is / errors.Cause.
var (
	ErrUnknownInput  = errors.New("unknown input")
	ErrUnknownOutput = errors.New("unknown output")
	ErrUnknownState  = errors.New("unknown state")
	ErrUnknownEvent  = errors.New("unknown event")
	ErrConflict      = errors.New("conflicting transition")
	ErrDuplicateName = errors.New("duplicate name")
	ErrTypeMismatch  = errors.New("type mismatch")
)

// Severity classifies a diagnostic reported through a Machine's
// DiagnosticSink.
type Severity int

const (
	// SeverityWarning marks a non-fatal runtime error: an unknown
	// input/output/event name reached at runtime. The call that
	// triggered it is a no-op beyond the diagnostic.
	SeverityWarning Severity = iota
	// SeverityCritical marks a configuration error that could not be
	// reported via a returned error. No call site in this package reports
	// at this severity; configuration methods return their errors.
	SeverityCritical
)

func (s Severity) String() string {
	if s == SeverityCritical {
		return "critical"
	}
	return "warning"
}

// DiagnosticSink receives non-fatal runtime diagnostics: SetInput on an
// unknown input or with a value of the wrong type, and QueueEvent on an
// unknown event. It plays the role the original's g_warning /
// g_critical logging played, but as an explicit, swappable collaborator
// rather than a process-wide log stream.
type DiagnosticSink func(sev Severity, msg string)

// SetDiagnosticSink installs the sink that receives runtime diagnostics.
// Passing nil disables diagnostic reporting (the default: machines start
// with a no-op sink).
func (m *Machine) SetDiagnosticSink(sink DiagnosticSink) {
	if sink == nil {
		sink = func(Severity, string) {}
	}
	m.diagSink = sink
}

func (m *Machine) diagnose(sev Severity, format string, args ...any) {
	m.diagSink(sev, errors.Errorf(format, args...).Error())
}
