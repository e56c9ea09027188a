package fsm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WriteDot renders the machine's current state graph as a Graphviz dot
// file and writes it to dir/name.dot (creating dir if needed). If dir is
// empty, the STATE_MACHINE_DOT_DIR environment variable is consulted; if
// that is also unset, WriteDot is a no-op — the same "only dump when a
// directory is configured" behavior gsm_state_machine_to_dot_file gives
// the original via its GSM_STATE_MACHINE_DOT_DIR variable, renamed here
// to this library's own symbol.
//
// This is an optional, ungrounded-in-performance debugging aid (spec §1
// Non-goals: "a Graphviz dump utility ... optional and not core"); it
// walks the graph once and does no caching.
func (m *Machine) WriteDot(dir, name string) error {
	if dir == "" {
		dir = os.Getenv("STATE_MACHINE_DOT_DIR")
	}
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "write dot: create %s", dir)
	}

	var b strings.Builder
	b.WriteString("digraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  compound=true;\n")

	addNodes(&b, m.root, m.current)
	addTransitions(&b, m.root, m.interner)

	b.WriteString("}\n")

	path := filepath.Join(dir, name+".dot")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "write dot: %s", path)
	}
	return nil
}

// addNodes recursively emits one dot node or subgraph cluster per state,
// mirroring _add_nodes_to_dot's depth-first walk: leaves become plain
// nodes, compound states become labeled clusters containing their
// children. The current real leaf is marked with a double border; a
// leaf that is its parent's leader (the group-leader spec §6 calls out)
// gets a green outline.
func addNodes(b *strings.Builder, s *State, current StateID) {
	if s.id == AllStateID {
		for _, c := range s.children {
			addNodes(b, c, current)
		}
		return
	}

	if s.IsLeaf() {
		shape := "ellipse"
		if s.id == current {
			shape = "doublecircle"
		}
		color := "black"
		if isLeader(s) {
			color = "green"
		}
		fmt.Fprintf(b, "  %s [label=%q shape=%s color=%s];\n", dotID(s), s.name, shape, color)
		return
	}

	fmt.Fprintf(b, "  subgraph cluster_%s {\n", dotID(s))
	fmt.Fprintf(b, "    label=%q;\n", s.name)
	for _, c := range s.children {
		addNodes(b, c, current)
	}
	b.WriteString("  }\n")
}

// isLeader reports whether s is the state entered when its own parent is
// targeted by a transition.
func isLeader(s *State) bool {
	return s.parent != nil && s.parent.leader == s
}

// addTransitions recursively emits one dot edge per transition, labeled
// with its event (if any) and atom conjunction, mirroring
// _add_transitions_to_dot. Edges from or to a compound state point at the
// leaf its leader chain reaches (compound states are drawn as clusters,
// not nodes), with ltail/lhead set to the compound state's own cluster so Graphviz
// still renders the edge as touching the group boundary rather than the
// leader node specifically. Event-triggered transitions are drawn in red
// to set them apart from purely condition-gated ones.
func addTransitions(b *strings.Builder, s *State, in *interner) {
	for _, t := range s.transitions {
		var labelParts []string
		if t.hasEvent {
			labelParts = append(labelParts, in.name(t.event))
		}
		for _, a := range t.atoms {
			labelParts = append(labelParts, in.name(a))
		}
		label := strings.Join(labelParts, ", ")

		color := "black"
		if t.hasEvent {
			color = "red"
		}

		var attrs []string
		attrs = append(attrs, fmt.Sprintf("label=%q", label), fmt.Sprintf("color=%s", color))
		if !t.src.IsLeaf() {
			attrs = append(attrs, fmt.Sprintf("ltail=cluster_%s", dotID(t.src)))
		}
		if !t.target.IsLeaf() {
			attrs = append(attrs, fmt.Sprintf("lhead=cluster_%s", dotID(t.target)))
		}

		fmt.Fprintf(b, "  %s -> %s [%s];\n", dotID(real(t.src)), dotID(real(t.target)), strings.Join(attrs, " "))
	}
	for _, c := range s.children {
		addTransitions(b, c, in)
	}
}

func dotID(s *State) string {
	if s.id < 0 {
		return fmt.Sprintf("g%d", -int(s.id))
	}
	return fmt.Sprintf("s%d", int(s.id))
}
