package report

import (
	"fmt"
	"strings"
)

// NodeSeparator joins the file prefix and the case name of a node id.
const NodeSeparator = "::"

// Outcome is the result of a node or of one of its phases.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
	OutcomeSkip Outcome = "skip"
)

// Phase is the execution stage a report pertains to.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

// Filter selects which detailed text blocks are rendered.
type Filter string

const (
	FilterPass Filter = "pass"
	FilterFail Filter = "fail"
	FilterSkip Filter = "skip"
	FilterAll  Filter = "all"
	FilterNone Filter = "none"
)

// Filters lists the accepted filter values in help order.
var Filters = []Filter{FilterPass, FilterFail, FilterSkip, FilterAll, FilterNone}

// ParseFilter validates a filter name.
func ParseFilter(name string) (Filter, error) {
	for _, f := range Filters {
		if string(f) == name {
			return f, nil
		}
	}
	names := make([]string, len(Filters))
	for i, f := range Filters {
		names[i] = string(f)
	}
	return "", fmt.Errorf("must be one of %s (got %q)", strings.Join(names, ", "), name)
}

// Matches reports whether a block with the given outcome passes the filter.
func (f Filter) Matches(outcome Outcome) bool {
	switch f {
	case FilterAll:
		return outcome != ""
	case FilterNone:
		return false
	default:
		return string(f) == string(outcome)
	}
}

// Timing controls when detailed text blocks reach the output.
type Timing int

const (
	// TimingDeferred buffers blocks until the session finishes.
	TimingDeferred Timing = iota
	// TimingInline writes blocks as soon as they are produced.
	TimingInline
)

func (t Timing) String() string {
	if t == TimingInline {
		return "inline"
	}
	return "deferred"
}

// Section is one captured text stream of a phase, e.g. "Captured stdout call".
type Section struct {
	Name    string
	Phase   Phase
	Content string
}

// CaptureName builds the conventional section name for a stream and phase.
func CaptureName(stream string, phase Phase) string {
	return fmt.Sprintf("Captured %s %s", stream, phase)
}

// CollectReport describes the discovery or validation of a test file or case.
type CollectReport struct {
	NodeID   string
	Outcome  Outcome
	LongText string
}

// StatusReport is the per-phase status signal of a node.
type StatusReport struct {
	NodeID  string
	Phase   Phase
	Outcome Outcome
}

// LogReport carries captured diagnostics of a node for one phase.
// Crash is set when the phase ended with an unexpected termination.
type LogReport struct {
	NodeID   string
	Phase    Phase
	Outcome  Outcome
	Sections []Section
	Crash    string
}

// Hooks is the lifecycle interface a test engine drives. Calls are made
// sequentially: every OnCollect precedes OnSessionStart and OnSessionFinish
// comes last. Events of one node arrive in setup, call, teardown order.
type Hooks interface {
	OnCollect(r CollectReport)
	OnSessionStart()
	OnStatus(r StatusReport)
	OnLogReport(r LogReport)
	OnSessionFinish(exitStatus int)
}

// SplitNodeID separates a node id into its file prefix and case name.
// ok is false when the id lacks the separator.
func SplitNodeID(nodeID string) (file, name string, ok bool) {
	return strings.Cut(nodeID, NodeSeparator)
}
