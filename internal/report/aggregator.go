package report

import (
	"fmt"
	"strings"
	"time"

	"shakedown/internal/console"
	"shakedown/pkg/logging"

	"github.com/google/uuid"
)

type nodeState int

const (
	stateUnknown nodeState = iota
	stateCollected
	stateRunning
	stateFinalized
)

// node is the per test case state. Once finalized, outcome never changes.
type node struct {
	id       string
	state    nodeState
	outcome  Outcome
	failed   bool
	skipped  bool
	captured bool // a setup/teardown capture has been rendered
	labeled  bool
	marked   bool // a terminal marker has been printed
	output   []string
}

// Counts holds the running totals of finalized test nodes.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Aggregator implements Hooks and renders a single output stream for one run.
// It is not safe for concurrent use; the engine serializes hook calls.
type Aggregator struct {
	w        *lineWriter
	printer  *console.Printer
	renderer Renderer
	filter   Filter

	runID      string
	startedAt  time.Time
	finishedAt time.Time
	exitStatus int

	collecting bool
	testing    bool
	files      map[string]bool
	nodes      map[string]*node
	finalized  []string
	collected  []NodeResult
	counts     Counts
}

// NewAggregator creates the aggregator for one run.
func NewAggregator(p *console.Printer, filter Filter, timing Timing) *Aggregator {
	w := &lineWriter{p: p}
	return &Aggregator{
		w:         w,
		printer:   p,
		renderer:  newRenderer(timing, w),
		filter:    filter,
		runID:     uuid.NewString(),
		startedAt: time.Now(),
		files:     make(map[string]bool),
		nodes:     make(map[string]*node),
	}
}

// RunID identifies this run in logs and the JSON summary.
func (a *Aggregator) RunID() string {
	return a.runID
}

// Counts returns the current totals.
func (a *Aggregator) Counts() Counts {
	return a.counts
}

// OnCollect records the discovery or validation of a test file or case.
func (a *Aggregator) OnCollect(r CollectReport) {
	if !a.collecting {
		a.collecting = true
		a.w.step(console.StepMinor, "Collecting and validating test files...")
	}
	if r.NodeID == "" {
		return
	}

	n := a.node(r.NodeID)
	if n.state == stateUnknown {
		n.state = stateCollected
	}

	a.w.label(console.ItemMajor, r.NodeID)
	if r.Outcome == "" {
		a.w.breakLine()
		return
	}
	a.collected = append(a.collected, NodeResult{NodeID: r.NodeID, Outcome: r.Outcome, Output: r.LongText})
	a.output(n, r.NodeID, r.Outcome, r.LongText, true)
}

// OnSessionStart marks the transition from collection to execution.
func (a *Aggregator) OnSessionStart() {
	a.w.step(console.StepMajor, "Initiating testing phase...")
}

// OnStatus handles the per phase status of a node. The marker is only
// emitted here at teardown, and only when no call capture finalized the node.
func (a *Aggregator) OnStatus(r StatusReport) {
	if !a.testing {
		a.testing = true
		a.w.step(console.StepMinor, "Running individual tests...")
	}

	file, name, ok := SplitNodeID(r.NodeID)
	if !ok {
		logging.Debug("Report", "Node id %q has no %q separator, not grouping by file", r.NodeID, NodeSeparator)
		name = r.NodeID
	} else if !a.files[file] {
		a.files[file] = true
		a.w.item(console.ItemMajor, file)
	}

	n := a.node(r.NodeID)
	if !n.labeled {
		n.labeled = true
		a.w.label(console.ItemMinor, name)
	}
	if n.state < stateRunning {
		n.state = stateRunning
	}

	switch r.Outcome {
	case OutcomeFail:
		n.failed = true
	case OutcomeSkip:
		n.skipped = true
	}

	if r.Phase == PhaseTeardown && n.state != stateFinalized {
		outcome := OutcomePass
		if n.failed {
			outcome = OutcomeFail
		} else if n.skipped {
			outcome = OutcomeSkip
		}
		a.finalize(n, outcome)
		a.output(n, r.NodeID, outcome, "", true)
	}
}

// OnLogReport renders captured diagnostics of one phase of a node.
func (a *Aggregator) OnLogReport(r LogReport) {
	n := a.node(r.NodeID)

	if r.Outcome != "" {
		for _, section := range r.Sections {
			if strings.TrimSpace(section.Content) == "" {
				continue
			}
			phase := section.Phase
			if phase == "" {
				phase = r.Phase
			}

			switch {
			case phase != PhaseCall:
				if n.captured {
					continue
				}
				n.captured = true
				file, _, ok := SplitNodeID(r.NodeID)
				if !ok {
					file = r.NodeID
				}
				a.output(n, file+" "+string(phase), r.Outcome, section.Content, false)
			case n.state == stateFinalized:
				a.output(n, r.NodeID, r.Outcome, section.Content, false)
			default:
				a.finalize(n, r.Outcome)
				a.output(n, r.NodeID, r.Outcome, section.Content, true)
			}
		}
	}

	if r.Crash == "" {
		return
	}
	text := "error: " + r.Crash
	if n.state == stateFinalized {
		a.output(n, r.NodeID, OutcomeFail, text, false)
		return
	}
	a.finalize(n, OutcomeFail)
	a.output(n, r.NodeID, OutcomeFail, text, true)
}

// OnSessionFinish prints the completion header, flushes deferred blocks and
// the totals line.
func (a *Aggregator) OnSessionFinish(exitStatus int) {
	a.exitStatus = exitStatus
	a.finishedAt = time.Now()

	a.w.step(console.StepMajor, "Test phase completed.")
	a.renderer.Finish()
	a.w.line(a.totals())
}

func (a *Aggregator) totals() string {
	parts := []string{
		a.printer.Style(console.Pass, fmt.Sprintf("%d passed", a.counts.Passed)),
		a.printer.Style(console.Fail, fmt.Sprintf("%d failed", a.counts.Failed)),
	}
	if a.counts.Skipped > 0 {
		parts = append(parts, a.printer.Style(console.Skip, fmt.Sprintf("%d skipped", a.counts.Skipped)))
	}
	return strings.Join(parts, ", ")
}

// node returns the state of id, registering it with defaults on first sight.
func (a *Aggregator) node(id string) *node {
	n, ok := a.nodes[id]
	if !ok {
		n = &node{id: id}
		a.nodes[id] = n
	}
	return n
}

func (a *Aggregator) finalize(n *node, outcome Outcome) {
	n.state = stateFinalized
	n.outcome = outcome
	a.finalized = append(a.finalized, n.id)

	switch outcome {
	case OutcomePass:
		a.counts.Passed++
	case OutcomeFail:
		a.counts.Failed++
	case OutcomeSkip:
		a.counts.Skipped++
	}
}

// output renders one record: the marker when status is set and the node has
// none yet, and the text as a detailed block when the filter admits the
// outcome.
func (a *Aggregator) output(n *node, title string, outcome Outcome, text string, status bool) {
	if text != "" {
		n.output = append(n.output, text)
	}
	if status {
		if n.marked {
			a.w.breakLine()
		} else {
			n.marked = true
			a.w.finish(a.printer.Marker(string(outcome)))
		}
	}
	if text != "" && a.filter.Matches(outcome) {
		a.renderer.Block(a.printer.Block(string(outcome), title, text))
	}
}
