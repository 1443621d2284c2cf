package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
)

// NodeResult is the final outcome of one node and the text captured for it.
type NodeResult struct {
	NodeID  string  `json:"node_id"`
	Outcome Outcome `json:"outcome"`
	Output  string  `json:"output,omitempty"`
}

// Summary is the machine readable record of a run.
type Summary struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	ExitStatus int          `json:"exit_status"`
	Counts     Counts       `json:"counts"`
	Collected  []NodeResult `json:"collected,omitempty"`
	Tests      []NodeResult `json:"tests"`
}

// Summary returns the run record with tests in finalization order.
// Captured text is stripped of ANSI escapes.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		RunID:      a.runID,
		StartedAt:  a.startedAt,
		FinishedAt: a.finishedAt,
		ExitStatus: a.exitStatus,
		Counts:     a.counts,
		Tests:      make([]NodeResult, 0, len(a.finalized)),
	}
	for _, c := range a.collected {
		c.Output = stripansi.Strip(c.Output)
		s.Collected = append(s.Collected, c)
	}
	for _, id := range a.finalized {
		n := a.nodes[id]
		s.Tests = append(s.Tests, NodeResult{
			NodeID:  n.id,
			Outcome: n.outcome,
			Output:  stripansi.Strip(strings.Join(n.output, "\n")),
		})
	}
	return s
}

// WriteJSON writes the summary to path.
func (s Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
