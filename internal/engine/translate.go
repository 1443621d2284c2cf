package engine

import (
	"sort"
	"strings"

	"shakedown/internal/report"
	"shakedown/pkg/logging"
)

// CrashMessage is reported for tests still running when their test binary
// exits.
const CrashMessage = "test binary exited before the test completed"

func nodeID(pkg, test string) string {
	return pkg + report.NodeSeparator + test
}

func joinLines(lines []string) string {
	return strings.TrimRight(strings.Join(lines, ""), "\n")
}

// collector turns the events of `go test -list` into collect reports, one per
// package.
type collector struct {
	hooks  report.Hooks
	output map[string][]string
	build  map[string][]string
	tests  map[string]int
	done   map[string]bool
	order  []string
}

func newCollector(hooks report.Hooks) *collector {
	return &collector{
		hooks:  hooks,
		output: make(map[string][]string),
		build:  make(map[string][]string),
		tests:  make(map[string]int),
		done:   make(map[string]bool),
	}
}

func (c *collector) handle(ev Event) {
	pkg := ev.pkg()
	if pkg == "" {
		return
	}
	if _, seen := c.output[pkg]; !seen {
		c.output[pkg] = nil
		c.order = append(c.order, pkg)
	}

	switch {
	case ev.Action == actionBuildOutput:
		c.build[pkg] = append(c.build[pkg], ev.Output)
	case ev.Action == actionOutput:
		if isListedTest(ev.Output) {
			c.tests[pkg]++
			return
		}
		c.output[pkg] = append(c.output[pkg], ev.Output)
	case ev.isTerminal() && ev.Test == "":
		c.report(pkg, ev.Action)
	}
}

// finish reports packages whose stream ended without a result.
func (c *collector) finish() {
	for _, pkg := range c.order {
		if !c.done[pkg] {
			c.report(pkg, actionFail)
		}
	}
}

func (c *collector) report(pkg, action string) {
	if c.done[pkg] {
		return
	}
	c.done[pkg] = true

	r := report.CollectReport{NodeID: pkg}
	switch action {
	case actionPass:
		r.Outcome = report.OutcomePass
		logging.Debug("Engine", "Collected %d tests in %s", c.tests[pkg], pkg)
	case actionSkip:
		r.Outcome = report.OutcomeSkip
		r.LongText = "no test files"
	default:
		r.Outcome = report.OutcomeFail
		r.LongText = joinLines(c.build[pkg])
		if r.LongText == "" {
			r.LongText = joinLines(c.output[pkg])
		}
	}
	c.hooks.OnCollect(r)
}

// isListedTest matches the names `go test -list` prints, one per line.
func isListedTest(line string) bool {
	name := strings.TrimSpace(line)
	if name == "" || strings.ContainsAny(name, " \t") {
		return false
	}
	for _, prefix := range []string{"Test", "Example", "Fuzz", "Benchmark"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// testState is the translator's view of one test.
type testState struct {
	id       string
	output   []string
	crash    []string
	crashing bool
	finished bool
}

// packageState tracks the tests of one package in the execution pass.
type packageState struct {
	tests      map[string]*testState
	running    []string
	lastFailed string
	crash      []string
}

// translator turns the execution events of `go test -json` into hook calls.
type translator struct {
	hooks    report.Hooks
	packages map[string]*packageState
	order    []string
}

func newTranslator(hooks report.Hooks) *translator {
	return &translator{hooks: hooks, packages: make(map[string]*packageState)}
}

func (t *translator) pkgState(pkg string) *packageState {
	ps, ok := t.packages[pkg]
	if !ok {
		ps = &packageState{tests: make(map[string]*testState)}
		t.packages[pkg] = ps
		t.order = append(t.order, pkg)
	}
	return ps
}

func (t *translator) handle(ev Event) {
	pkg := ev.pkg()
	if pkg == "" || ev.Action == actionStart || ev.Action == actionBuildOutput || ev.Action == actionBuildFail {
		return
	}
	ps := t.pkgState(pkg)

	if ev.Test == "" {
		switch {
		case ev.Action == actionOutput:
			if isPanic(ev.Output) || len(ps.crash) > 0 {
				ps.crash = append(ps.crash, ev.Output)
			}
		case ev.isTerminal():
			t.finishPackage(pkg, ps)
		}
		return
	}

	ts, ok := ps.tests[ev.Test]
	if !ok {
		ts = &testState{id: nodeID(pkg, ev.Test)}
		ps.tests[ev.Test] = ts
	}

	switch {
	case ev.Action == actionRun:
		ps.running = append(ps.running, ev.Test)
		t.hooks.OnStatus(report.StatusReport{NodeID: ts.id, Phase: report.PhaseSetup, Outcome: report.OutcomePass})
	case ev.Action == actionOutput:
		t.output(ts, ev.Output)
	case ev.isTerminal():
		if ts.finished {
			return
		}
		t.finishTest(ps, ev.Test, ts, report.Outcome(ev.Action))
	}
}

func (t *translator) output(ts *testState, line string) {
	if isPanic(line) {
		ts.crashing = true
	}
	switch {
	case ts.crashing:
		ts.crash = append(ts.crash, line)
	case ts.finished || isFraming(line):
	default:
		ts.output = append(ts.output, line)
	}
}

func (t *translator) finishTest(ps *packageState, name string, ts *testState, outcome report.Outcome) {
	ts.finished = true
	ps.running = remove(ps.running, name)
	if outcome == report.OutcomeFail {
		ps.lastFailed = name
	}

	var sections []report.Section
	if out := joinLines(ts.output); out != "" {
		sections = append(sections, report.Section{
			Name:    report.CaptureName("stdout", report.PhaseCall),
			Phase:   report.PhaseCall,
			Content: out,
		})
	}
	crash := joinLines(ts.crash)
	ts.crash = nil

	t.hooks.OnStatus(report.StatusReport{NodeID: ts.id, Phase: report.PhaseCall, Outcome: outcome})
	t.hooks.OnLogReport(report.LogReport{NodeID: ts.id, Phase: report.PhaseCall, Outcome: outcome, Sections: sections, Crash: crash})
	t.hooks.OnStatus(report.StatusReport{NodeID: ts.id, Phase: report.PhaseTeardown, Outcome: outcome})
}

// finishPackage settles a package after its binary exited: tests that never
// finished crashed, and crash text printed after a test finished is attached
// to that test.
func (t *translator) finishPackage(pkg string, ps *packageState) {
	pkgCrash := joinLines(ps.crash)
	ps.crash = nil

	running := ps.running
	ps.running = nil
	for _, name := range running {
		ts := ps.tests[name]
		ts.finished = true
		crash := joinLines(ts.crash)
		if crash == "" {
			crash = pkgCrash
		}
		if crash == "" {
			crash = CrashMessage
		}

		var sections []report.Section
		if out := joinLines(ts.output); out != "" {
			sections = append(sections, report.Section{
				Name:    report.CaptureName("stdout", report.PhaseCall),
				Phase:   report.PhaseCall,
				Content: out,
			})
		}
		t.hooks.OnLogReport(report.LogReport{NodeID: ts.id, Phase: report.PhaseCall, Outcome: report.OutcomeFail, Sections: sections, Crash: crash})
		t.hooks.OnStatus(report.StatusReport{NodeID: ts.id, Phase: report.PhaseTeardown, Outcome: report.OutcomeFail})
	}

	names := make([]string, 0, len(ps.tests))
	for name := range ps.tests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ts := ps.tests[name]
		if len(ts.crash) == 0 {
			continue
		}
		t.hooks.OnLogReport(report.LogReport{NodeID: ts.id, Phase: report.PhaseCall, Outcome: report.OutcomeFail, Crash: joinLines(ts.crash)})
		ts.crash = nil
	}

	if pkgCrash != "" && len(running) == 0 {
		if ps.lastFailed != "" {
			ts := ps.tests[ps.lastFailed]
			t.hooks.OnLogReport(report.LogReport{NodeID: ts.id, Phase: report.PhaseCall, Outcome: report.OutcomeFail, Crash: pkgCrash})
		} else {
			logging.Warn("Engine", "Dropping crash output of %s, no test to attach it to", pkg)
		}
	}

	delete(t.packages, pkg)
}

// finish settles packages whose stream ended without a package result.
func (t *translator) finish() {
	for _, pkg := range t.order {
		if ps, ok := t.packages[pkg]; ok {
			t.finishPackage(pkg, ps)
		}
	}
}

func remove(list []string, name string) []string {
	for i, v := range list {
		if v == name {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
