package engine

import (
	"encoding/json"
	"strings"
	"time"
)

// Action values emitted by test2json.
const (
	actionStart       = "start"
	actionRun         = "run"
	actionOutput      = "output"
	actionPass        = "pass"
	actionFail        = "fail"
	actionSkip        = "skip"
	actionBuildOutput = "build-output"
	actionBuildFail   = "build-fail"
)

// Event is one line of `go test -json` output.
type Event struct {
	Time        time.Time `json:"Time"`
	Action      string    `json:"Action"`
	Package     string    `json:"Package"`
	ImportPath  string    `json:"ImportPath"`
	Test        string    `json:"Test"`
	Elapsed     float64   `json:"Elapsed"`
	Output      string    `json:"Output"`
	FailedBuild string    `json:"FailedBuild"`
}

// parseEvent decodes a line of engine output. Lines that are not test2json
// events, like messages the go command prints itself, return ok == false.
func parseEvent(line []byte) (Event, bool) {
	var ev Event
	if len(line) == 0 || line[0] != '{' {
		return ev, false
	}
	if err := json.Unmarshal(line, &ev); err != nil || ev.Action == "" {
		return ev, false
	}
	return ev, true
}

// isTerminal reports whether the action ends a test or a package.
func (e Event) isTerminal() bool {
	return e.Action == actionPass || e.Action == actionFail || e.Action == actionSkip
}

// pkg returns the package an event belongs to. Build events only carry the
// import path, suffixed with the test variant as in "x [x.test]".
func (e Event) pkg() string {
	if e.Package != "" {
		return e.Package
	}
	path, _, _ := strings.Cut(e.ImportPath, " ")
	return path
}

// framingLines are the markers the testing package prints around tests.
var framingLines = []string{
	"=== RUN", "=== PAUSE", "=== CONT", "=== NAME",
	"--- PASS", "--- FAIL", "--- SKIP", "--- BENCH",
}

func isFraming(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, prefix := range framingLines {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func isPanic(line string) bool {
	return strings.HasPrefix(line, "panic: ") || strings.HasPrefix(line, "fatal error: ")
}
