package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"shakedown/internal/cli"
	"shakedown/internal/report"
	"shakedown/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// DefaultSelector is used when no test selectors are given.
const DefaultSelector = "./..."

// maxLineSize bounds a single line of engine output.
const maxLineSize = 4 * 1024 * 1024

// execCommandContext is replaced in tests.
var execCommandContext = exec.CommandContext

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// ExitError carries the exit status of a test run that did not pass.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("go test exited with status %d", e.Code)
}

// RunOptions selects and configures the tests to run.
type RunOptions struct {
	// FailFast stops the run after the first failing test.
	FailFast bool
	// TestOptions are passed to `go test` verbatim.
	TestOptions []string
	// Selectors are package patterns; DefaultSelector when empty.
	Selectors []string
}

// Driver runs the go toolchain.
type Driver struct {
	goBin  string
	env    map[string]string
	stderr io.Writer
}

// Option configures a Driver.
type Option func(*Driver)

// WithGoBinary sets the go binary, "go" from PATH by default.
func WithGoBinary(path string) Option {
	return func(d *Driver) { d.goBin = path }
}

// WithEnv adds variables to the environment of the go command and, through
// it, of every test binary.
func WithEnv(env map[string]string) Option {
	return func(d *Driver) {
		for k, v := range env {
			d.env[k] = v
		}
	}
}

// WithStderr receives the go command's diagnostic output, e.g. messages
// about unmatched patterns.
func WithStderr(w io.Writer) Option {
	return func(d *Driver) { d.stderr = w }
}

// NewDriver creates a driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{goBin: "go", env: make(map[string]string)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CheckToolchain verifies the go binary is installed and returns its version.
func (d *Driver) CheckToolchain(ctx context.Context) (string, error) {
	path, err := lookPath(d.goBin)
	if err != nil {
		return "", &cli.DependencyMissingError{Name: "go", Hint: "install it from https://go.dev/dl/", Reason: err}
	}

	out, err := execCommandContext(ctx, path, "version").Output()
	if err != nil {
		return "", &cli.DependencyMissingError{Name: "go", Hint: "check that " + path + " is a working go toolchain", Reason: err}
	}
	version := strings.TrimSpace(string(out))
	logging.Debug("Engine", "Using %s (%s)", path, version)
	return version, nil
}

// Args returns the arguments of the collection and execution passes.
func (o RunOptions) Args() (collect, execute []string) {
	selectors := o.Selectors
	if len(selectors) == 0 {
		selectors = []string{DefaultSelector}
	}

	collect = append([]string{"test", "-list", ".", "-json"}, o.TestOptions...)
	collect = append(collect, selectors...)

	execute = []string{"test", "-json"}
	if o.FailFast {
		execute = append(execute, "-failfast")
	}
	execute = append(execute, o.TestOptions...)
	execute = append(execute, selectors...)
	return collect, execute
}

// Run collects and executes the selected tests, reporting progress to hooks.
// A run whose tests did not all pass returns *ExitError.
func (d *Driver) Run(ctx context.Context, opts RunOptions, hooks report.Hooks) error {
	collectArgs, execArgs := opts.Args()

	c := newCollector(hooks)
	if _, err := d.run(ctx, collectArgs, c.handle); err != nil {
		return err
	}
	c.finish()

	hooks.OnSessionStart()

	t := newTranslator(hooks)
	code, err := d.run(ctx, execArgs, t.handle)
	t.finish()
	if err != nil {
		// Flush what was reported so far; deferred blocks print on finish.
		hooks.OnSessionFinish(1)
		return err
	}

	hooks.OnSessionFinish(code)
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// run executes one go command and passes every test2json event to handle.
// Only the stdout pump calls handle, so hook calls stay sequential. It
// returns the command's exit status.
func (d *Driver) run(ctx context.Context, args []string, handle func(Event)) (int, error) {
	cmd := execCommandContext(ctx, d.goBin, args...)
	cmd.Env = append(cmd.Environ(), d.environ()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to attach to go test output: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to attach to go test errors: %w", err)
	}

	logging.Debug("Engine", "Running %s %s", d.goBin, strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start go test: %w", err)
	}

	var (
		diag bytes.Buffer
		g    errgroup.Group
	)
	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			ev, ok := parseEvent(scanner.Bytes())
			if !ok {
				logging.Debug("Engine", "go test: %s", scanner.Text())
				continue
			}
			handle(ev)
		}
		return scanner.Err()
	})
	g.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			diag.WriteString(line + "\n")
			if d.stderr != nil {
				fmt.Fprintln(d.stderr, line)
			}
		}
		return scanner.Err()
	})

	pumpErr := g.Wait()
	waitErr := cmd.Wait()
	if pumpErr != nil {
		return 0, fmt.Errorf("failed to read go test output: %w", pumpErr)
	}
	if waitErr == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ExitCode() > 0 {
		if diag.Len() > 0 {
			logging.Debug("Engine", "go test diagnostics:\n%s", strings.TrimRight(diag.String(), "\n"))
		}
		return exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	return 0, fmt.Errorf("go test failed: %w", waitErr)
}

// environ renders the extra environment in a stable order.
func (d *Driver) environ() []string {
	keys := make([]string, 0, len(d.env))
	for k := range d.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+d.env[k])
	}
	return env
}
