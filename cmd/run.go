package cmd

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"shakedown/internal/auth"
	"shakedown/internal/cli"
	"shakedown/internal/cluster"
	"shakedown/internal/config"
	"shakedown/internal/console"
	"shakedown/internal/engine"
	"shakedown/internal/report"
	"shakedown/pkg/logging"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// testEngine runs the test suite.
type testEngine interface {
	CheckToolchain(ctx context.Context) (string, error)
	Run(ctx context.Context, opts engine.RunOptions, hooks report.Hooks) error
}

// Collaborators of a run, replaced in tests.
var (
	newClusterClient = defaultClusterClient
	newTestEngine    = defaultTestEngine
	promptPassword   = console.PromptPassword
	stdinIsTerminal  = func() bool { return isTerminal(os.Stdin) }
)

func defaultClusterClient(timeout time.Duration) (auth.Client, error) {
	path, err := cluster.DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	store, err := cluster.NewFileStore(path)
	if err != nil {
		return nil, err
	}
	var opts []cluster.ClientOption
	if timeout > 0 {
		opts = append(opts, cluster.WithTimeout(timeout))
	}
	return cluster.NewClient(store, opts...), nil
}

func defaultTestEngine(env map[string]string) testEngine {
	return engine.NewDriver(engine.WithEnv(env), engine.WithStderr(os.Stderr))
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// resolveOptions merges the config file with the command line and applies
// defaults. Validation is left to the caller.
func resolveOptions(cmd *cobra.Command, f *runFlags, args []string) (config.Options, error) {
	path := f.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return config.Options{}, err
		}
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return config.Options{}, err
	}

	flagOpts := f.opts
	flagOpts.Tests = strings.Fields(strings.Join(args, " "))
	opts := config.Merge(file, flagOpts, cmd.Flags().Changed)
	return config.SetDefaults(opts), nil
}

func runShakedown(cmd *cobra.Command, f *runFlags, args []string) error {
	out := cmd.OutOrStdout()

	opts, err := resolveOptions(cmd, f, args)
	if err != nil {
		console.NewPrinter(out).Fatal(err)
		return &reportedError{err}
	}

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		// Validate reports it once the printer is up.
		level = logging.LevelWarn
	}
	if opts.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	_, noColor := os.LookupEnv("NO_COLOR")
	tty := isTerminal(out)
	p := console.NewPrinter(out,
		console.WithQuiet(opts.Quiet),
		console.WithColor(tty && !noColor),
		console.WithInteractive(tty),
	)

	r := &run{p: p, opts: opts, version: cmd.Root().Version}
	if err := r.execute(cmd.Context()); err != nil {
		var exitErr *engine.ExitError
		if !errors.As(err, &exitErr) {
			p.Fatal(err)
			printCause(p, err)
		}
		return &reportedError{err}
	}
	return nil
}

// run is one shakedown invocation.
type run struct {
	p       *console.Printer
	opts    config.Options
	version string
}

func (r *run) execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := config.Validate(r.opts); err != nil {
		return err
	}
	if !r.opts.NoBanner {
		r.p.Banner(r.version)
	}

	r.p.Step(console.StepMajor, "Running pre-flight checks...", true)

	client, err := newClusterClient(r.opts.ClusterTimeout)
	if err != nil {
		return err
	}

	// The engine is created once the session token is known.
	checker := newTestEngine(nil)
	r.p.Step(console.StepMinor, "Checking for go toolchain...", false)
	goVersion, err := checker.CheckToolchain(ctx)
	if err != nil {
		return err
	}
	r.p.Result(goVersion)

	if r.opts.Username != "" && r.opts.Password == "" && stdinIsTerminal() {
		pw, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		r.opts.Password = pw
	}

	negotiator := auth.NewNegotiator(client, auth.WithObserver(&authNarrator{p: r.p}))

	r.p.Step(console.StepMinor, "Checking for DC/OS cluster...", false)
	stop := r.p.Spin()
	clusterVersion, err := negotiator.Connect(ctx, r.opts.DCOSURL, r.opts.SSLNoVerify)
	stop()
	if err != nil {
		return err
	}
	r.p.Result(clusterVersion)

	r.p.Step(console.StepMajor, "Authenticating with cluster...", true)
	session, err := negotiator.Authenticate(ctx, auth.Credentials{
		OAuthToken: r.opts.OAuthToken,
		Username:   r.opts.Username,
		Password:   r.opts.Password,
	})
	if err != nil {
		return err
	}

	return r.runTests(ctx, session)
}

// printCause shows why the cluster could not be reached, e.g. a TLS hint.
func printCause(p *console.Printer, err error) {
	var unreachable *cli.ClusterUnreachableError
	if errors.As(err, &unreachable) && unreachable.Cause != nil {
		p.Line(p.Style(console.Quote, "  | ") + unreachable.Cause.Error())
	}
}

func (r *run) runTests(ctx context.Context, session *auth.Session) error {
	env := map[string]string{
		"DCOS_URL":        r.opts.DCOSURL,
		"DCOS_ACS_TOKEN":  session.Token,
		"DCOS_SSL_VERIFY": "true",
	}
	if r.opts.SSLNoVerify {
		env["DCOS_SSL_VERIFY"] = "false"
	}
	if r.opts.SSHKeyFile != "" {
		env["SHAKEDOWN_SSH_KEY_FILE"] = r.opts.SSHKeyFile
	}

	agg := report.NewAggregator(r.p, r.opts.Filter(), r.opts.Timing())
	logging.Debug("Run", "Starting run %s", agg.RunID())

	runErr := newTestEngine(env).Run(ctx, engine.RunOptions{
		FailFast:    r.opts.Fail == config.FailFast,
		TestOptions: r.opts.TestOptions,
		Selectors:   r.opts.Tests,
	}, agg)

	if r.opts.Report != "" {
		if err := agg.Summary().WriteJSON(r.opts.Report); err != nil {
			logging.Error("Run", err, "Could not write the run summary")
		}
	}
	return runErr
}

// authNarrator narrates credential attempts like the other pre-flight steps.
type authNarrator struct {
	p *console.Printer
}

var attemptNarration = map[auth.Strategy]string{
	auth.StrategyExistingToken: "Validating existing ACS token...",
	auth.StrategyOAuth:         "Validating OAuth token...",
	auth.StrategyPassword:      "Validating username and password...",
}

func (n *authNarrator) AttemptStarted(s auth.Strategy) {
	n.p.Step(console.StepMinor, attemptNarration[s], false)
}

func (n *authNarrator) AttemptFinished(a auth.Attempt) {
	if a.Succeeded() {
		n.p.Result("ok")
		return
	}
	n.p.Failure("authentication failed.")
}
