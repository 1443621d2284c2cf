package cmd

import (
	"errors"
	"fmt"
	"os"

	"shakedown/internal/config"
	"shakedown/internal/engine"

	"github.com/spf13/cobra"
)

// Exit codes for pre-flight failures. A test run exits with the status of
// the go command instead.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a configuration, dependency, cluster or
	// authentication failure.
	ExitCodeError = 1
)

// runFlags holds the values bound to the root command's flags.
type runFlags struct {
	opts       config.Options
	configPath string
	fail       string
}

// rootCmd represents the base command for the shakedown application.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "shakedown [flags] [TESTS...]",
		Short: "DC/OS test harness for go test suites",
		Long: `shakedown runs go test suites against a DC/OS cluster.

Before any test runs it checks the go toolchain, verifies that the cluster
is reachable and negotiates a session token from an existing token, an OAuth
token, or a username and password. Test progress is reported per package and
per test; captured output is shown for the outcomes selected by --stdout.

TESTS are go package patterns, e.g. "./marathon/... ./smoke". They default
to "./...".`,
		Args: cobra.ArbitraryArgs,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		// Errors are printed by the run itself, styled like the rest of its output.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.opts.Fail = config.FailPolicy(f.fail)
			return runShakedown(cmd, f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.opts.DCOSURL, "dcos-url", "u", "", "URL to a running DC/OS cluster.")
	flags.StringVarP(&f.fail, "fail", "f", "", "Sets the test failure mode: 'fast' stops at the first failure, 'never' runs everything (default \"fast\").")
	flags.StringVarP(&f.opts.SSHKeyFile, "ssh-key-file", "i", "", "Path to the SSH keyfile to use for authentication.")
	flags.BoolVarP(&f.opts.Quiet, "quiet", "q", false, "Suppress all superfluous output.")
	flags.BoolVarP(&f.opts.SSLNoVerify, "ssl-no-verify", "k", false, "Suppress SSL certificate verification.")
	flags.StringVarP(&f.opts.Stdout, "stdout", "o", "", "Print the standard output of tests with the specified result: pass, fail, skip, all or none (default \"fail\").")
	flags.BoolVarP(&f.opts.StdoutInline, "stdout-inline", "s", false, "Display output inline rather than after test phase completion.")
	flags.StringArrayVarP(&f.opts.TestOptions, "test-option", "p", nil, "Additional option to pass to go test; repeatable.")
	flags.StringVarP(&f.opts.OAuthToken, "oauth-token", "t", "", "OAuth token to use for DC/OS authentication.")
	flags.StringVarP(&f.opts.Username, "username", "n", "", "Username to use for DC/OS authentication.")
	flags.StringVarP(&f.opts.Password, "password", "w", "", "Password to use for DC/OS authentication.")
	flags.BoolVar(&f.opts.NoBanner, "no-banner", false, "Suppress the product banner.")
	flags.StringVar(&f.opts.Report, "report", "", "Write a JSON summary of the run to this file.")
	flags.BoolVar(&f.opts.Debug, "debug", false, "Enable debug logging on stderr.")
	flags.StringVar(&f.configPath, "config", "", "Config file (default is $HOME/.config/shakedown/config.yaml).")

	cmd.SetVersionTemplate(`{{printf "shakedown version %s\n" .Version}}`)
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(getExitCode(err))
	}
}

// reportedError marks an error the run has already shown to the operator.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// getExitCode determines the exit code: the go command's status for a test
// run, ExitCodeError for everything that stopped the run before it started.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var exitErr *engine.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return ExitCodeError
}
