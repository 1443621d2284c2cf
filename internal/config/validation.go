package config

import (
	"fmt"

	"shakedown/internal/cli"
	"shakedown/internal/report"
	"shakedown/pkg/logging"
)

// Validate checks the resolved options and returns the first problem as a
// *cli.ConfigurationError.
func Validate(o Options) error {
	if o.DCOSURL == "" {
		return &cli.ConfigurationError{Option: "dcos-url"}
	}
	switch o.Fail {
	case FailFast, FailNever:
	default:
		return &cli.ConfigurationError{
			Option:  "fail",
			Problem: fmt.Sprintf("must be one of fast, never (got %q)", o.Fail),
		}
	}
	if _, err := report.ParseFilter(o.Stdout); err != nil {
		return &cli.ConfigurationError{Option: "stdout", Problem: err.Error()}
	}
	if _, err := logging.ParseLevel(o.LogLevel); err != nil {
		return &cli.ConfigurationError{Option: "log-level", Problem: err.Error()}
	}
	if o.ClusterTimeout < 0 {
		return &cli.ConfigurationError{
			Option:  "cluster-timeout",
			Problem: fmt.Sprintf("must not be negative (got %s)", o.ClusterTimeout),
		}
	}
	return nil
}

// Filter returns the parsed stdout filter. Options must have been validated.
func (o Options) Filter() report.Filter {
	f, _ := report.ParseFilter(o.Stdout)
	return f
}

// Timing returns the output timing selected by --stdout-inline.
func (o Options) Timing() report.Timing {
	if o.StdoutInline {
		return report.TimingInline
	}
	return report.TimingDeferred
}
