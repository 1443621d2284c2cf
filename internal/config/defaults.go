package config

import "shakedown/internal/report"

const (
	// DefaultFailPolicy stops at the first failure.
	DefaultFailPolicy = FailFast
	// DefaultStdout shows captured output of failing tests only.
	DefaultStdout = string(report.FilterFail)
	// DefaultLogLevel keeps diagnostics off the console unless something is wrong.
	DefaultLogLevel = "warn"
)

// SetDefaults fills unset options with their defaults.
func SetDefaults(o Options) Options {
	if o.Fail == "" {
		o.Fail = DefaultFailPolicy
	}
	if o.Stdout == "" {
		o.Stdout = DefaultStdout
	}
	if o.LogLevel == "" {
		o.LogLevel = DefaultLogLevel
	}
	return o
}
