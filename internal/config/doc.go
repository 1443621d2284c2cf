// Package config resolves the options of a shakedown run.
//
// Options come from three layers, lowest precedence first: built-in defaults,
// the YAML file at ~/.config/shakedown/config.yaml (or --config), and flags
// set explicitly on the command line. log-level and cluster-timeout can only
// be set in the file.
//
// Example config.yaml:
//
//	dcos-url: https://dcos.example.com
//	ssl-no-verify: true
//	stdout: all
//	test-option:
//	  - -count=1
//	cluster-timeout: 1m
package config
