package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"shakedown/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/shakedown"
	configFileName = "config.yaml"
)

// osUserHomeDir is swapped in tests.
var osUserHomeDir = os.UserHomeDir

// DefaultConfigPath returns ~/.config/shakedown/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// LoadFile reads options from a YAML file. A missing file is not an error and
// yields empty options.
func LoadFile(path string) (Options, error) {
	var opts Options

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config file found at %s, using flags and defaults", path)
			return opts, nil
		}
		return Options{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return opts, nil
}

// Merge overlays flag values on file values. changed reports whether a flag
// was set explicitly on the command line; explicit flags always win, and
// file values fill in everything else.
func Merge(file, flags Options, changed func(flag string) bool) Options {
	out := file

	pickString := func(flag string, dst *string, v string) {
		if changed(flag) || *dst == "" {
			*dst = v
		}
	}
	pickBool := func(flag string, dst *bool, v bool) {
		if changed(flag) {
			*dst = v
		}
	}

	pickString("dcos-url", &out.DCOSURL, flags.DCOSURL)
	failPolicy := string(out.Fail)
	pickString("fail", &failPolicy, string(flags.Fail))
	out.Fail = FailPolicy(failPolicy)
	pickString("ssh-key-file", &out.SSHKeyFile, flags.SSHKeyFile)
	pickString("stdout", &out.Stdout, flags.Stdout)
	pickString("oauth-token", &out.OAuthToken, flags.OAuthToken)
	pickString("username", &out.Username, flags.Username)
	pickString("password", &out.Password, flags.Password)
	pickString("report", &out.Report, flags.Report)

	pickBool("quiet", &out.Quiet, flags.Quiet)
	pickBool("ssl-no-verify", &out.SSLNoVerify, flags.SSLNoVerify)
	pickBool("stdout-inline", &out.StdoutInline, flags.StdoutInline)
	pickBool("no-banner", &out.NoBanner, flags.NoBanner)
	pickBool("debug", &out.Debug, flags.Debug)

	if changed("test-option") || len(out.TestOptions) == 0 {
		out.TestOptions = flags.TestOptions
	}
	out.Tests = flags.Tests
	return out
}
