package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shakedown/internal/cli"
	"shakedown/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigPath(t *testing.T) {
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()
	osUserHomeDir = func() (string, error) { return "/home/operator", nil }

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/operator/.config/shakedown/config.yaml", path)
}

func TestLoadFile_Missing(t *testing.T) {
	opts, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Options{}, opts)
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
dcos-url: https://dcos.example.com
fail: never
stdout: all
ssl-no-verify: true
log-level: info
cluster-timeout: 45s
test-option:
  - -count=1
  - -v
`)

	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dcos.example.com", opts.DCOSURL)
	assert.Equal(t, FailNever, opts.Fail)
	assert.Equal(t, "all", opts.Stdout)
	assert.True(t, opts.SSLNoVerify)
	assert.Equal(t, []string{"-count=1", "-v"}, opts.TestOptions)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, 45*time.Second, opts.ClusterTimeout)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeConfigFile(t, "dcos-url: [unterminated")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	file := Options{
		DCOSURL:     "https://from-file",
		Stdout:      "all",
		SSLNoVerify: true,
		TestOptions: []string{"-count=1"},
	}
	flags := Options{
		DCOSURL:  "https://from-flag",
		Stdout:   "fail",
		Username: "bootstrapuser",
		Tests:    []string{"./..."},
	}
	changed := map[string]bool{"dcos-url": true, "username": true}

	merged := Merge(file, flags, func(name string) bool { return changed[name] })

	assert.Equal(t, "https://from-flag", merged.DCOSURL, "explicit flag wins")
	assert.Equal(t, "all", merged.Stdout, "file value kept when flag left at default")
	assert.True(t, merged.SSLNoVerify)
	assert.Equal(t, "bootstrapuser", merged.Username)
	assert.Equal(t, []string{"-count=1"}, merged.TestOptions)
	assert.Equal(t, []string{"./..."}, merged.Tests)
}

func TestSetDefaults(t *testing.T) {
	opts := SetDefaults(Options{})
	assert.Equal(t, FailFast, opts.Fail)
	assert.Equal(t, "fail", opts.Stdout)
	assert.Equal(t, "warn", opts.LogLevel)

	opts = SetDefaults(Options{Fail: FailNever, Stdout: "none", LogLevel: "debug"})
	assert.Equal(t, FailNever, opts.Fail)
	assert.Equal(t, "none", opts.Stdout)
	assert.Equal(t, "debug", opts.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		option string
	}{
		{"missing url", Options{Fail: FailFast, Stdout: "fail"}, "dcos-url"},
		{"bad fail policy", Options{DCOSURL: "https://x", Fail: "sometimes", Stdout: "fail"}, "fail"},
		{"bad filter", Options{DCOSURL: "https://x", Fail: FailFast, Stdout: "loud"}, "stdout"},
		{"bad log level", Options{DCOSURL: "https://x", Fail: FailFast, Stdout: "fail", LogLevel: "loud"}, "log-level"},
		{"negative timeout", Options{DCOSURL: "https://x", Fail: FailFast, Stdout: "fail", ClusterTimeout: -time.Second}, "cluster-timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.opts)
			var cfgErr *cli.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.option, cfgErr.Option)
		})
	}

	assert.NoError(t, Validate(SetDefaults(Options{DCOSURL: "https://x"})))
}

func TestOptionsFilterAndTiming(t *testing.T) {
	opts := Options{Stdout: "skip", StdoutInline: true}
	assert.Equal(t, report.FilterSkip, opts.Filter())
	assert.Equal(t, report.TimingInline, opts.Timing())
	assert.Equal(t, report.TimingDeferred, Options{}.Timing())
}
