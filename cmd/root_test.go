package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "shakedown [flags] [TESTS...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()

	shorthands := map[string]string{
		"dcos-url":      "u",
		"fail":          "f",
		"ssh-key-file":  "i",
		"quiet":         "q",
		"ssl-no-verify": "k",
		"stdout":        "o",
		"stdout-inline": "s",
		"test-option":   "p",
		"oauth-token":   "t",
		"username":      "n",
		"password":      "w",
	}
	for name, short := range shorthands {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand, name)
	}
	for _, name := range []string{"no-banner", "config", "report", "debug"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestVersionFlag(t *testing.T) {
	cmd := newRootCmd()
	cmd.Version = "1.0.0"

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--version"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "shakedown version 1.0.0\n", buf.String())
}

func TestHelpMentionsAllFlags(t *testing.T) {
	cmd := newRootCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	for _, flag := range []string{"--dcos-url", "--ssl-no-verify", "--stdout-inline", "--test-option", "--no-banner"} {
		assert.Contains(t, buf.String(), flag)
	}
}
