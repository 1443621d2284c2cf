package config

import "time"

// FailPolicy controls whether the engine stops at the first failing test.
type FailPolicy string

const (
	FailFast  FailPolicy = "fast"
	FailNever FailPolicy = "never"
)

// Options is the resolved configuration of one shakedown run. Keys mirror the
// long flag names so a config file reads like a saved command line.
type Options struct {
	DCOSURL      string     `yaml:"dcos-url,omitempty"`
	Fail         FailPolicy `yaml:"fail,omitempty"`
	SSHKeyFile   string     `yaml:"ssh-key-file,omitempty"`
	Quiet        bool       `yaml:"quiet,omitempty"`
	SSLNoVerify  bool       `yaml:"ssl-no-verify,omitempty"`
	Stdout       string     `yaml:"stdout,omitempty"`
	StdoutInline bool       `yaml:"stdout-inline,omitempty"`
	TestOptions  []string   `yaml:"test-option,omitempty"`
	OAuthToken   string     `yaml:"oauth-token,omitempty"`
	Username     string     `yaml:"username,omitempty"`
	Password     string     `yaml:"password,omitempty"`
	NoBanner     bool       `yaml:"no-banner,omitempty"`
	Report       string     `yaml:"report,omitempty"`
	Debug        bool       `yaml:"debug,omitempty"`

	// LogLevel and ClusterTimeout have no flag.
	LogLevel       string        `yaml:"log-level,omitempty"`
	ClusterTimeout time.Duration `yaml:"cluster-timeout,omitempty"`

	// Tests holds the selectors given as arguments; never read from file.
	Tests []string `yaml:"-"`
}
