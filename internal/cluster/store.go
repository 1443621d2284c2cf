package cluster

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shakedown/pkg/logging"

	"github.com/BurntSushi/toml"
)

// Configuration keys understood by the cluster client.
const (
	KeyURL       = "core.dcos_url"
	KeySSLVerify = "core.ssl_verify"
	KeyACSToken  = "core.dcos_acs_token"
)

// DefaultConfigDir is the DC/OS CLI configuration directory below $HOME.
const DefaultConfigDir = ".dcos"

const configFileName = "dcos.toml"

// Store persists cluster client configuration values.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// DefaultConfigPath returns $DCOS_CONFIG, or ~/.dcos/dcos.toml.
func DefaultConfigPath() (string, error) {
	if path := os.Getenv("DCOS_CONFIG"); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, configFileName), nil
}

// FileStore keeps configuration in a TOML file shaped like the DC/OS CLI
// config: a dotted key "core.dcos_url" lives in table [core] as dcos_url.
// The file is created with 0600 permissions as it holds the session token.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]interface{}
}

// NewFileStore loads path. A missing file yields an empty store; it is
// created on the first Set.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]interface{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read cluster config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse cluster config %s: %w", path, err)
	}
	return s, nil
}

// Get returns the value stored under a dotted key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	section, name := splitKey(key)
	table, ok := s.values[section].(map[string]interface{})
	if !ok {
		return "", false
	}
	v, ok := table[name]
	if !ok {
		return "", false
	}
	if str, ok := v.(string); ok {
		return str, true
	}
	return fmt.Sprint(v), true
}

// Set stores value under a dotted key and rewrites the file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	section, name := splitKey(key)
	table, ok := s.values[section].(map[string]interface{})
	if !ok {
		table = make(map[string]interface{})
		s.values[section] = table
	}
	table[name] = value

	if err := s.write(); err != nil {
		return err
	}
	// Token values are never logged.
	logging.Debug("ClusterClient", "Updated %s in %s", key, s.path)
	return nil
}

func (s *FileStore) write() error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		logging.Warn("ClusterClient", "Config directory %s not found, creating it", dir)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s.values); err != nil {
		return fmt.Errorf("failed to encode cluster config: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write cluster config %s: %w", s.path, err)
	}
	return nil
}

// splitKey maps "core.dcos_url" to ("core", "dcos_url"). Keys without a dot
// live in the core table.
func splitKey(key string) (section, name string) {
	if section, name, ok := strings.Cut(key, "."); ok {
		return section, name
	}
	return "core", key
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns a store seeded with values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	s := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
