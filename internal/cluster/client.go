package cluster

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shakedown/pkg/logging"
	pkgstrings "shakedown/pkg/strings"

	"golang.org/x/oauth2"
)

// API paths on the cluster's admin router.
const (
	versionPath = "/dcos-metadata/dcos-version.json"
	leaderPath  = "/mesos_dns/v1/hosts/leader.mesos"
	loginPath   = "/acs/api/v1/auth/login"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 30 * time.Second

// maxErrorBodyLen bounds the response text quoted in a StatusError.
const maxErrorBodyLen = 200

// ErrUnauthorized is returned when the cluster rejects the credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNoURL is returned when no cluster URL is configured.
var ErrNoURL = errors.New("no cluster URL configured (" + KeyURL + ")")

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap maps authentication statuses onto ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Client talks to the cluster's control API. URL, TLS verification and the
// session token are read from the Store on every call, so writes made during
// negotiation take effect immediately.
type Client struct {
	store   Store
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client backed by store.
func NewClient(store Store, opts ...ClientOption) *Client {
	c := &Client{store: store, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetConfigValue returns a persisted configuration value.
func (c *Client) GetConfigValue(key string) (string, bool) {
	v, ok := c.store.Get(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetConfigValue persists a configuration value.
func (c *Client) SetConfigValue(key, value string) error {
	return c.store.Set(key, value)
}

// QueryVersion returns the cluster version. It needs no authentication and
// fails when the cluster cannot be reached.
func (c *Client) QueryVersion(ctx context.Context) (string, error) {
	var body struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, versionPath, nil, false, &body); err != nil {
		return "", err
	}
	if body.Version == "" {
		return "", fmt.Errorf("GET %s: response carries no version", versionPath)
	}
	return body.Version, nil
}

// Leader returns the address of the leading master. The request is
// authenticated with the stored session token.
func (c *Client) Leader(ctx context.Context) (string, error) {
	var hosts []struct {
		Host string `json:"host"`
		IP   string `json:"ip"`
	}
	if err := c.do(ctx, http.MethodGet, leaderPath, nil, true, &hosts); err != nil {
		return "", err
	}
	if len(hosts) == 0 {
		return "", fmt.Errorf("GET %s: no leader reported", leaderPath)
	}
	return hosts[0].IP, nil
}

// ProbeIdentity validates the stored session token with a leader lookup.
func (c *Client) ProbeIdentity(ctx context.Context) error {
	_, err := c.Leader(ctx)
	return err
}

// ExchangeOAuth trades an OAuth token for a cluster session token.
func (c *Client) ExchangeOAuth(ctx context.Context, token string) (string, error) {
	return c.login(ctx, map[string]string{"token": token})
}

// ExchangePassword trades a username and password for a session token.
func (c *Client) ExchangePassword(ctx context.Context, username, password string) (string, error) {
	return c.login(ctx, map[string]string{"uid": username, "password": password})
}

func (c *Client) login(ctx context.Context, payload map[string]string) (string, error) {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, loginPath, payload, false, &body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", fmt.Errorf("POST %s: response carries no token", loginPath)
	}
	return body.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, authenticated bool, out interface{}) error {
	baseURL, ok := c.GetConfigValue(KeyURL)
	if !ok {
		return ErrNoURL
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient(ctx, authenticated).Do(req)
	if err != nil {
		logging.Debug("ClusterClient", "%s %s failed: %v", method, path, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logging.Debug("ClusterClient", "%s %s returned %d", method, path, resp.StatusCode)
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: pkgstrings.Abbreviate(string(snippet), maxErrorBodyLen)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

// httpClient returns a client for one request. Authenticated requests carry
// the stored token as a bearer credential through an oauth2 transport.
func (c *Client) httpClient(ctx context.Context, authenticated bool) *http.Client {
	base := &http.Client{Transport: c.transport()}
	if !authenticated {
		return base
	}
	token, _ := c.GetConfigValue(KeyACSToken)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

func (c *Client) transport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if !c.verifyTLS() {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator asked for --ssl-no-verify
	}
	return t
}

func (c *Client) verifyTLS() bool {
	v, ok := c.GetConfigValue(KeySSLVerify)
	if !ok {
		return true
	}
	return !strings.EqualFold(v, "false")
}
