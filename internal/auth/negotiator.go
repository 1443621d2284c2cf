package auth

import (
	"context"
	"errors"
	"fmt"

	"shakedown/internal/cli"
	"shakedown/internal/cluster"
	"shakedown/pkg/logging"
)

// clientSubsystem is the log subsystem of the cluster client. It is muted
// while the negotiator writes configuration.
const clientSubsystem = "ClusterClient"

// Client is the cluster capability the negotiator needs.
type Client interface {
	GetConfigValue(key string) (string, bool)
	SetConfigValue(key, value string) error
	ProbeIdentity(ctx context.Context) error
	QueryVersion(ctx context.Context) (string, error)
	ExchangeOAuth(ctx context.Context, token string) (string, error)
	ExchangePassword(ctx context.Context, username, password string) (string, error)
}

// Strategy identifies a credential strategy.
type Strategy int

const (
	StrategyExistingToken Strategy = iota
	StrategyOAuth
	StrategyPassword
)

func (s Strategy) String() string {
	switch s {
	case StrategyExistingToken:
		return "existing token"
	case StrategyOAuth:
		return "oauth token"
	case StrategyPassword:
		return "username and password"
	default:
		return "unknown"
	}
}

// Credentials are the operator-supplied inputs. Empty fields are absent.
type Credentials struct {
	OAuthToken string
	Username   string
	Password   string
}

// Attempt is the result of running one strategy.
type Attempt struct {
	Strategy Strategy
	Token    string
	Err      error
}

// Succeeded reports whether the strategy produced a valid token.
func (a Attempt) Succeeded() bool {
	return a.Err == nil && a.Token != ""
}

// Session is the outcome of a successful negotiation.
type Session struct {
	Token    string
	Strategy Strategy
	// Attempts holds every strategy tried, the successful one last.
	Attempts []Attempt
}

// Observer is told about each attempt as it happens.
type Observer interface {
	AttemptStarted(s Strategy)
	AttemptFinished(a Attempt)
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithObserver sets the attempt observer.
func WithObserver(o Observer) Option {
	return func(n *Negotiator) { n.observer = o }
}

// Negotiator runs the connect step and the credential chain.
type Negotiator struct {
	client   Client
	observer Observer
}

// NewNegotiator creates a negotiator over client.
func NewNegotiator(client Client, opts ...Option) *Negotiator {
	n := &Negotiator{client: client}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Connect records url and the TLS setting, then probes the cluster version.
// A failed probe is returned as *cli.ClusterUnreachableError.
func (n *Negotiator) Connect(ctx context.Context, url string, sslNoVerify bool) (string, error) {
	err := n.withMutedClient(func() error {
		if sslNoVerify {
			if err := n.client.SetConfigValue(cluster.KeySSLVerify, "false"); err != nil {
				return err
			}
		}
		return n.client.SetConfigValue(cluster.KeyURL, url)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store cluster configuration: %w", err)
	}

	version, err := n.client.QueryVersion(ctx)
	if err != nil {
		logging.Debug("Auth", "Version probe of %s failed: %v", url, err)
		return "", &cli.ClusterUnreachableError{URL: url, Cause: cli.ClassifyConnectionError(err, url)}
	}
	logging.Debug("Auth", "Cluster %s reports version %s", url, version)
	return version, nil
}

// step is one link of the credential chain.
type step struct {
	strategy  Strategy
	available bool
	run       func(ctx context.Context) (string, error)
}

// Authenticate walks the credential chain. It returns ErrNoCredentials when
// no strategy was available and *AuthenticationFailedError when every
// available strategy failed.
func (n *Negotiator) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	existing, hasExisting := n.client.GetConfigValue(cluster.KeyACSToken)

	chain := []step{
		{
			strategy:  StrategyExistingToken,
			available: hasExisting,
			run: func(ctx context.Context) (string, error) {
				if err := n.client.ProbeIdentity(ctx); err != nil {
					return "", err
				}
				return existing, nil
			},
		},
		{
			strategy:  StrategyOAuth,
			available: creds.OAuthToken != "",
			run: func(ctx context.Context) (string, error) {
				return n.exchange(func() (string, error) {
					return n.client.ExchangeOAuth(ctx, creds.OAuthToken)
				})
			},
		},
		{
			strategy:  StrategyPassword,
			available: creds.Username != "" && creds.Password != "",
			run: func(ctx context.Context) (string, error) {
				return n.exchange(func() (string, error) {
					return n.client.ExchangePassword(ctx, creds.Username, creds.Password)
				})
			},
		},
	}

	var attempts []Attempt
	for _, s := range chain {
		if !s.available {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n.observer != nil {
			n.observer.AttemptStarted(s.strategy)
		}

		token, err := s.run(ctx)
		if err == nil && token == "" {
			err = errors.New("empty session token")
		}
		attempt := Attempt{Strategy: s.strategy, Token: token, Err: err}
		attempts = append(attempts, attempt)

		if n.observer != nil {
			n.observer.AttemptFinished(attempt)
		}
		if attempt.Succeeded() {
			logging.Debug("Auth", "Authenticated with %s", s.strategy)
			return &Session{Token: token, Strategy: s.strategy, Attempts: attempts}, nil
		}
		logging.Debug("Auth", "Strategy %s failed: %v", s.strategy, err)
	}

	if len(attempts) == 0 {
		return nil, ErrNoCredentials
	}
	return nil, &AuthenticationFailedError{Attempts: attempts}
}

// exchange obtains a token and persists it. A token that cannot be persisted
// counts as a failed attempt.
func (n *Negotiator) exchange(fn func() (string, error)) (string, error) {
	token, err := fn()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("empty session token")
	}
	if err := n.withMutedClient(func() error {
		return n.client.SetConfigValue(cluster.KeyACSToken, token)
	}); err != nil {
		return "", fmt.Errorf("failed to persist session token: %w", err)
	}
	return token, nil
}

func (n *Negotiator) withMutedClient(fn func() error) error {
	restore := logging.Mute(clientSubsystem)
	defer restore()
	return fn()
}
