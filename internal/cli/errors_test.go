package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionErrorType(t *testing.T) {
	tests := []struct {
		name     string
		errType  ConnectionErrorType
		expected string
	}{
		{"unknown type", ConnectionErrorUnknown, "Connection error"},
		{"TLS type", ConnectionErrorTLS, "TLS certificate error"},
		{"network type", ConnectionErrorNetwork, "Network error"},
		{"timeout type", ConnectionErrorTimeout, "Connection timeout"},
		{"DNS type", ConnectionErrorDNS, "DNS resolution error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.errType.String()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestConnectionError(t *testing.T) {
	t.Run("TLS error message includes ssl-no-verify hint", func(t *testing.T) {
		err := &ConnectionError{
			Endpoint: "https://dcos.example.com",
			Type:     ConnectionErrorTLS,
			Reason:   errors.New("x509: certificate is not valid for hostname"),
		}
		msg := err.Error()

		if !strings.Contains(msg, "TLS certificate verification failed") {
			t.Error("expected error message to mention TLS verification")
		}
		if !strings.Contains(msg, "dcos.example.com") {
			t.Error("expected error message to contain endpoint")
		}
		if !strings.Contains(msg, "--ssl-no-verify") {
			t.Error("expected error message to mention --ssl-no-verify")
		}
	})

	t.Run("Timeout error message mentions timeout", func(t *testing.T) {
		err := &ConnectionError{
			Endpoint: "https://dcos.example.com",
			Type:     ConnectionErrorTimeout,
			Reason:   errors.New("context deadline exceeded"),
		}
		if !strings.Contains(err.Error(), "timed out") {
			t.Error("expected error message to mention timeout")
		}
	})

	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		reason := errors.New("connection refused")
		err := &ConnectionError{Endpoint: "https://example.com", Type: ConnectionErrorNetwork, Reason: reason}

		if err.Unwrap() != reason {
			t.Errorf("expected unwrapped error to be %v, got %v", reason, err.Unwrap())
		}
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		connErr := &ConnectionError{Endpoint: "https://example.com", Type: ConnectionErrorTLS}
		wrappedErr := fmt.Errorf("wrapped: %w", connErr)

		if !errors.Is(wrappedErr, &ConnectionError{}) {
			t.Error("expected errors.Is to find wrapped ConnectionError")
		}
	})
}

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ConnectionErrorType
	}{
		{
			name:     "x509 message",
			err:      errors.New("Get https://example.com: x509: certificate signed by unknown authority"),
			expected: ConnectionErrorTLS,
		},
		{
			name:     "x509 HostnameError",
			err:      fmt.Errorf("connection failed: %w", &x509.HostnameError{Certificate: &x509.Certificate{}, Host: "example.com"}),
			expected: ConnectionErrorTLS,
		},
		{
			name:     "DNS error",
			err:      fmt.Errorf("dial: %w", &net.DNSError{Err: "no such host", Name: "example.com"}),
			expected: ConnectionErrorDNS,
		},
		{
			name:     "deadline exceeded",
			err:      errors.New("context deadline exceeded"),
			expected: ConnectionErrorTimeout,
		},
		{
			name:     "refused",
			err:      errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
			expected: ConnectionErrorNetwork,
		},
		{
			name:     "unknown",
			err:      errors.New("unexpected status 500"),
			expected: ConnectionErrorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyConnectionError(tt.err, "https://example.com")
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, result.Type)
			assert.Equal(t, "https://example.com", result.Endpoint)
		})
	}

	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, ClassifyConnectionError(nil, "https://example.com"))
	})

	t.Run("already classified error is returned as is", func(t *testing.T) {
		original := &ConnectionError{Endpoint: "https://a", Type: ConnectionErrorDNS, Reason: errors.New("x")}
		assert.Same(t, original, ClassifyConnectionError(fmt.Errorf("wrap: %w", original), "https://b"))
	})
}

func TestConfigurationError(t *testing.T) {
	missing := &ConfigurationError{Option: "dcos-url"}
	assert.Equal(t, "--dcos-url is a required option; see --help for more information.", missing.Error())

	invalid := &ConfigurationError{Option: "stdout", Problem: `must be one of pass, fail, skip, all, none (got "loud")`}
	assert.Contains(t, invalid.Error(), "must be one of")

	assert.True(t, errors.Is(fmt.Errorf("load: %w", missing), &ConfigurationError{}))
}

func TestDependencyMissingError(t *testing.T) {
	reason := errors.New(`exec: "go": executable file not found in $PATH`)
	err := &DependencyMissingError{Name: "go", Hint: "install it from https://go.dev/dl", Reason: reason}

	assert.Equal(t, "go is not installed; install it from https://go.dev/dl.", err.Error())
	assert.ErrorIs(t, err, reason)
	assert.True(t, errors.Is(err, &DependencyMissingError{}))
}

func TestClusterUnreachableError(t *testing.T) {
	cause := ClassifyConnectionError(errors.New("connection refused"), "https://dcos.example.com")
	err := &ClusterUnreachableError{URL: "https://dcos.example.com", Cause: cause}

	assert.Equal(t, "cluster 'https://dcos.example.com' is unreachable.", err.Error())
	assert.True(t, errors.Is(err, &ConnectionError{}))
	assert.Nil(t, (&ClusterUnreachableError{URL: "x"}).Unwrap())
}
