package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a network connectivity error (e.g., refused, unreachable).
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError indicates a connection failure to a cluster endpoint.
// It wraps the underlying error and provides categorization for better user feedback.
type ConnectionError struct {
	// Endpoint is the URL that could not be reached.
	Endpoint string
	// Type categorizes the connection error.
	Type ConnectionErrorType
	// Reason is the underlying error.
	Reason error
}

// Error returns a message with a hint matching the error category.
func (e *ConnectionError) Error() string {
	switch e.Type {
	case ConnectionErrorTLS:
		return fmt.Sprintf("TLS certificate verification failed for %s: %v (use --ssl-no-verify for self-signed certificates)", e.Endpoint, e.Reason)
	case ConnectionErrorTimeout:
		return fmt.Sprintf("connection to %s timed out: %v", e.Endpoint, e.Reason)
	case ConnectionErrorDNS:
		return fmt.Sprintf("DNS resolution failed for %s: %v", e.Endpoint, e.Reason)
	default:
		return fmt.Sprintf("connection to %s failed: %v", e.Endpoint, e.Reason)
	}
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ConnectionError) Is(target error) bool {
	_, ok := target.(*ConnectionError)
	return ok
}

// ClassifyConnectionError analyzes an error and returns a ConnectionError with the appropriate type.
// If the error is nil, returns nil.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	var existing *ConnectionError
	if errors.As(err, &existing) {
		return existing
	}

	connErr := &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorUnknown, Reason: err}

	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		connErr.Type = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		connErr.Type = ConnectionErrorDNS
	case isTimeoutError(err):
		connErr.Type = ConnectionErrorTimeout
	case isNetworkError(err.Error()):
		connErr.Type = ConnectionErrorNetwork
	}
	return connErr
}

// isTLSError checks if the error is related to TLS/certificate issues.
func isTLSError(err error) bool {
	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError
	var systemRootsErr *x509.SystemRootsError

	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isTimeoutError checks if the error is a timeout.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

// isNetworkError checks if the error string indicates a network connectivity issue.
func isNetworkError(errStr string) bool {
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// ConfigurationError indicates a required option is missing or invalid.
type ConfigurationError struct {
	// Option is the long flag name, or config key, of the offending option.
	Option string
	// Problem describes what is wrong; empty means the option is missing.
	Problem string
}

// Error returns a user-friendly error message.
func (e *ConfigurationError) Error() string {
	if e.Problem == "" {
		return fmt.Sprintf("--%s is a required option; see --help for more information.", e.Option)
	}
	return fmt.Sprintf("--%s %s; see --help for more information.", e.Option, e.Problem)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

// DependencyMissingError indicates a required external tool is not installed.
type DependencyMissingError struct {
	// Name is the missing dependency.
	Name string
	// Hint tells the operator how to install it.
	Hint string
	// Reason is the underlying lookup error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *DependencyMissingError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s is not installed.", e.Name)
	}
	return fmt.Sprintf("%s is not installed; %s.", e.Name, e.Hint)
}

// Unwrap returns the underlying error.
func (e *DependencyMissingError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *DependencyMissingError) Is(target error) bool {
	_, ok := target.(*DependencyMissingError)
	return ok
}

// ClusterUnreachableError indicates the cluster did not answer the version probe.
type ClusterUnreachableError struct {
	// URL is the configured cluster URL.
	URL string
	// Cause is the classified probe failure.
	Cause *ConnectionError
}

// Error returns a user-friendly error message.
func (e *ClusterUnreachableError) Error() string {
	return fmt.Sprintf("cluster '%s' is unreachable.", e.URL)
}

// Unwrap returns the classified connection error.
func (e *ClusterUnreachableError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ClusterUnreachableError) Is(target error) bool {
	_, ok := target.(*ClusterUnreachableError)
	return ok
}
