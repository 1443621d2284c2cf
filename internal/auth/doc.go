// Package auth negotiates a cluster session before any test runs.
//
// A Negotiator first connects: it records the cluster URL and TLS setting
// in the client configuration and probes the cluster version. It then walks
// a fixed chain of credential strategies:
//
//  1. an existing session token from the client configuration, validated
//     with an identity probe;
//  2. an OAuth token, exchanged for a session token;
//  3. a username and password, exchanged for a session token.
//
// Each strategy runs at most once and the chain stops at the first success.
// Tokens obtained by an exchange are persisted to the client configuration.
// Configuration writes happen with the cluster client's log output muted.
package auth
