// Package cli holds the pre-flight error taxonomy shared by the shakedown
// command and its collaborators.
//
// Every type here is fatal for a run: the command prints the message in the
// error style and exits with the pre-flight failure code. Network failures
// observed while probing the cluster are classified with
// ClassifyConnectionError so the operator gets a hint matching the cause
// (TLS, DNS, timeout, refused).
package cli
