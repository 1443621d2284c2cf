// Package engine drives `go test` and feeds its progress into report.Hooks.
//
// A run has two passes. The collection pass (`go test -list . -json`)
// builds every selected package and reports one collect result per package.
// The execution pass (`go test -json`) runs the tests; its test2json event
// stream is translated into setup, call and teardown hook calls per test.
//
// Node ids take the form "<import path>::<test name>".
package engine
