// Package report aggregates test lifecycle events into one human readable
// output stream.
//
// A test engine drives an Aggregator through the Hooks interface. The
// aggregator groups test cases by file prefix, prints an in-progress label per
// case and exactly one terminal marker when the case is finalized. Captured
// output is rendered as quoted blocks when its outcome passes the Filter;
// the Renderer chosen by Timing writes those blocks inline or holds them until
// the session finishes.
//
// Node ids have the form "<file prefix>::<case name>". Ids without the
// separator are reported without a file header; events for unknown ids
// register the node on the fly.
package report
