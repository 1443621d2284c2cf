// Package console renders operator-facing output: pre-flight narration,
// report labels, terminal markers and quoted text blocks.
//
// Styling uses go-pretty's text colors and is disabled unless the printer is
// created WithColor. Spinners and the hidden password prompt are only used
// when the caller has established that it talks to a terminal.
package console
