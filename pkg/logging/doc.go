// Package logging provides structured diagnostic logging for shakedown.
//
// Diagnostics go to a slog text handler (stderr in the CLI) and are kept
// apart from the operator-facing report, which is written by the console
// package. Every entry carries a subsystem attribute.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Info("Engine", "Running %d packages", n)
//	logging.Error("ClusterClient", err, "Failed to persist %s", key)
//
// # Muting
//
// Some collaborators are noisy during operations whose failures are expected
// and handled by the caller. Mute silences one subsystem for a scope:
//
//	restore := logging.Mute("ClusterClient")
//	defer restore()
//
// Token values and passwords are never passed to the logger.
package logging
