// Package logging provides file-based logging with size-based rotation for ContextBrain.
// The index and watch commands call SetupFileOnlyMode, which writes JSON logs to
// ~/.contextbrain/logs/ and nothing to stderr or stdout.
package logging
