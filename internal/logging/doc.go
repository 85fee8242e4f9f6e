// Package logging wraps log/slog with the attribute helpers and handler
// setup used across clipsight. Console output goes through a compact
// key=value handler; JSON output remaps the standard keys to ts/level/msg.
package logging
