// Package logging wires log/slog with the configuration surface and provides
// the typed attribute helpers used throughout the repo.
package logging
