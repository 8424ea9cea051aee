// Package ui renders human-readable installer progress for console sessions.
//
// Structured telemetry keeps flowing through zap; the progress observer only
// prints one short line per installer transition.
package ui
