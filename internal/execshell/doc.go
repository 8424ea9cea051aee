// Package execshell provides structured helpers for invoking installer tools.
//
// It wraps os/exec with PATH resolution and logging via ShellExecutor, exposes
// OSCommandRunner for default process execution with inherited standard
// streams, and defines the typed failures reported when a tool is missing or
// exits with a non-zero code.
package execshell
