// Package utils hosts the configuration loader and logger factory shared by
// the CLI and its commands.
package utils
