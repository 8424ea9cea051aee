// Package cli constructs the depinstall command-line interface, wiring the
// Cobra command hierarchy, the layered configuration loader, and structured
// logging for the install command.
package cli
