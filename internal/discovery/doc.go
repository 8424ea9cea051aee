// Package discovery walks filesystem roots and reports manifest files in a
// deterministic order, skipping dependency and VCS directories through
// glob-based ignore patterns.
package discovery
