// Package pathutils normalizes user-supplied filesystem paths.
package pathutils
