package pathutils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const windowsOperatingSystemConstant = "windows"

// RootSanitizerConfiguration controls how walk roots are normalized.
type RootSanitizerConfiguration struct {
	// PruneNestedRoots drops roots contained in another supplied root.
	PruneNestedRoots bool
}

// RootSanitizer trims, home-expands, and deduplicates discovery roots.
type RootSanitizer struct {
	homeExpander  *HomeExpander
	configuration RootSanitizerConfiguration
}

// NewRootSanitizer constructs a RootSanitizer that keeps nested roots.
func NewRootSanitizer() *RootSanitizer {
	return NewRootSanitizerWithConfiguration(nil, RootSanitizerConfiguration{})
}

// NewRootSanitizerWithConfiguration constructs a RootSanitizer; a nil expander uses the operating system home directory.
func NewRootSanitizerWithConfiguration(homeExpander *HomeExpander, configuration RootSanitizerConfiguration) *RootSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RootSanitizer{homeExpander: homeExpander, configuration: configuration}
}

// Sanitize returns the usable roots in input order, or nil when none remain.
func (sanitizer *RootSanitizer) Sanitize(candidateRoots []string) []string {
	if sanitizer == nil {
		sanitizer = NewRootSanitizer()
	}

	sanitizedRoots := make([]string, 0, len(candidateRoots))
	canonicalRoots := make([]string, 0, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		trimmedRoot := strings.TrimSpace(candidateRoot)
		if len(trimmedRoot) == 0 {
			continue
		}

		expandedRoot := sanitizer.homeExpander.Expand(trimmedRoot)
		canonicalRoot := canonicalizeRoot(expandedRoot)
		if containsRoot(canonicalRoots, canonicalRoot) {
			continue
		}

		sanitizedRoots = append(sanitizedRoots, expandedRoot)
		canonicalRoots = append(canonicalRoots, canonicalRoot)
	}

	if len(sanitizedRoots) == 0 {
		return nil
	}
	if !sanitizer.configuration.PruneNestedRoots {
		return sanitizedRoots
	}

	prunedRoots := make([]string, 0, len(sanitizedRoots))
	for candidateIndex, candidateRoot := range sanitizedRoots {
		nested := false
		for parentIndex, parentRoot := range canonicalRoots {
			if parentIndex != candidateIndex && isNestedRoot(parentRoot, canonicalRoots[candidateIndex]) {
				nested = true
				break
			}
		}
		if !nested {
			prunedRoots = append(prunedRoots, candidateRoot)
		}
	}
	return prunedRoots
}

func canonicalizeRoot(root string) string {
	cleanedRoot := filepath.Clean(root)
	if absoluteRoot, absoluteError := filepath.Abs(cleanedRoot); absoluteError == nil {
		cleanedRoot = absoluteRoot
	}
	if runtime.GOOS == windowsOperatingSystemConstant {
		cleanedRoot = strings.ToLower(cleanedRoot)
	}
	return cleanedRoot
}

func containsRoot(canonicalRoots []string, candidate string) bool {
	for _, existingRoot := range canonicalRoots {
		if existingRoot == candidate {
			return true
		}
	}
	return false
}

// isNestedRoot expects canonical, distinct paths.
func isNestedRoot(parent string, candidate string) bool {
	if len(candidate) <= len(parent) || !strings.HasPrefix(candidate, parent) {
		return false
	}
	if parent[len(parent)-1] == os.PathSeparator {
		return true
	}
	return candidate[len(parent)] == os.PathSeparator
}
