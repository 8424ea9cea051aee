package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

const (
	pathSeparatorConstant             = '/'
	pathSeparatorStringConstant       = "/"
	ignorePatternCompileErrorTemplate = "invalid ignore pattern %q: %w"
)

// DefaultIgnorePatterns lists directories whose manifests belong to installed dependencies or VCS metadata.
var DefaultIgnorePatterns = []string{
	"node_modules",
	"bower_components",
	"typings",
	".git",
	".hg",
	".svn",
}

type ignorePattern struct {
	pattern  string
	matcher  glob.Glob
	hasSlash bool
}

// IgnoreRules decides whether a path relative to a walk root is skipped.
// Patterns without a slash match any path segment's basename; patterns with one match the whole relative path.
type IgnoreRules struct {
	patterns []ignorePattern
}

// NewIgnoreRules compiles the supplied glob patterns.
func NewIgnoreRules(patterns []string) (*IgnoreRules, error) {
	rules := &IgnoreRules{patterns: make([]ignorePattern, 0, len(patterns))}
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSuffix(strings.TrimSpace(pattern), pathSeparatorStringConstant)
		if len(trimmedPattern) == 0 {
			continue
		}

		matcher, compileError := glob.Compile(strings.TrimPrefix(trimmedPattern, pathSeparatorStringConstant), pathSeparatorConstant)
		if compileError != nil {
			return nil, fmt.Errorf(ignorePatternCompileErrorTemplate, pattern, compileError)
		}

		rules.patterns = append(rules.patterns, ignorePattern{
			pattern:  trimmedPattern,
			matcher:  matcher,
			hasSlash: strings.Contains(trimmedPattern, pathSeparatorStringConstant),
		})
	}
	return rules, nil
}

// ShouldIgnore reports whether relativePath matches any pattern.
func (rules *IgnoreRules) ShouldIgnore(relativePath string) bool {
	if rules == nil {
		return false
	}

	normalizedPath := strings.TrimPrefix(filepath.ToSlash(relativePath), "./")
	baseName := filepath.Base(normalizedPath)

	for _, pattern := range rules.patterns {
		if pattern.hasSlash {
			if pattern.matcher.Match(normalizedPath) {
				return true
			}
			continue
		}
		if pattern.matcher.Match(baseName) {
			return true
		}
	}
	return false
}

// Patterns returns the normalized patterns in evaluation order.
func (rules *IgnoreRules) Patterns() []string {
	if rules == nil {
		return nil
	}
	patterns := make([]string, 0, len(rules.patterns))
	for _, pattern := range rules.patterns {
		patterns = append(patterns, pattern.pattern)
	}
	return patterns
}
