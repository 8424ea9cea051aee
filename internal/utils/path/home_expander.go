package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant            = "~"
	homeShortcutSlashPrefixConstant = "~/"
)

var homeShortcutSeparatorPrefix = homeShortcutConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// HomeExpander rewrites leading "~" shortcuts to the user's home directory.
// The directory is resolved once; a lookup failure leaves paths untouched.
type HomeExpander struct {
	provider          HomeDirectoryProvider
	resolvedDirectory string
	resolveError      error
	resolveOnce       sync.Once
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand resolves "~", "~/rest" and the platform-separator variant; other paths are returned as is.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	homeDirectory := expander.homeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == homeShortcutConstant:
		return homeDirectory
	case strings.HasPrefix(candidatePath, homeShortcutSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, homeShortcutSeparatorPrefix):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutSeparatorPrefix))
	default:
		// "~user" forms are not supported.
		return candidatePath
	}
}

func (expander *HomeExpander) homeDirectory() string {
	expander.resolveOnce.Do(func() {
		expander.resolvedDirectory, expander.resolveError = expander.provider()
	})
	if expander.resolveError != nil {
		return ""
	}
	return expander.resolvedDirectory
}
