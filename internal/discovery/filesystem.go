package discovery

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	unreadablePathMessageConstant   = "skipping unreadable path"
	ignoredDirectoryMessageConstant = "skipping ignored directory"
	logFieldPathConstant            = "path"
	logFieldRootConstant            = "root"
)

// ErrVisitorNotConfigured indicates that Walk was called without a visit callback.
var ErrVisitorNotConfigured = errors.New("manifest visitor not configured")

// ManifestVisitor receives every discovered file path; a returned error stops the walk.
type ManifestVisitor func(filePath string) error

// ManifestDiscoverer walks directory trees and reports files in lexical order.
type ManifestDiscoverer struct {
	logger      *zap.Logger
	ignoreRules *IgnoreRules
	fileNames   map[string]struct{}
}

// NewManifestDiscoverer constructs a discoverer backed by filepath.WalkDir.
// An empty fileNames set reports every file; otherwise only matching basenames are reported.
func NewManifestDiscoverer(logger *zap.Logger, ignoreRules *IgnoreRules, fileNames []string) *ManifestDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}

	var fileNameSet map[string]struct{}
	if len(fileNames) > 0 {
		fileNameSet = make(map[string]struct{}, len(fileNames))
		for _, fileName := range fileNames {
			fileNameSet[fileName] = struct{}{}
		}
	}

	return &ManifestDiscoverer{logger: logger, ignoreRules: ignoreRules, fileNames: fileNameSet}
}

// Walk visits files under each root once, skipping ignored directories and unreadable paths.
func (discoverer *ManifestDiscoverer) Walk(executionContext context.Context, roots []string, visit ManifestVisitor) error {
	if visit == nil {
		return ErrVisitorNotConfigured
	}

	seen := make(map[string]struct{})

	for _, root := range roots {
		walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
			if contextError := executionContext.Err(); contextError != nil {
				return contextError
			}

			if walkError != nil {
				discoverer.logger.Debug(unreadablePathMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(walkError))
				return nil
			}

			relativePath, relativeError := filepath.Rel(root, path)
			if relativeError != nil {
				relativePath = path
			}

			if directoryEntry.IsDir() {
				if path != root && discoverer.ignoreRules.ShouldIgnore(relativePath) {
					discoverer.logger.Debug(ignoredDirectoryMessageConstant, zap.String(logFieldRootConstant, root), zap.String(logFieldPathConstant, path))
					return fs.SkipDir
				}
				return nil
			}

			if discoverer.ignoreRules.ShouldIgnore(relativePath) {
				return nil
			}

			if discoverer.fileNames != nil {
				if _, wanted := discoverer.fileNames[directoryEntry.Name()]; !wanted {
					return nil
				}
			}

			absolutePath, absoluteError := filepath.Abs(path)
			if absoluteError != nil {
				absolutePath = path
			}
			if _, alreadySeen := seen[absolutePath]; alreadySeen {
				return nil
			}
			seen[absolutePath] = struct{}{}

			return visit(path)
		})
		if walkError != nil {
			return walkError
		}
	}

	return nil
}

// DiscoverManifests collects every reported path.
func (discoverer *ManifestDiscoverer) DiscoverManifests(executionContext context.Context, roots []string) ([]string, error) {
	var manifests []string
	walkError := discoverer.Walk(executionContext, roots, func(filePath string) error {
		manifests = append(manifests, filePath)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return manifests, nil
}
