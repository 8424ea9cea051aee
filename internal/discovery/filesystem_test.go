package discovery_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depinstall/internal/discovery"
)

const (
	frontendDirectoryName          = "frontend"
	backendDirectoryName           = "backend"
	vendorDirectoryName            = "node_modules"
	leftPadDirectoryName           = "left-pad"
	packageManifestName            = "package.json"
	bowerManifestName              = "bower.json"
	requirementsManifestName       = "requirements.txt"
	readmeFileName                 = "README.md"
	singleRootSubtestTitle         = "discoversManifestsFromSingleRoot"
	combinedRootsSubtestTitle      = "deduplicatesManifestsAcrossNestedRoots"
	manifestDirectoryPermissions   = 0o755
	manifestFilePermissions        = 0o644
	manifestFileContent            = "{}"
	visitorFailureMessage          = "visitor stopped"
	customIgnorePattern            = "backend"
	slashIgnorePattern             = "frontend/*.json"
	ignoredRelativeVendorPath      = "frontend/node_modules"
	ignoredRelativeNestedFilePath  = "frontend/package.json"
	retainedRelativeNestedFilePath = "backend/requirements.txt"
)

type manifestDefinition struct {
	pathSegments []string
}

func (definition manifestDefinition) manifestPath(rootDirectory string) string {
	segments := append([]string{rootDirectory}, definition.pathSegments...)
	return filepath.Join(segments...)
}

func createManifests(testFramework *testing.T, rootDirectory string, definitions []manifestDefinition) {
	testFramework.Helper()
	for _, definition := range definitions {
		manifestPath := definition.manifestPath(rootDirectory)
		require.NoError(testFramework, os.MkdirAll(filepath.Dir(manifestPath), manifestDirectoryPermissions))
		require.NoError(testFramework, os.WriteFile(manifestPath, []byte(manifestFileContent), manifestFilePermissions))
	}
}

func defaultIgnoreRules(testFramework *testing.T) *discovery.IgnoreRules {
	testFramework.Helper()
	ignoreRules, ignoreError := discovery.NewIgnoreRules(discovery.DefaultIgnorePatterns)
	require.NoError(testFramework, ignoreError)
	return ignoreRules
}

type manifestDiscoveryTestScenario struct {
	title                      string
	rootDirectoriesConstructor func(string) []string
}

func TestManifestDiscovererDiscoversNestedLayouts(testFramework *testing.T) {
	wantedDefinitions := []manifestDefinition{
		{pathSegments: []string{packageManifestName}},
		{pathSegments: []string{frontendDirectoryName, packageManifestName}},
		{pathSegments: []string{frontendDirectoryName, bowerManifestName}},
		{pathSegments: []string{backendDirectoryName, requirementsManifestName}},
	}
	unwantedDefinitions := []manifestDefinition{
		{pathSegments: []string{frontendDirectoryName, vendorDirectoryName, leftPadDirectoryName, packageManifestName}},
		{pathSegments: []string{backendDirectoryName, readmeFileName}},
	}

	testScenarios := []manifestDiscoveryTestScenario{
		{
			title: singleRootSubtestTitle,
			rootDirectoriesConstructor: func(rootDirectory string) []string {
				return []string{rootDirectory}
			},
		},
		{
			title: combinedRootsSubtestTitle,
			rootDirectoriesConstructor: func(rootDirectory string) []string {
				return []string{rootDirectory, filepath.Join(rootDirectory, frontendDirectoryName)}
			},
		},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.title, func(testFramework *testing.T) {
			temporaryRootDirectory := testFramework.TempDir()
			createManifests(testFramework, temporaryRootDirectory, wantedDefinitions)
			createManifests(testFramework, temporaryRootDirectory, unwantedDefinitions)

			discoverer := discovery.NewManifestDiscoverer(
				nil,
				defaultIgnoreRules(testFramework),
				[]string{packageManifestName, bowerManifestName, requirementsManifestName},
			)
			discoveredManifests, discoveryError := discoverer.DiscoverManifests(
				context.Background(),
				testScenario.rootDirectoriesConstructor(temporaryRootDirectory),
			)
			require.NoError(testFramework, discoveryError)

			expectedManifests := make([]string, 0, len(wantedDefinitions))
			for _, definition := range wantedDefinitions {
				expectedManifests = append(expectedManifests, definition.manifestPath(temporaryRootDirectory))
			}

			sort.Strings(expectedManifests)
			sort.Strings(discoveredManifests)
			require.Equal(testFramework, expectedManifests, discoveredManifests)
		})
	}
}

func TestManifestDiscovererReportsEveryFileWithoutNameFilter(testFramework *testing.T) {
	temporaryRootDirectory := testFramework.TempDir()
	createManifests(testFramework, temporaryRootDirectory, []manifestDefinition{
		{pathSegments: []string{readmeFileName}},
		{pathSegments: []string{packageManifestName}},
	})

	discoverer := discovery.NewManifestDiscoverer(nil, nil, nil)
	discoveredManifests, discoveryError := discoverer.DiscoverManifests(context.Background(), []string{temporaryRootDirectory})
	require.NoError(testFramework, discoveryError)
	require.Equal(testFramework, []string{
		filepath.Join(temporaryRootDirectory, readmeFileName),
		filepath.Join(temporaryRootDirectory, packageManifestName),
	}, discoveredManifests)
}

func TestManifestDiscovererStopsOnVisitorError(testFramework *testing.T) {
	temporaryRootDirectory := testFramework.TempDir()
	createManifests(testFramework, temporaryRootDirectory, []manifestDefinition{
		{pathSegments: []string{bowerManifestName}},
		{pathSegments: []string{packageManifestName}},
	})

	visitorError := errors.New(visitorFailureMessage)
	visitedPaths := []string{}
	discoverer := discovery.NewManifestDiscoverer(nil, nil, nil)
	walkError := discoverer.Walk(context.Background(), []string{temporaryRootDirectory}, func(filePath string) error {
		visitedPaths = append(visitedPaths, filePath)
		return visitorError
	})

	require.ErrorIs(testFramework, walkError, visitorError)
	require.Len(testFramework, visitedPaths, 1)
}

func TestManifestDiscovererHonorsCancelledContext(testFramework *testing.T) {
	temporaryRootDirectory := testFramework.TempDir()
	createManifests(testFramework, temporaryRootDirectory, []manifestDefinition{{pathSegments: []string{packageManifestName}}})

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	discoverer := discovery.NewManifestDiscoverer(nil, nil, nil)
	_, discoveryError := discoverer.DiscoverManifests(cancelledContext, []string{temporaryRootDirectory})
	require.ErrorIs(testFramework, discoveryError, context.Canceled)
}

func TestManifestDiscovererRequiresVisitor(testFramework *testing.T) {
	discoverer := discovery.NewManifestDiscoverer(nil, nil, nil)
	require.ErrorIs(testFramework, discoverer.Walk(context.Background(), []string{"."}, nil), discovery.ErrVisitorNotConfigured)
}

func TestIgnoreRulesMatching(testFramework *testing.T) {
	ignoreRules, ignoreError := discovery.NewIgnoreRules([]string{vendorDirectoryName, customIgnorePattern + "/", slashIgnorePattern, "  "})
	require.NoError(testFramework, ignoreError)
	require.Equal(testFramework, []string{vendorDirectoryName, customIgnorePattern, slashIgnorePattern}, ignoreRules.Patterns())

	testCases := []struct {
		name         string
		relativePath string
		expected     bool
	}{
		{name: "basenameMatch", relativePath: ignoredRelativeVendorPath, expected: true},
		{name: "trailingSlashPattern", relativePath: customIgnorePattern, expected: true},
		{name: "slashPatternMatchesRelativePath", relativePath: ignoredRelativeNestedFilePath, expected: true},
		{name: "unmatchedPath", relativePath: retainedRelativeNestedFilePath, expected: false},
		{name: "rootPath", relativePath: ".", expected: false},
	}

	for _, testCase := range testCases {
		testFramework.Run(testCase.name, func(testFramework *testing.T) {
			require.Equal(testFramework, testCase.expected, ignoreRules.ShouldIgnore(testCase.relativePath))
		})
	}
}

func TestNilIgnoreRulesIgnoreNothing(testFramework *testing.T) {
	var ignoreRules *discovery.IgnoreRules
	require.False(testFramework, ignoreRules.ShouldIgnore(ignoredRelativeVendorPath))
	require.Nil(testFramework, ignoreRules.Patterns())
}
