package install_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depinstall/internal/execshell"
	"github.com/temirov/depinstall/internal/install"
)

const (
	testCustomRulesFileNameConstant = "rules.yaml"
	testCustomRulesContentConstant  = `rules:
  - file: Cargo.toml
    program: cargo
    arguments: [fetch]
`
	testDuplicateRulesContentConstant = `rules:
  - file: package.json
    program: npm
  - file: package.json
    program: yarn
`
)

func TestDefaultRuleTableMatchesBuiltInManifests(testInstance *testing.T) {
	rules, rulesError := install.DefaultRuleTable()
	require.NoError(testInstance, rulesError)

	require.Equal(testInstance, []install.ManifestRule{
		{FileName: "tsd.json", Program: execshell.CommandTSD, Arguments: []string{"reinstall", "--save"}},
		{FileName: "bower.json", Program: execshell.CommandBower, Arguments: []string{"install", "--config.interactive=false"}},
		{FileName: "package.json", Program: execshell.CommandNPM, Arguments: []string{"install"}},
		{FileName: "requirements.txt", Program: execshell.CommandPip, Arguments: []string{"install", "-r", "requirements.txt"}},
	}, rules.Rules())
}

func TestRuleTableLookupIsExactAndCaseSensitive(testInstance *testing.T) {
	rules, rulesError := install.DefaultRuleTable()
	require.NoError(testInstance, rulesError)

	testCases := []struct {
		name          string
		fileName      string
		expectedFound bool
	}{
		{name: "exact_match", fileName: "package.json", expectedFound: true},
		{name: "uppercase", fileName: "Package.json", expectedFound: false},
		{name: "suffix", fileName: "package.json.bak", expectedFound: false},
		{name: "unknown", fileName: "unknown.txt", expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, found := rules.Lookup(testCase.fileName)
			require.Equal(testInstance, testCase.expectedFound, found)
		})
	}
}

func TestRuleTableReturnsIndependentCopies(testInstance *testing.T) {
	rules, rulesError := install.DefaultRuleTable()
	require.NoError(testInstance, rulesError)

	rule, found := rules.Lookup("package.json")
	require.True(testInstance, found)
	rule.Arguments[0] = "uninstall"

	listedRules := rules.Rules()
	listedRules[0].Arguments[0] = "mutated"

	reloadedRule, _ := rules.Lookup("package.json")
	require.Equal(testInstance, []string{"install"}, reloadedRule.Arguments)
	tsdRule, _ := rules.Lookup("tsd.json")
	require.Equal(testInstance, []string{"reinstall", "--save"}, tsdRule.Arguments)
}

func TestLoadRuleTableFileReadsCustomRules(testInstance *testing.T) {
	rulesPath := filepath.Join(testInstance.TempDir(), testCustomRulesFileNameConstant)
	require.NoError(testInstance, os.WriteFile(rulesPath, []byte(testCustomRulesContentConstant), 0o644))

	rules, rulesError := install.LoadRuleTableFile(rulesPath)
	require.NoError(testInstance, rulesError)

	rule, found := rules.Lookup("Cargo.toml")
	require.True(testInstance, found)
	require.Equal(testInstance, execshell.CommandName("cargo"), rule.Program)
	require.Equal(testInstance, []string{"fetch"}, rule.Arguments)
}

func TestRuleTableValidation(testInstance *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "empty_document", content: "rules: []"},
		{name: "duplicate_file", content: testDuplicateRulesContentConstant},
		{name: "missing_file", content: "rules:\n  - program: npm\n"},
		{name: "missing_program", content: "rules:\n  - file: package.json\n"},
		{name: "malformed_yaml", content: "rules: ["},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, parseError := install.ParseRuleTable([]byte(testCase.content))
			require.Error(testInstance, parseError)
		})
	}
}

func TestLoadRuleTableFileReportsMissingFile(testInstance *testing.T) {
	_, loadError := install.LoadRuleTableFile(filepath.Join(testInstance.TempDir(), "absent.yaml"))
	require.ErrorIs(testInstance, loadError, os.ErrNotExist)
}
