package install_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depinstall/internal/execshell"
	"github.com/temirov/depinstall/internal/install"
)

const (
	testProjectDirectoryConstant = "/proj"
	testNestedDirectoryConstant  = "/proj/web"
)

func newDefaultBuilder(testInstance *testing.T) install.DescriptorBuilder {
	testInstance.Helper()
	rules, rulesError := install.DefaultRuleTable()
	require.NoError(testInstance, rulesError)
	return install.NewDescriptorBuilder(rules)
}

func TestDescriptorBuilderBuildsDescriptors(testInstance *testing.T) {
	testCases := []struct {
		name               string
		filePath           string
		options            install.InstallOptions
		expectedMatched    bool
		expectedDescriptor install.CommandDescriptor
	}{
		{
			name:            "npm_production",
			filePath:        "/proj/package.json",
			options:         install.InstallOptions{Production: true},
			expectedMatched: true,
			expectedDescriptor: install.CommandDescriptor{
				Program:          execshell.CommandNPM,
				Arguments:        []string{"install", "--production"},
				WorkingDirectory: testProjectDirectoryConstant,
			},
		},
		{
			name:            "bower_allow_root_with_extra",
			filePath:        "/proj/web/bower.json",
			options:         install.InstallOptions{AllowRoot: true, ExtraArguments: install.SingleExtraArgument("foo")},
			expectedMatched: true,
			expectedDescriptor: install.CommandDescriptor{
				Program:          execshell.CommandBower,
				Arguments:        []string{"install", "--config.interactive=false", "--foo", "--allow-root"},
				WorkingDirectory: testNestedDirectoryConstant,
			},
		},
		{
			name:            "npm_full_flag_order",
			filePath:        "/proj/package.json",
			options:         install.InstallOptions{Production: true, IgnoreScripts: true, NoOptional: true, AllowRoot: true, ExtraArguments: install.ManyExtraArguments([]string{"a", "-b"})},
			expectedMatched: true,
			expectedDescriptor: install.CommandDescriptor{
				Program:          execshell.CommandNPM,
				Arguments:        []string{"install", "--production", "--ignore-scripts", "--a", "--b", "--no-optional"},
				WorkingDirectory: testProjectDirectoryConstant,
			},
		},
		{
			name:            "tsd_ignores_installer_specific_flags",
			filePath:        "/proj/tsd.json",
			options:         install.InstallOptions{AllowRoot: true, NoOptional: true},
			expectedMatched: true,
			expectedDescriptor: install.CommandDescriptor{
				Program:          execshell.CommandTSD,
				Arguments:        []string{"reinstall", "--save"},
				WorkingDirectory: testProjectDirectoryConstant,
			},
		},
		{
			name:            "pip_requirements",
			filePath:        "/proj/requirements.txt",
			options:         install.InstallOptions{},
			expectedMatched: true,
			expectedDescriptor: install.CommandDescriptor{
				Program:          execshell.CommandPip,
				Arguments:        []string{"install", "-r", "requirements.txt"},
				WorkingDirectory: testProjectDirectoryConstant,
			},
		},
		{
			name:     "unknown_manifest",
			filePath: "/proj/unknown.txt",
			options:  install.InstallOptions{Production: true},
		},
		{
			name:     "case_sensitive_basename",
			filePath: "/proj/Package.json",
		},
	}

	builder := newDefaultBuilder(testInstance)
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			descriptor, matched := builder.Build(testCase.filePath, testCase.options)
			require.Equal(testInstance, testCase.expectedMatched, matched)
			require.Equal(testInstance, testCase.expectedDescriptor, descriptor)
		})
	}
}

func TestDescriptorBuilderDoesNotMutateRuleTemplates(testInstance *testing.T) {
	builder := newDefaultBuilder(testInstance)

	first, matched := builder.Build("/a/package.json", install.InstallOptions{Production: true, NoOptional: true})
	require.True(testInstance, matched)
	first.Arguments[0] = "mutated"

	second, matched := builder.Build("/b/package.json", install.InstallOptions{})
	require.True(testInstance, matched)
	require.Equal(testInstance, []string{"install"}, second.Arguments)
}

func TestDescriptorBuilderIsDeterministic(testInstance *testing.T) {
	builder := newDefaultBuilder(testInstance)
	options := install.InstallOptions{IgnoreScripts: true, ExtraArguments: install.SingleExtraArgument("x")}

	first, _ := builder.Build("/proj/bower.json", options)
	second, _ := builder.Build("/proj/bower.json", options)
	require.Equal(testInstance, first, second)
}

func TestDescriptorBuilderDropsMalformedExtraArguments(testInstance *testing.T) {
	builder := newDefaultBuilder(testInstance)
	options := install.InstallOptions{
		Production:     true,
		ExtraArguments: install.ParseExtraArguments(42),
	}

	descriptor, matched := builder.Build(testProjectDirectoryConstant+"/package.json", options)
	require.True(testInstance, matched)
	require.Equal(testInstance, []string{"install", "--production"}, descriptor.Arguments)
}

func TestFormatCommandChain(testInstance *testing.T) {
	descriptors := []install.CommandDescriptor{
		{Program: execshell.CommandNPM, Arguments: []string{"install"}, WorkingDirectory: testProjectDirectoryConstant},
		{Program: execshell.CommandBower, Arguments: []string{"install"}, WorkingDirectory: testNestedDirectoryConstant},
	}

	require.Equal(testInstance, "npm install && bower install", install.FormatCommandChain(descriptors))
	require.Equal(testInstance, "", install.FormatCommandChain(nil))
}

func TestCommandDescriptorShellCommandCopiesArguments(testInstance *testing.T) {
	descriptor := install.CommandDescriptor{Program: execshell.CommandNPM, Arguments: []string{"install"}, WorkingDirectory: testProjectDirectoryConstant}

	shellCommand := descriptor.ShellCommand()
	shellCommand.Details.Arguments[0] = "ci"

	require.Equal(testInstance, []string{"install"}, descriptor.Arguments)
	require.Equal(testInstance, testProjectDirectoryConstant, shellCommand.Details.WorkingDirectory)
}
