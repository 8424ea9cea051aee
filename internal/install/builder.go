package install

import (
	"path/filepath"
	"strings"

	"github.com/temirov/depinstall/internal/execshell"
)

const (
	productionFlagConstant        = "--production"
	ignoreScriptsFlagConstant     = "--ignore-scripts"
	allowRootFlagConstant         = "--allow-root"
	noOptionalFlagConstant        = "--no-optional"
	commandChainSeparatorConstant = " && "
)

// CommandDescriptor is a concrete installer invocation derived from one manifest.
type CommandDescriptor struct {
	Program          execshell.CommandName
	Arguments        []string
	WorkingDirectory string
}

// ShellCommand converts the descriptor into the execshell representation.
func (descriptor CommandDescriptor) ShellCommand() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: descriptor.Program,
		Details: execshell.CommandDetails{
			Arguments:        append([]string{}, descriptor.Arguments...),
			WorkingDirectory: descriptor.WorkingDirectory,
		},
	}
}

// CommandLine renders the descriptor as "program arg1 arg2".
func (descriptor CommandDescriptor) CommandLine() string {
	return descriptor.ShellCommand().CommandLine()
}

// FormatCommandChain joins descriptors into a single shell chain in batch order.
func FormatCommandChain(descriptors []CommandDescriptor) string {
	commandLines := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		commandLines = append(commandLines, descriptor.CommandLine())
	}
	return strings.Join(commandLines, commandChainSeparatorConstant)
}

// DescriptorBuilder maps manifest paths to command descriptors using a RuleTable.
type DescriptorBuilder struct {
	rules RuleTable
}

// NewDescriptorBuilder constructs a DescriptorBuilder over the provided rules.
func NewDescriptorBuilder(rules RuleTable) DescriptorBuilder {
	return DescriptorBuilder{rules: rules}
}

// Build returns the descriptor for filePath, or false when its basename matches no rule.
// Malformed extra arguments contribute nothing here; NewDispatcher validates them and logs the warning.
func (builder DescriptorBuilder) Build(filePath string, options InstallOptions) (CommandDescriptor, bool) {
	rule, found := builder.rules.Lookup(filepath.Base(filePath))
	if !found {
		return CommandDescriptor{}, false
	}

	// Rule arguments are copied so option flags never leak into the rule template.
	arguments := append(make([]string, 0, len(rule.Arguments)+4), rule.Arguments...)

	if options.Production {
		arguments = append(arguments, productionFlagConstant)
	}
	if options.IgnoreScripts {
		arguments = append(arguments, ignoreScriptsFlagConstant)
	}

	extraArguments, _ := NormalizeArguments(options.ExtraArguments)
	arguments = append(arguments, extraArguments...)

	if rule.Program == execshell.CommandBower && options.AllowRoot {
		arguments = append(arguments, allowRootFlagConstant)
	}
	if rule.Program == execshell.CommandNPM && options.NoOptional {
		arguments = append(arguments, noOptionalFlagConstant)
	}

	return CommandDescriptor{
		Program:          rule.Program,
		Arguments:        arguments,
		WorkingDirectory: filepath.Dir(filePath),
	}, true
}
