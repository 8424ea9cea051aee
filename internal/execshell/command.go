package execshell

import (
	"context"
	"strings"
)

const (
	commandArgumentsJoinSeparatorConstant = " "
)

// CommandName identifies the program an installer command launches.
type CommandName string

// Installer programs known to the default rule table.
const (
	CommandNPM   CommandName = CommandName("npm")
	CommandBower CommandName = CommandName("bower")
	CommandTSD   CommandName = CommandName("tsd")
	CommandPip   CommandName = CommandName("pip")
)

// CommandDetails describes arguments and the working directory for a command.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
}

// ShellCommand combines a program name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	ExitCode int
}

// CommandRunner resolves and runs a single command.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandLine renders the command as "program arg1 arg2".
func (command ShellCommand) CommandLine() string {
	segments := make([]string, 0, len(command.Details.Arguments)+1)
	segments = append(segments, string(command.Name))
	segments = append(segments, command.Details.Arguments...)
	return strings.Join(segments, commandArgumentsJoinSeparatorConstant)
}
