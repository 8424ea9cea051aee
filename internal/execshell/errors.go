package execshell

import (
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant    = "shell executor logger not configured"
	runnerNotConfiguredMessageConstant    = "shell executor runner not configured"
	executableNotFoundTemplateConstant    = "can't install! `%s` doesn't seem to be installed"
	nonZeroExitTemplateConstant           = "%s exited with non-zero code %d"
	commandExecutionErrorTemplateConstant = "%s failed: %v"
	commandExecutionUnknownCauseConstant  = "unknown error"
)

var (
	// ErrLoggerNotConfigured indicates that a ShellExecutor was built without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrRunnerNotConfigured indicates that a ShellExecutor was built without a runner.
	ErrRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
)

// ExecutableNotFoundError reports that the program could not be located on PATH.
type ExecutableNotFoundError struct {
	Program CommandName
	Cause   error
}

// Error describes the missing executable.
func (notFoundError ExecutableNotFoundError) Error() string {
	return fmt.Sprintf(executableNotFoundTemplateConstant, notFoundError.Program)
}

// Unwrap returns the underlying lookup failure.
func (notFoundError ExecutableNotFoundError) Unwrap() error {
	return notFoundError.Cause
}

// NonZeroExitError reports that the program ran and exited with a failure code.
type NonZeroExitError struct {
	Program  CommandName
	ExitCode int
}

// Error describes the exit code.
func (exitError NonZeroExitError) Error() string {
	return fmt.Sprintf(nonZeroExitTemplateConstant, exitError.Program, exitError.ExitCode)
}

// CommandExecutionError wraps spawn failures that are neither lookup failures nor exit codes.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the spawn failure.
func (executionError CommandExecutionError) Error() string {
	if executionError.Cause == nil {
		return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, commandExecutionUnknownCauseConstant)
	}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap returns the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}
