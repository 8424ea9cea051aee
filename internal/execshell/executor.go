package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	logFieldCommandConstant          = "command"
	logFieldWorkingDirectoryConstant = "working_directory"
	logFieldExitCodeConstant         = "exit_code"
)

// ShellExecutor runs installer commands through a CommandRunner and reports their outcome.
type ShellExecutor struct {
	logger           *zap.Logger
	runner           CommandRunner
	observer         CommandEventObserver
	messageFormatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor; a nil observer is replaced by a no-op one.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}

	return &ShellExecutor{
		logger:           logger,
		runner:           runner,
		observer:         observer,
		messageFormatter: CommandMessageFormatter{},
	}, nil
}

// Execute runs the command once and returns nil only when it exits with code zero.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) error {
	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, command.CommandLine()),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command), commandFields...)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		failure := executor.classifyRunError(command, runError)
		executor.logger.Warn(executor.messageFormatter.BuildExecutionFailureMessage(command, failure), append(commandFields, zap.Error(failure))...)
		executor.observer.CommandFailed(command, failure)
		return failure
	}

	if executionResult.ExitCode != 0 {
		failure := NonZeroExitError{Program: command.Name, ExitCode: executionResult.ExitCode}
		executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, executionResult), append(commandFields, zap.Int(logFieldExitCodeConstant, executionResult.ExitCode))...)
		executor.observer.CommandFailed(command, failure)
		return failure
	}

	executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command), commandFields...)
	executor.observer.CommandSucceeded(command)
	return nil
}

func (executor *ShellExecutor) classifyRunError(command ShellCommand, runError error) error {
	var notFoundError ExecutableNotFoundError
	if errors.As(runError, &notFoundError) {
		return notFoundError
	}
	return CommandExecutionError{Command: command, Cause: runError}
}
