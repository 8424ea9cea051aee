package execshell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// ExecutableLocator resolves a program name to an absolute executable path.
type ExecutableLocator func(program string) (string, error)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	locateExecutable ExecutableLocator
	standardInput    io.Reader
	standardOutput   io.Writer
	standardError    io.Writer
}

// NewOSCommandRunner constructs a runner backed by os/exec that inherits the caller's standard streams.
func NewOSCommandRunner() *OSCommandRunner {
	return NewOSCommandRunnerWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

// NewOSCommandRunnerWithStreams constructs a runner that attaches the supplied streams to spawned processes.
func NewOSCommandRunnerWithStreams(standardInput io.Reader, standardOutput io.Writer, standardError io.Writer) *OSCommandRunner {
	return &OSCommandRunner{
		locateExecutable: exec.LookPath,
		standardInput:    standardInput,
		standardOutput:   standardOutput,
		standardError:    standardError,
	}
}

// Run resolves the program on PATH, spawns it, and waits for it to exit.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	locateExecutable := runner.locateExecutable
	if locateExecutable == nil {
		locateExecutable = exec.LookPath
	}

	executablePath, lookupError := locateExecutable(string(command.Name))
	if lookupError != nil {
		return ExecutionResult{}, ExecutableNotFoundError{Program: command.Name, Cause: lookupError}
	}

	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, executablePath, commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	executable.Stdin = runner.standardInput
	executable.Stdout = runner.standardOutput
	executable.Stderr = runner.standardError

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{ExitCode: exitError.ExitCode()}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{ExitCode: 0}, nil
}
