package execshell

// CommandEventObserver receives lifecycle notifications for installer command execution.
type CommandEventObserver interface {
	// CommandStarted fires after the executable was handed to the runner.
	CommandStarted(command ShellCommand)
	// CommandSucceeded fires when the process exited with code zero.
	CommandSucceeded(command ShellCommand)
	// CommandFailed fires for missing executables, non-zero exits, and spawn failures.
	CommandFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandSucceeded(ShellCommand) {}

func (noopCommandEventObserver) CommandFailed(ShellCommand, error) {}
