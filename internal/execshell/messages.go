package execshell

import (
	"errors"
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	installerStartTemplateConstant                 = "Installing %s dependencies in %s"
	installerReinstallStartTemplateConstant        = "Reinstalling %s definitions in %s"
	installerSuccessTemplateConstant               = "Installed %s dependencies in %s"
	installerReinstallSuccessTemplateConstant      = "Reinstalled %s definitions in %s"
	installerFailureTemplateConstant               = "Failed to install %s dependencies in %s (exit code %d)"
	installerMissingTemplateConstant               = "Unable to install %s dependencies in %s: %s is not installed"
	installerExecutionFailureTemplateConstant      = "Unable to install %s dependencies in %s: %s"
	installerInstallSubcommandConstant             = "install"
	installerReinstallSubcommandConstant           = "reinstall"
	installerRequirementsFlagConstant              = "-r"
	installerRequirementsFileLabelTemplateConstant = "%s (%s)"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandNPM, CommandBower, CommandPip:
		return formatter.describeInstallerMessage(command, result, failure, stage)
	case CommandTSD:
		return formatter.describeDefinitionsMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeInstallerMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand := formatter.argumentAtIndex(command.Details.Arguments, 0)
	if subcommand != installerInstallSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	programLabel := formatter.describeProgram(command)
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(installerStartTemplateConstant, programLabel, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(installerSuccessTemplateConstant, programLabel, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(installerFailureTemplateConstant, programLabel, workingDirectory, result.ExitCode)
	case messageStageExecutionFailure:
		return formatter.describeExecutionFailure(command, programLabel, workingDirectory, failure)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDefinitionsMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand := formatter.argumentAtIndex(command.Details.Arguments, 0)
	if subcommand != installerReinstallSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	programLabel := string(command.Name)
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(installerReinstallStartTemplateConstant, programLabel, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(installerReinstallSuccessTemplateConstant, programLabel, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(installerFailureTemplateConstant, programLabel, workingDirectory, result.ExitCode)
	case messageStageExecutionFailure:
		return formatter.describeExecutionFailure(command, programLabel, workingDirectory, failure)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeExecutionFailure(command ShellCommand, programLabel string, workingDirectory string, failure error) string {
	var notFoundError ExecutableNotFoundError
	if errors.As(failure, &notFoundError) {
		return fmt.Sprintf(installerMissingTemplateConstant, programLabel, workingDirectory, command.Name)
	}
	return fmt.Sprintf(installerExecutionFailureTemplateConstant, programLabel, workingDirectory, formatter.describeFailure(failure))
}

// describeProgram names pip installs by their requirements file when one is given.
func (formatter CommandMessageFormatter) describeProgram(command ShellCommand) string {
	programLabel := string(command.Name)
	if command.Name != CommandPip {
		return programLabel
	}
	requirementsFile := findFlagValue(command.Details.Arguments, installerRequirementsFlagConstant)
	if len(requirementsFile) == 0 {
		return programLabel
	}
	return fmt.Sprintf(installerRequirementsFileLabelTemplateConstant, programLabel, requirementsFile)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode)
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	return fmt.Sprintf(commandLabelTemplateConstant, command.CommandLine(), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}
