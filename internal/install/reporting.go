package install

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	skippedInstallTemplateConstant   = "Skipping install. Run `%s` manually"
	failedCommandTemplateConstant    = "%s, run `%s` manually"
	commandHighlightColorConstant    = "3"
	logFieldCommandsConstant         = "commands"
	logFieldCommandConstant          = "command"
	logFieldCommandCountConstant     = "command_count"
	logFieldWorkingDirectoryConstant = "working_directory"
)

// BatchReporter renders remediation messages for skipped and failed batches.
type BatchReporter struct {
	logger         *zap.Logger
	highlightStyle lipgloss.Style
	highlight      bool
}

// NewBatchReporter constructs a reporter; highlight renders commands in color for console output.
func NewBatchReporter(logger *zap.Logger, highlight bool) BatchReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BatchReporter{
		logger:         logger,
		highlightStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(commandHighlightColorConstant)),
		highlight:      highlight,
	}
}

// ReportSkipped emits the single dry-run message listing every pending command.
func (reporter BatchReporter) ReportSkipped(descriptors []CommandDescriptor) {
	commandChain := FormatCommandChain(descriptors)
	reporter.logger.Info(
		fmt.Sprintf(skippedInstallTemplateConstant, reporter.renderCommand(commandChain)),
		zap.String(logFieldCommandsConstant, commandChain),
		zap.Int(logFieldCommandCountConstant, len(descriptors)),
	)
}

// ReportFailure emits the warning naming the failed command and how to rerun it.
func (reporter BatchReporter) ReportFailure(descriptor CommandDescriptor, failure error) {
	commandLine := descriptor.CommandLine()
	reporter.logger.Warn(
		fmt.Sprintf(failedCommandTemplateConstant, failure.Error(), reporter.renderCommand(commandLine)),
		zap.String(logFieldCommandConstant, commandLine),
		zap.String(logFieldWorkingDirectoryConstant, descriptor.WorkingDirectory),
		zap.Error(failure),
	)
}

func (reporter BatchReporter) renderCommand(command string) string {
	if !reporter.highlight {
		return command
	}
	return reporter.highlightStyle.Render(command)
}
