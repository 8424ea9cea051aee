package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/depinstall/internal/execshell"
)

const (
	startedMarkerConstant            = "→"
	succeededMarkerConstant          = "✓"
	failedMarkerConstant             = "✗"
	progressLineTemplateConstant     = "%s [%d done] %s%s\n"
	failureSuffixTemplateConstant    = ": %s"
	workingDirectoryTemplateConstant = " (in %s)"
	startedColorConstant             = "6"
	succeededColorConstant           = "2"
	failedColorConstant              = "1"
	unknownFailureMessageConstant    = "unknown error"
)

// ProgressObserver prints a line, prefixed with the number of finished installers, whenever one starts or finishes.
// It is safe for concurrent use by commands running in parallel.
type ProgressObserver struct {
	output         io.Writer
	mutex          sync.Mutex
	startedCount   int
	finishedCount  int
	startedStyle   lipgloss.Style
	succeededStyle lipgloss.Style
	failedStyle    lipgloss.Style
}

// NewProgressObserver constructs an observer writing to output; a nil output discards lines.
func NewProgressObserver(output io.Writer) *ProgressObserver {
	if output == nil {
		output = io.Discard
	}
	return &ProgressObserver{
		output:         output,
		startedStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(startedColorConstant)),
		succeededStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(succeededColorConstant)),
		failedStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color(failedColorConstant)).Bold(true),
	}
}

// CommandStarted implements execshell.CommandEventObserver.
func (observer *ProgressObserver) CommandStarted(command execshell.ShellCommand) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.startedCount++
	observer.writeLocked(observer.startedStyle.Render(startedMarkerConstant), command, "")
}

// CommandSucceeded implements execshell.CommandEventObserver.
func (observer *ProgressObserver) CommandSucceeded(command execshell.ShellCommand) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.finishedCount++
	observer.writeLocked(observer.succeededStyle.Render(succeededMarkerConstant), command, "")
}

// CommandFailed implements execshell.CommandEventObserver.
func (observer *ProgressObserver) CommandFailed(command execshell.ShellCommand, failure error) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.finishedCount++

	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	observer.writeLocked(observer.failedStyle.Render(failedMarkerConstant), command, fmt.Sprintf(failureSuffixTemplateConstant, failureMessage))
}

// Counts reports how many commands started and how many finished.
func (observer *ProgressObserver) Counts() (started int, finished int) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	return observer.startedCount, observer.finishedCount
}

func (observer *ProgressObserver) writeLocked(marker string, command execshell.ShellCommand, suffix string) {
	label := command.CommandLine()
	if workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(workingDirectory) > 0 {
		label += fmt.Sprintf(workingDirectoryTemplateConstant, workingDirectory)
	}
	fmt.Fprintf(observer.output, progressLineTemplateConstant, marker, observer.finishedCount, label, suffix)
}
