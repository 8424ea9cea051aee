package ui_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depinstall/internal/execshell"
	"github.com/temirov/depinstall/internal/ui"
)

const (
	testWorkingDirectoryConstant = "/tmp/project"
	testCommandLabelConstant     = "npm install (in /tmp/project)"
	testFailureReasonConstant    = "npm exited with non-zero code 1"
)

func testCommand() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandNPM,
		Details: execshell.CommandDetails{
			Arguments:        []string{"install"},
			WorkingDirectory: testWorkingDirectoryConstant,
		},
	}
}

func TestProgressObserverRendersTransitions(testInstance *testing.T) {
	testCases := []struct {
		name           string
		invoke         func(observer *ui.ProgressObserver)
		expectedSuffix string
	}{
		{
			name: "started",
			invoke: func(observer *ui.ProgressObserver) {
				observer.CommandStarted(testCommand())
			},
			expectedSuffix: "[0 done] " + testCommandLabelConstant,
		},
		{
			name: "succeeded",
			invoke: func(observer *ui.ProgressObserver) {
				observer.CommandStarted(testCommand())
				observer.CommandSucceeded(testCommand())
			},
			expectedSuffix: "[1 done] " + testCommandLabelConstant,
		},
		{
			name: "failed",
			invoke: func(observer *ui.ProgressObserver) {
				observer.CommandStarted(testCommand())
				observer.CommandFailed(testCommand(), errors.New(testFailureReasonConstant))
			},
			expectedSuffix: "[1 done] " + testCommandLabelConstant + ": " + testFailureReasonConstant,
		},
		{
			name: "failed_without_cause",
			invoke: func(observer *ui.ProgressObserver) {
				observer.CommandStarted(testCommand())
				observer.CommandFailed(testCommand(), nil)
			},
			expectedSuffix: testCommandLabelConstant + ": unknown error",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			observer := ui.NewProgressObserver(outputBuffer)
			testCase.invoke(observer)

			lines := strings.Split(strings.TrimSpace(outputBuffer.String()), "\n")
			require.True(testInstance, strings.HasSuffix(lines[len(lines)-1], testCase.expectedSuffix), lines[len(lines)-1])
		})
	}
}

func TestProgressObserverCountsFinishedInstallersAcrossSerialBatch(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	observer := ui.NewProgressObserver(outputBuffer)

	programs := []execshell.CommandName{execshell.CommandNPM, execshell.CommandBower, execshell.CommandPip}
	for _, program := range programs {
		command := execshell.ShellCommand{Name: program, Details: execshell.CommandDetails{Arguments: []string{"install"}}}
		observer.CommandStarted(command)
		observer.CommandSucceeded(command)
	}

	lines := strings.Split(strings.TrimSpace(outputBuffer.String()), "\n")
	require.Len(testInstance, lines, 6)
	require.True(testInstance, strings.HasSuffix(lines[1], "[1 done] npm install"), lines[1])
	require.True(testInstance, strings.HasSuffix(lines[3], "[2 done] bower install"), lines[3])
	require.True(testInstance, strings.HasSuffix(lines[4], "[2 done] pip install"), lines[4])
	require.True(testInstance, strings.HasSuffix(lines[5], "[3 done] pip install"), lines[5])
}

func TestProgressObserverIsSafeForConcurrentUse(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	observer := ui.NewProgressObserver(outputBuffer)

	var waitGroup sync.WaitGroup
	for index := 0; index < 8; index++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			observer.CommandStarted(testCommand())
			observer.CommandSucceeded(testCommand())
		}()
	}
	waitGroup.Wait()

	started, finished := observer.Counts()
	require.Equal(testInstance, 8, started)
	require.Equal(testInstance, 8, finished)
	require.Len(testInstance, strings.Split(strings.TrimSpace(outputBuffer.String()), "\n"), 16)
}

func TestProgressObserverDiscardsWithoutOutput(testInstance *testing.T) {
	observer := ui.NewProgressObserver(nil)
	observer.CommandStarted(testCommand())
	started, _ := observer.Counts()
	require.Equal(testInstance, 1, started)
}
