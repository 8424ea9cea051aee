package install

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/temirov/depinstall/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant  = "install dispatcher executor not configured"
	batchAlreadyFlushedMessageConstant    = "install batch already flushed"
	batchStateChangedMessageConstant      = "install batch state changed"
	entryCollectedMessageConstant         = "manifest matched install rule"
	entryIgnoredAfterFlushMessageConstant = "manifest received after flush; not classified"
	logFieldBatchIdentifierConstant       = "batch_id"
	logFieldBatchStateConstant            = "state"
	logFieldPathConstant                  = "path"
	logFieldConcurrencyConstant           = "concurrency"
)

var (
	// ErrExecutorNotConfigured indicates that a Dispatcher was built without a command executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrBatchAlreadyFlushed indicates that Flush was invoked more than once on the same Dispatcher.
	ErrBatchAlreadyFlushed = errors.New(batchAlreadyFlushedMessageConstant)
)

// FileEntry is one record of the discovered file stream; Path may be empty.
type FileEntry struct {
	Path string
}

// CommandExecutor runs a single command to completion.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) error
}

// BatchState tracks the dispatcher lifecycle.
type BatchState int

// Batch lifecycle states.
const (
	BatchStateCollecting BatchState = iota
	BatchStateFlushing
	BatchStateSkippedReport
	BatchStateExecuting
	BatchStateDone
)

var batchStateNames = map[BatchState]string{
	BatchStateCollecting:    "collecting",
	BatchStateFlushing:      "flushing",
	BatchStateSkippedReport: "skipped_report",
	BatchStateExecuting:     "executing",
	BatchStateDone:          "done",
}

// String returns the lowercase state name.
func (state BatchState) String() string {
	return batchStateNames[state]
}

type commandOutcome struct {
	descriptor CommandDescriptor
	failure    error
}

// Dispatcher collects install commands from a file stream and runs them under a concurrency limit.
//
// A Dispatcher handles exactly one batch. After the first failure Flush returns
// while sibling commands keep running; Wait blocks until they exit.
type Dispatcher struct {
	logger            *zap.Logger
	executor          CommandExecutor
	builder           DescriptorBuilder
	reporter          BatchReporter
	options           InstallOptions
	batchIdentifier   string
	pendingBatch      []CommandDescriptor
	state             BatchState
	stateMutex        sync.Mutex
	inFlightCommands  sync.WaitGroup
	completedCommands atomic.Int64
}

// NewDispatcher constructs a Dispatcher for one batch.
func NewDispatcher(logger *zap.Logger, executor CommandExecutor, rules RuleTable, options InstallOptions) (*Dispatcher, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil || options.Quiet {
		logger = zap.NewNop()
	}

	batchIdentifier := uuid.NewString()
	logger = logger.With(zap.String(logFieldBatchIdentifierConstant, batchIdentifier))

	resolvedOptions := options
	resolvedOptions.Concurrency = options.EffectiveConcurrency()
	resolvedOptions.ExtraArguments = ManyExtraArguments(NewArgumentFormatter(logger).Format(options.ExtraArguments))

	return &Dispatcher{
		logger:          logger,
		executor:        executor,
		builder:         NewDescriptorBuilder(rules),
		reporter:        NewBatchReporter(logger, options.HumanReadable),
		options:         resolvedOptions,
		batchIdentifier: batchIdentifier,
		state:           BatchStateCollecting,
	}, nil
}

// BatchIdentifier returns the identifier attached to every log entry of this batch.
func (dispatcher *Dispatcher) BatchIdentifier() string {
	return dispatcher.batchIdentifier
}

// State reports the current lifecycle state.
func (dispatcher *Dispatcher) State() BatchState {
	dispatcher.stateMutex.Lock()
	defer dispatcher.stateMutex.Unlock()
	return dispatcher.state
}

// PendingBatch returns a copy of the descriptors collected so far.
func (dispatcher *Dispatcher) PendingBatch() []CommandDescriptor {
	dispatcher.stateMutex.Lock()
	defer dispatcher.stateMutex.Unlock()
	return append([]CommandDescriptor{}, dispatcher.pendingBatch...)
}

// CompletedCommands reports how many commands of the batch finished successfully before the batch result was decided.
func (dispatcher *Dispatcher) CompletedCommands() int {
	return int(dispatcher.completedCommands.Load())
}

// Collect classifies one entry and returns it unchanged for forwarding downstream.
func (dispatcher *Dispatcher) Collect(entry FileEntry) FileEntry {
	if len(entry.Path) == 0 {
		return entry
	}

	descriptor, matched := dispatcher.builder.Build(entry.Path, dispatcher.options)
	if !matched {
		return entry
	}

	dispatcher.stateMutex.Lock()
	defer dispatcher.stateMutex.Unlock()

	if dispatcher.state != BatchStateCollecting {
		dispatcher.logger.Debug(entryIgnoredAfterFlushMessageConstant, zap.String(logFieldPathConstant, entry.Path))
		return entry
	}

	dispatcher.pendingBatch = append(dispatcher.pendingBatch, descriptor)
	dispatcher.logger.Debug(entryCollectedMessageConstant, zap.String(logFieldPathConstant, entry.Path), zap.String(logFieldCommandConstant, descriptor.CommandLine()))
	return entry
}

// Stream forwards every entry to downstream in order, classifying each, and flushes once entries is closed.
// downstream may be nil; when set it is closed after the flush completes.
func (dispatcher *Dispatcher) Stream(executionContext context.Context, entries <-chan FileEntry, downstream chan<- FileEntry) error {
	if downstream != nil {
		defer close(downstream)
	}

	for {
		select {
		case <-executionContext.Done():
			return executionContext.Err()
		case entry, entryAvailable := <-entries:
			if !entryAvailable {
				return dispatcher.Flush(executionContext)
			}

			forwardedEntry := dispatcher.Collect(entry)
			if downstream == nil {
				continue
			}

			select {
			case downstream <- forwardedEntry:
			case <-executionContext.Done():
				return executionContext.Err()
			}
		}
	}
}

// Flush ends collection and either reports the pending commands or runs them.
// It returns nil when every command succeeds and the first failure otherwise.
func (dispatcher *Dispatcher) Flush(executionContext context.Context) error {
	dispatcher.stateMutex.Lock()
	if dispatcher.state != BatchStateCollecting {
		dispatcher.stateMutex.Unlock()
		return ErrBatchAlreadyFlushed
	}
	dispatcher.transitionLocked(BatchStateFlushing)
	batch := append([]CommandDescriptor{}, dispatcher.pendingBatch...)
	dispatcher.stateMutex.Unlock()

	defer dispatcher.transition(BatchStateDone)

	if len(batch) == 0 {
		return nil
	}

	if dispatcher.options.SkipInstall {
		dispatcher.transition(BatchStateSkippedReport)
		dispatcher.reporter.ReportSkipped(batch)
		return nil
	}

	dispatcher.transition(BatchStateExecuting)
	return dispatcher.execute(executionContext, batch)
}

// Wait blocks until every command spawned by Flush has exited.
func (dispatcher *Dispatcher) Wait() {
	dispatcher.inFlightCommands.Wait()
}

func (dispatcher *Dispatcher) execute(executionContext context.Context, batch []CommandDescriptor) error {
	limiter := semaphore.NewWeighted(int64(dispatcher.options.Concurrency))
	outcomes := make(chan commandOutcome, len(batch))

	for _, descriptor := range batch {
		dispatcher.inFlightCommands.Add(1)
		go func(descriptor CommandDescriptor) {
			defer dispatcher.inFlightCommands.Done()
			outcomes <- dispatcher.runLimited(executionContext, limiter, descriptor)
		}(descriptor)
	}

	for {
		outcome := <-outcomes
		if outcome.failure != nil {
			dispatcher.reporter.ReportFailure(outcome.descriptor, outcome.failure)
			return outcome.failure
		}
		if int(dispatcher.completedCommands.Add(1)) == len(batch) {
			return nil
		}
	}
}

func (dispatcher *Dispatcher) runLimited(executionContext context.Context, limiter *semaphore.Weighted, descriptor CommandDescriptor) commandOutcome {
	if acquireError := limiter.Acquire(executionContext, 1); acquireError != nil {
		return commandOutcome{descriptor: descriptor, failure: acquireError}
	}
	defer limiter.Release(1)

	return commandOutcome{
		descriptor: descriptor,
		failure:    dispatcher.executor.Execute(executionContext, descriptor.ShellCommand()),
	}
}

func (dispatcher *Dispatcher) transition(nextState BatchState) {
	dispatcher.stateMutex.Lock()
	defer dispatcher.stateMutex.Unlock()
	dispatcher.transitionLocked(nextState)
}

func (dispatcher *Dispatcher) transitionLocked(nextState BatchState) {
	dispatcher.state = nextState
	fields := []zap.Field{zap.String(logFieldBatchStateConstant, nextState.String())}
	if nextState == BatchStateExecuting {
		fields = append(fields, zap.Int(logFieldConcurrencyConstant, dispatcher.options.Concurrency))
	}
	dispatcher.logger.Debug(batchStateChangedMessageConstant, fields...)
}
