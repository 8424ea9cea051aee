package install

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depinstall/internal/discovery"
	"github.com/temirov/depinstall/internal/execshell"
	"github.com/temirov/depinstall/internal/ui"
)

const (
	commandUseConstant                    = "install [root...]"
	commandShortDescriptionConstant       = "Install dependencies for every manifest under the given roots"
	commandLongDescriptionConstant        = "install walks the provided roots (or the configured ones), runs npm, bower, tsd, and pip for the manifests it finds, and limits how many installers run at once."
	commandExecutionErrorTemplateConstant = "install failed: %w"
	ignoreRulesErrorTemplateConstant      = "invalid ignore patterns: %w"
	rulesLoadErrorTemplateConstant        = "unable to load manifest rules: %w"
	concurrencyFlagNameConstant           = "concurrency"
	concurrencyFlagDescriptionConstant    = "Maximum number of installers running at once"
	productionFlagNameConstant            = "production"
	productionFlagDescriptionConstant     = "Append --production to every installer"
	ignoreScriptsFlagNameConstant         = "ignore-scripts"
	ignoreScriptsFlagDescriptionConstant  = "Append --ignore-scripts to every installer"
	argsFlagNameConstant                  = "args"
	argsFlagDescriptionConstant           = "Extra argument appended to every installer, normalized to --name (repeatable)"
	allowRootFlagNameConstant             = "allow-root"
	allowRootFlagDescriptionConstant      = "Append --allow-root to bower"
	noOptionalFlagNameConstant            = "no-optional"
	noOptionalFlagDescriptionConstant     = "Append --no-optional to npm"
	skipInstallFlagNameConstant           = "skip-install"
	skipInstallFlagDescriptionConstant    = "Print the pending commands instead of running them"
	ignoreFlagNameConstant                = "ignore"
	ignoreFlagDescriptionConstant         = "Additional glob pattern excluded from discovery (repeatable)"
	rulesFlagNameConstant                 = "rules"
	rulesFlagDescriptionConstant          = "Path to a YAML file replacing the built-in manifest rules"
	entryForwardedMessageConstant         = "manifest forwarded"
	installStartedMessageConstant         = "install batch started"
	logFieldRootsConstant                 = "roots"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current install configuration.
type ConfigurationProvider func() CommandConfiguration

// BooleanProvider reports a runtime toggle resolved by the application.
type BooleanProvider func() bool

// ManifestWalker streams discovered file paths to a visitor.
type ManifestWalker interface {
	Walk(executionContext context.Context, roots []string, visit discovery.ManifestVisitor) error
}

// CommandBuilder assembles the install cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider BooleanProvider
	QuietProvider                BooleanProvider
	Executor                     CommandExecutor
	Walker                       ManifestWalker
	CommandEventsObserver        execshell.CommandEventObserver
}

// Build constructs the install command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(concurrencyFlagNameConstant, defaultConcurrencyConstant, concurrencyFlagDescriptionConstant)
	command.Flags().Bool(productionFlagNameConstant, false, productionFlagDescriptionConstant)
	command.Flags().Bool(ignoreScriptsFlagNameConstant, false, ignoreScriptsFlagDescriptionConstant)
	command.Flags().StringSlice(argsFlagNameConstant, nil, argsFlagDescriptionConstant)
	command.Flags().Bool(allowRootFlagNameConstant, false, allowRootFlagDescriptionConstant)
	command.Flags().Bool(noOptionalFlagNameConstant, false, noOptionalFlagDescriptionConstant)
	command.Flags().Bool(skipInstallFlagNameConstant, false, skipInstallFlagDescriptionConstant)
	command.Flags().StringSlice(ignoreFlagNameConstant, nil, ignoreFlagDescriptionConstant)
	command.Flags().String(rulesFlagNameConstant, "", rulesFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.parseConfiguration(command, arguments)
	if configurationError != nil {
		return configurationError
	}

	rules, rulesError := resolveRuleTable(configuration.RulesFile)
	if rulesError != nil {
		return rulesError
	}

	options := configuration.InstallOptions()
	options.Quiet = resolveToggle(builder.QuietProvider)
	options.HumanReadable = resolveToggle(builder.HumanReadableLoggingProvider)

	logger := builder.resolveLogger()
	if options.Quiet {
		logger = zap.NewNop()
	}

	executor, executorError := builder.resolveExecutor(command, logger, options)
	if executorError != nil {
		return executorError
	}

	walker, walkerError := builder.resolveWalker(logger, rules, configuration.IgnorePatterns)
	if walkerError != nil {
		return walkerError
	}

	dispatcher, dispatcherError := NewDispatcher(logger, executor, rules, options)
	if dispatcherError != nil {
		return dispatcherError
	}

	logger.Debug(installStartedMessageConstant, zap.String(logFieldBatchIdentifierConstant, dispatcher.BatchIdentifier()), zap.Strings(logFieldRootsConstant, configuration.RepositoryRoots))

	if executionError := runPipeline(command.Context(), logger, walker, dispatcher, configuration.RepositoryRoots); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	return nil
}

// runPipeline connects discovery to the dispatcher and drains the forwarded stream.
func runPipeline(executionContext context.Context, logger *zap.Logger, walker ManifestWalker, dispatcher *Dispatcher, roots []string) error {
	if executionContext == nil {
		executionContext = context.Background()
	}

	entries := make(chan FileEntry)
	downstream := make(chan FileEntry)
	walkResult := make(chan error, 1)
	drained := make(chan struct{})

	go func() {
		defer close(entries)
		walkResult <- walker.Walk(executionContext, roots, func(filePath string) error {
			select {
			case entries <- FileEntry{Path: filePath}:
				return nil
			case <-executionContext.Done():
				return executionContext.Err()
			}
		})
	}()

	go func() {
		defer close(drained)
		for entry := range downstream {
			logger.Debug(entryForwardedMessageConstant, zap.String(logFieldPathConstant, entry.Path))
		}
	}()

	streamError := dispatcher.Stream(executionContext, entries, downstream)
	<-drained
	dispatcher.Wait()

	if streamError != nil {
		return streamError
	}
	return <-walkResult
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command, arguments []string) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(concurrencyFlagNameConstant) {
		concurrencyValue, concurrencyError := flagSet.GetInt(concurrencyFlagNameConstant)
		if concurrencyError != nil {
			return CommandConfiguration{}, concurrencyError
		}
		configuration.Concurrency = concurrencyValue
	}

	booleanTargets := map[string]*bool{
		productionFlagNameConstant:    &configuration.Production,
		ignoreScriptsFlagNameConstant: &configuration.IgnoreScripts,
		allowRootFlagNameConstant:     &configuration.AllowRoot,
		noOptionalFlagNameConstant:    &configuration.NoOptional,
		skipInstallFlagNameConstant:   &configuration.SkipInstall,
	}
	for flagName, target := range booleanTargets {
		if !flagSet.Changed(flagName) {
			continue
		}
		flagValue, flagError := flagSet.GetBool(flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*target = flagValue
	}

	if flagSet.Changed(argsFlagNameConstant) {
		argumentValues, argumentsError := flagSet.GetStringSlice(argsFlagNameConstant)
		if argumentsError != nil {
			return CommandConfiguration{}, argumentsError
		}
		if len(argumentValues) == 1 {
			configuration.ExtraArguments = SingleExtraArgument(argumentValues[0])
		} else {
			configuration.ExtraArguments = ManyExtraArguments(argumentValues)
		}
	}

	if flagSet.Changed(ignoreFlagNameConstant) {
		ignoreValues, ignoreError := flagSet.GetStringSlice(ignoreFlagNameConstant)
		if ignoreError != nil {
			return CommandConfiguration{}, ignoreError
		}
		configuration.IgnorePatterns = append(append([]string{}, configuration.IgnorePatterns...), ignoreValues...)
	}

	if flagSet.Changed(rulesFlagNameConstant) {
		rulesValue, rulesError := flagSet.GetString(rulesFlagNameConstant)
		if rulesError != nil {
			return CommandConfiguration{}, rulesError
		}
		configuration.RulesFile = rulesValue
	}

	if len(arguments) > 0 {
		configuration.RepositoryRoots = append([]string{}, arguments...)
	}

	configuration = configuration.Sanitize()
	if len(configuration.RepositoryRoots) == 0 {
		configuration.RepositoryRoots = []string{defaultRootPathConstant}
	}
	return configuration, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveExecutor(command *cobra.Command, logger *zap.Logger, options InstallOptions) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	eventsObserver := builder.CommandEventsObserver
	if eventsObserver == nil && options.HumanReadable && !options.Quiet {
		eventsObserver = ui.NewProgressObserver(command.ErrOrStderr())
	}

	runner := execshell.NewOSCommandRunnerWithStreams(command.InOrStdin(), command.OutOrStdout(), command.ErrOrStderr())
	return execshell.NewShellExecutor(logger, runner, eventsObserver)
}

func (builder *CommandBuilder) resolveWalker(logger *zap.Logger, rules RuleTable, ignorePatterns []string) (ManifestWalker, error) {
	if builder.Walker != nil {
		return builder.Walker, nil
	}

	patterns := append(append([]string{}, discovery.DefaultIgnorePatterns...), ignorePatterns...)
	ignoreRules, ignoreError := discovery.NewIgnoreRules(patterns)
	if ignoreError != nil {
		return nil, fmt.Errorf(ignoreRulesErrorTemplateConstant, ignoreError)
	}

	manifestNames := make([]string, 0)
	for _, rule := range rules.Rules() {
		manifestNames = append(manifestNames, rule.FileName)
	}

	return discovery.NewManifestDiscoverer(logger, ignoreRules, manifestNames), nil
}

func resolveRuleTable(rulesFile string) (RuleTable, error) {
	var (
		rules     RuleTable
		loadError error
	)
	if len(strings.TrimSpace(rulesFile)) == 0 {
		rules, loadError = DefaultRuleTable()
	} else {
		rules, loadError = LoadRuleTableFile(rulesFile)
	}
	if loadError != nil {
		return RuleTable{}, fmt.Errorf(rulesLoadErrorTemplateConstant, loadError)
	}
	return rules, nil
}

func resolveToggle(provider BooleanProvider) bool {
	if provider == nil {
		return false
	}
	return provider()
}
