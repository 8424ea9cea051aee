package install

import (
	"strings"

	pathutils "github.com/temirov/depinstall/internal/utils/path"
)

var (
	installConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()
	installConfigurationRootSanitizer         = pathutils.NewRootSanitizerWithConfiguration(
		installConfigurationHomeDirectoryExpander,
		pathutils.RootSanitizerConfiguration{PruneNestedRoots: true},
	)
)

const (
	configurationConcurrencyKeyConstant   = "concurrency"
	configurationProductionKeyConstant    = "production"
	configurationIgnoreScriptsKeyConstant = "ignore_scripts"
	configurationAllowRootKeyConstant     = "allow_root"
	configurationNoOptionalKeyConstant    = "no_optional"
	configurationSkipInstallKeyConstant   = "skip_install"
	configurationRootsKeyConstant         = "roots"
	configurationIgnoreKeyConstant        = "ignore"
	configurationRulesFileKeyConstant     = "rules_file"
	configurationKeySeparatorConstant     = "."
	defaultRootPathConstant               = "."
)

// CommandConfiguration captures persisted settings for the install command.
type CommandConfiguration struct {
	Concurrency     int            `mapstructure:"concurrency"`
	Production      bool           `mapstructure:"production"`
	IgnoreScripts   bool           `mapstructure:"ignore_scripts"`
	ExtraArguments  ExtraArguments `mapstructure:"args"`
	AllowRoot       bool           `mapstructure:"allow_root"`
	NoOptional      bool           `mapstructure:"no_optional"`
	SkipInstall     bool           `mapstructure:"skip_install"`
	RepositoryRoots []string       `mapstructure:"roots"`
	IgnorePatterns  []string       `mapstructure:"ignore"`
	RulesFile       string         `mapstructure:"rules_file"`
}

// DefaultCommandConfiguration provides baseline configuration values for the install command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Concurrency:     defaultConcurrencyConstant,
		RepositoryRoots: []string{defaultRootPathConstant},
	}
}

// DefaultConfigurationValues returns viper defaults for the install command nested under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		qualifyKey(prefix, configurationConcurrencyKeyConstant):   defaults.Concurrency,
		qualifyKey(prefix, configurationProductionKeyConstant):    defaults.Production,
		qualifyKey(prefix, configurationIgnoreScriptsKeyConstant): defaults.IgnoreScripts,
		qualifyKey(prefix, configurationAllowRootKeyConstant):     defaults.AllowRoot,
		qualifyKey(prefix, configurationNoOptionalKeyConstant):    defaults.NoOptional,
		qualifyKey(prefix, configurationSkipInstallKeyConstant):   defaults.SkipInstall,
		qualifyKey(prefix, configurationRootsKeyConstant):         defaults.RepositoryRoots,
		qualifyKey(prefix, configurationIgnoreKeyConstant):        []string{},
		qualifyKey(prefix, configurationRulesFileKeyConstant):     defaults.RulesFile,
	}
}

// Sanitize trims configured values, expands home shortcuts, and drops empty or nested roots.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RepositoryRoots = sanitizeRoots(configuration.RepositoryRoots)
	sanitized.IgnorePatterns = sanitizeValues(configuration.IgnorePatterns)
	sanitized.RulesFile = installConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.RulesFile))
	return sanitized
}

// InstallOptions converts the configuration into dispatcher options.
func (configuration CommandConfiguration) InstallOptions() InstallOptions {
	return InstallOptions{
		Concurrency:    configuration.Concurrency,
		Production:     configuration.Production,
		IgnoreScripts:  configuration.IgnoreScripts,
		ExtraArguments: configuration.ExtraArguments,
		AllowRoot:      configuration.AllowRoot,
		NoOptional:     configuration.NoOptional,
		SkipInstall:    configuration.SkipInstall,
	}
}

func qualifyKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

func sanitizeRoots(candidateRoots []string) []string {
	return installConfigurationRootSanitizer.Sanitize(candidateRoots)
}

func sanitizeValues(rawValues []string) []string {
	sanitized := make([]string, 0, len(rawValues))
	for _, candidate := range rawValues {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
