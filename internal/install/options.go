package install

const (
	defaultConcurrencyConstant = 1
)

// InstallOptions configures how install commands are built and dispatched.
type InstallOptions struct {
	Concurrency    int
	Production     bool
	IgnoreScripts  bool
	ExtraArguments ExtraArguments
	AllowRoot      bool
	NoOptional     bool
	SkipInstall    bool
	Quiet          bool
	HumanReadable  bool
}

// DefaultInstallOptions returns options that run one command at a time with no extra flags.
func DefaultInstallOptions() InstallOptions {
	return InstallOptions{Concurrency: defaultConcurrencyConstant}
}

// EffectiveConcurrency reports the concurrency limit, falling back to serial execution for non-positive values.
func (options InstallOptions) EffectiveConcurrency() int {
	if options.Concurrency < 1 {
		return defaultConcurrencyConstant
	}
	return options.Concurrency
}
