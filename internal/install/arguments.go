package install

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
)

const (
	longFlagPrefixConstant              = "--"
	shortFlagPrefixConstant             = "-"
	malformedArgumentsTemplateConstant  = "arguments are not passed in a valid format: %v"
	blankArgumentsTemplateConstant      = "ignored %d blank argument(s)"
	malformedArgumentsWarningConstant   = "Ignoring malformed extra arguments"
	logFieldExtraArgumentsConstant      = "extra_arguments"
	logFieldNormalizedArgumentsConstant = "normalized_arguments"
)

// ExtraArgumentsKind identifies the shape in which extra arguments were supplied.
type ExtraArgumentsKind int

// Supported extra argument shapes.
const (
	ExtraArgumentsNone ExtraArgumentsKind = iota
	ExtraArgumentsSingle
	ExtraArgumentsMany
	ExtraArgumentsInvalid
)

// ExtraArguments holds user-supplied arguments appended to every install command.
type ExtraArguments struct {
	Kind   ExtraArgumentsKind
	Values []string
	Raw    any
}

// SingleExtraArgument wraps one argument.
func SingleExtraArgument(value string) ExtraArguments {
	return ExtraArguments{Kind: ExtraArgumentsSingle, Values: []string{value}, Raw: value}
}

// ManyExtraArguments wraps an ordered list of arguments.
func ManyExtraArguments(values []string) ExtraArguments {
	copiedValues := append([]string{}, values...)
	return ExtraArguments{Kind: ExtraArgumentsMany, Values: copiedValues, Raw: copiedValues}
}

// ParseExtraArguments classifies a raw configuration value.
func ParseExtraArguments(raw any) ExtraArguments {
	switch typedValue := raw.(type) {
	case nil:
		return ExtraArguments{Kind: ExtraArgumentsNone}
	case ExtraArguments:
		return typedValue
	case string:
		return SingleExtraArgument(typedValue)
	case []string:
		return ManyExtraArguments(typedValue)
	case []any:
		values := make([]string, 0, len(typedValue))
		for _, element := range typedValue {
			stringElement, isString := element.(string)
			if !isString {
				return ExtraArguments{Kind: ExtraArgumentsInvalid, Raw: raw}
			}
			values = append(values, stringElement)
		}
		return ManyExtraArguments(values)
	default:
		return ExtraArguments{Kind: ExtraArgumentsInvalid, Raw: raw}
	}
}

// MalformedArgumentsError reports extra arguments that were dropped during normalization.
type MalformedArgumentsError struct {
	Raw              any
	BlankValuesCount int
}

// Error describes the dropped arguments.
func (malformedError MalformedArgumentsError) Error() string {
	if malformedError.BlankValuesCount > 0 {
		return fmt.Sprintf(blankArgumentsTemplateConstant, malformedError.BlankValuesCount)
	}
	return fmt.Sprintf(malformedArgumentsTemplateConstant, malformedError.Raw)
}

// NormalizeArguments converts extra arguments into long-flag syntax.
// Blank entries are dropped and reported through MalformedArgumentsError alongside the usable values.
func NormalizeArguments(arguments ExtraArguments) ([]string, error) {
	switch arguments.Kind {
	case ExtraArgumentsNone:
		return []string{}, nil
	case ExtraArgumentsSingle, ExtraArgumentsMany:
		normalized := make([]string, 0, len(arguments.Values))
		blankValuesCount := 0
		for _, value := range arguments.Values {
			if len(strings.TrimSpace(value)) == 0 {
				blankValuesCount++
				continue
			}
			normalized = append(normalized, normalizeArgument(value))
		}
		if blankValuesCount > 0 {
			return normalized, MalformedArgumentsError{Raw: arguments.Raw, BlankValuesCount: blankValuesCount}
		}
		return normalized, nil
	default:
		return []string{}, MalformedArgumentsError{Raw: arguments.Raw}
	}
}

func normalizeArgument(value string) string {
	normalized := value
	for !strings.HasPrefix(normalized, longFlagPrefixConstant) {
		normalized = shortFlagPrefixConstant + normalized
	}
	return normalized
}

// ArgumentFormatter normalizes extra arguments and logs a warning for anything it drops.
type ArgumentFormatter struct {
	logger *zap.Logger
}

// NewArgumentFormatter constructs an ArgumentFormatter; a nil logger discards warnings.
func NewArgumentFormatter(logger *zap.Logger) ArgumentFormatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ArgumentFormatter{logger: logger}
}

// Format returns the normalized arguments, never failing.
func (formatter ArgumentFormatter) Format(arguments ExtraArguments) []string {
	normalized, normalizeError := NormalizeArguments(arguments)
	if normalizeError != nil {
		formatter.logger.Warn(
			malformedArgumentsWarningConstant,
			zap.Any(logFieldExtraArgumentsConstant, arguments.Raw),
			zap.Strings(logFieldNormalizedArgumentsConstant, normalized),
			zap.Error(normalizeError),
		)
	}
	return normalized
}

// ExtraArgumentsDecodeHook lets configuration decoding accept a string, a list, or anything else for ExtraArguments.
func ExtraArgumentsDecodeHook() mapstructure.DecodeHookFuncType {
	extraArgumentsType := reflect.TypeOf(ExtraArguments{})
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != extraArgumentsType {
			return data, nil
		}
		return ParseExtraArguments(data), nil
	}
}
