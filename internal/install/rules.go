package install

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/depinstall/internal/execshell"
)

const (
	ruleTableParseErrorTemplateConstant     = "failed to parse manifest rules: %w"
	ruleTableReadErrorTemplateConstant      = "failed to read manifest rules: %w"
	ruleTableDuplicateTemplateConstant      = "manifest rule for %s defined more than once"
	ruleTableMissingProgramTemplateConstant = "manifest rule for %s missing program"
	ruleTableEmptyMessageConstant           = "manifest rules must define at least one rule"
	ruleTableMissingFileNameMessageConstant = "manifest rule missing file name"
)

//go:embed rules.yaml
var embeddedRuleTableContent []byte

// ManifestRule maps a manifest basename to the installer invocation it triggers.
type ManifestRule struct {
	FileName  string                `yaml:"file"`
	Program   execshell.CommandName `yaml:"program"`
	Arguments []string              `yaml:"arguments"`
}

// RuleTable is the fixed, read-only set of manifest rules.
type RuleTable struct {
	orderedRules []ManifestRule
	rulesByName  map[string]ManifestRule
}

type ruleTableDocument struct {
	Rules []ManifestRule `yaml:"rules"`
}

// DefaultRuleTable parses the embedded rule table.
func DefaultRuleTable() (RuleTable, error) {
	return ParseRuleTable(embeddedRuleTableContent)
}

// LoadRuleTableFile parses a rule table stored on disk.
func LoadRuleTableFile(filePath string) (RuleTable, error) {
	contentBytes, readError := os.ReadFile(strings.TrimSpace(filePath))
	if readError != nil {
		return RuleTable{}, fmt.Errorf(ruleTableReadErrorTemplateConstant, readError)
	}
	return ParseRuleTable(contentBytes)
}

// ParseRuleTable decodes a YAML rule document and validates it.
func ParseRuleTable(contentBytes []byte) (RuleTable, error) {
	var document ruleTableDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return RuleTable{}, fmt.Errorf(ruleTableParseErrorTemplateConstant, unmarshalError)
	}
	return NewRuleTable(document.Rules)
}

// NewRuleTable validates the rules and stores private copies of them.
func NewRuleTable(rules []ManifestRule) (RuleTable, error) {
	if len(rules) == 0 {
		return RuleTable{}, errors.New(ruleTableEmptyMessageConstant)
	}

	table := RuleTable{
		orderedRules: make([]ManifestRule, 0, len(rules)),
		rulesByName:  make(map[string]ManifestRule, len(rules)),
	}

	for _, rule := range rules {
		fileName := strings.TrimSpace(rule.FileName)
		if len(fileName) == 0 {
			return RuleTable{}, errors.New(ruleTableMissingFileNameMessageConstant)
		}
		if len(strings.TrimSpace(string(rule.Program))) == 0 {
			return RuleTable{}, fmt.Errorf(ruleTableMissingProgramTemplateConstant, fileName)
		}
		if _, exists := table.rulesByName[fileName]; exists {
			return RuleTable{}, fmt.Errorf(ruleTableDuplicateTemplateConstant, fileName)
		}

		storedRule := ManifestRule{
			FileName:  fileName,
			Program:   execshell.CommandName(strings.TrimSpace(string(rule.Program))),
			Arguments: append([]string{}, rule.Arguments...),
		}
		table.orderedRules = append(table.orderedRules, storedRule)
		table.rulesByName[fileName] = storedRule
	}

	return table, nil
}

// Rules returns copies of the rules in declaration order.
func (table RuleTable) Rules() []ManifestRule {
	rules := make([]ManifestRule, 0, len(table.orderedRules))
	for _, rule := range table.orderedRules {
		rules = append(rules, rule.clone())
	}
	return rules
}

// Lookup finds the rule for an exact, case-sensitive manifest basename.
func (table RuleTable) Lookup(fileName string) (ManifestRule, bool) {
	rule, found := table.rulesByName[fileName]
	if !found {
		return ManifestRule{}, false
	}
	return rule.clone(), true
}

func (rule ManifestRule) clone() ManifestRule {
	cloned := rule
	cloned.Arguments = append([]string{}, rule.Arguments...)
	return cloned
}
