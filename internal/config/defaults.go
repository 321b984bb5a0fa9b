package config

import "github.com/JNZader/commitrules/internal/rules"

// ConventionalRuleSet is the name of the embedded conventional commit preset.
const ConventionalRuleSet = "conventional-commit-rules"

// Default returns the permissive configuration: conventional commit rules
// with the subject, type, scope-case and header-length checks turned off so
// that ordinary commit messages are accepted.
func Default() *RuleOverrideConfig {
	return &RuleOverrideConfig{
		extends: []string{ConventionalRuleSet},
		rules: map[string]rules.Directive{
			"subject-empty":     rules.Off(),
			"type-empty":        rules.Off(),
			"type-enum":         rules.Off(),
			"scope-case":        rules.Off(),
			"header-max-length": rules.Off(),
		},
	}
}
