// Package config holds the rule-override configuration for commit linting.
//
// A configuration names the base rule sets to inherit from and a sparse set
// of per-rule overrides applied on top of them. It is read once at startup
// and never mutated afterwards.
package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/JNZader/commitrules/internal/rules"
)

// RuleOverrideConfig is the immutable pair of base rule-set references and
// rule overrides. Accessors return copies.
type RuleOverrideConfig struct {
	extends []string
	rules   map[string]rules.Directive
}

// NewRuleOverrideConfig validates and copies extends and overrides.
func NewRuleOverrideConfig(extends []string, overrides map[string]rules.Directive) (*RuleOverrideConfig, error) {
	if err := rules.ValidateExtends(extends); err != nil {
		return nil, &ValidationError{Field: "extends", Message: err.Error(), Err: err}
	}

	for id, d := range overrides {
		if strings.TrimSpace(id) == "" {
			return nil, &ValidationError{Field: "rules", Message: "rule id must not be empty"}
		}
		if !d.Severity.Valid() {
			return nil, &ValidationError{
				Field:   "rules." + id,
				Message: fmt.Sprintf("invalid severity %d", int(d.Severity)),
				Err:     rules.ErrInvalidSeverity,
			}
		}
		if d.Condition != rules.Always && d.Condition != rules.Never {
			return nil, &ValidationError{
				Field:   "rules." + id,
				Message: fmt.Sprintf("invalid condition %q", d.Condition),
				Err:     rules.ErrInvalidDirective,
			}
		}
	}

	return &RuleOverrideConfig{
		extends: append([]string{}, extends...),
		rules:   lo.Assign(overrides),
	}, nil
}

// Extends returns the ordered base rule-set references.
func (c *RuleOverrideConfig) Extends() []string {
	return append([]string{}, c.extends...)
}

// Rules returns the override mapping.
func (c *RuleOverrideConfig) Rules() map[string]rules.Directive {
	return lo.Assign(c.rules)
}

// Directive returns the override for a single rule.
func (c *RuleOverrideConfig) Directive(id string) (rules.Directive, bool) {
	d, ok := c.rules[id]
	return d, ok
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return "config validation error: " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
