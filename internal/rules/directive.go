package rules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Condition selects whether a rule asserts or negates its check.
type Condition string

const (
	Always Condition = "always"
	Never  Condition = "never"
)

// Directive is the configured behavior of one rule: a severity, a condition
// and an optional rule-specific argument.
type Directive struct {
	Severity  Severity
	Condition Condition
	Value     any
}

// Off returns the directive that disables a rule.
func Off() Directive {
	return Directive{Severity: SeverityOff, Condition: Always}
}

// Warn returns a warning-level directive.
func Warn(when Condition, value any) Directive {
	return Directive{Severity: SeverityWarning, Condition: when, Value: value}
}

// Error returns an error-level directive.
func Error(when Condition, value any) Directive {
	return Directive{Severity: SeverityError, Condition: when, Value: value}
}

// Enabled reports whether the rule is evaluated.
func (d Directive) Enabled() bool {
	return d.Severity.Enabled()
}

func (d Directive) String() string {
	if d.Value == nil {
		return fmt.Sprintf("[%s %s]", d.Severity, d.Condition)
	}
	return fmt.Sprintf("[%s %s %v]", d.Severity, d.Condition, d.Value)
}

// ParseDirective converts a decoded configuration value into a Directive.
//
// Accepted shapes:
//
//	[severity]
//	[severity, condition]
//	[severity, condition, value]
//	{level: severity, when: condition, value: value}
//	severity
func ParseDirective(raw any) (Directive, error) {
	switch v := raw.(type) {
	case Directive:
		return v, nil
	case []any:
		return parseSequence(v)
	case map[string]any:
		return parseMapping(v)
	case nil:
		return Directive{}, fmt.Errorf("%w: empty directive", ErrInvalidDirective)
	default:
		sev, err := ParseSeverity(v)
		if err != nil {
			return Directive{}, fmt.Errorf("%w: %w", ErrInvalidDirective, err)
		}
		return Directive{Severity: sev, Condition: Always}, nil
	}
}

func parseSequence(items []any) (Directive, error) {
	if len(items) == 0 || len(items) > 3 {
		return Directive{}, fmt.Errorf("%w: expected 1 to 3 elements, got %d", ErrInvalidDirective, len(items))
	}

	sev, err := ParseSeverity(items[0])
	if err != nil {
		return Directive{}, fmt.Errorf("%w: %w", ErrInvalidDirective, err)
	}

	d := Directive{Severity: sev, Condition: Always}
	if len(items) > 1 {
		if d.Condition, err = parseCondition(items[1]); err != nil {
			return Directive{}, err
		}
	}
	if len(items) > 2 {
		d.Value = items[2]
	}
	return d, nil
}

func parseMapping(m map[string]any) (Directive, error) {
	d := Directive{Condition: Always}
	seenLevel := false

	for key, value := range m {
		var err error
		switch strings.ToLower(key) {
		case "level", "severity":
			d.Severity, err = ParseSeverity(value)
			seenLevel = true
		case "when", "condition":
			d.Condition, err = parseCondition(value)
		case "value":
			d.Value = value
		default:
			err = fmt.Errorf("%w: unknown key %q", ErrInvalidDirective, key)
		}
		if err != nil {
			return Directive{}, err
		}
	}

	if !seenLevel {
		return Directive{}, fmt.Errorf("%w: missing level", ErrInvalidDirective)
	}
	return d, nil
}

func parseCondition(raw any) (Condition, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: condition must be a string, got %T", ErrInvalidDirective, raw)
	}
	switch c := Condition(strings.ToLower(strings.TrimSpace(s))); c {
	case Always, Never:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown condition %q", ErrInvalidDirective, s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Directive) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseDirective(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = parsed
	return nil
}

// MarshalYAML writes the sequence form.
func (d Directive) MarshalYAML() (any, error) {
	return d.sequence(), nil
}

func (d Directive) sequence() []any {
	cond := d.Condition
	if cond == "" {
		cond = Always
	}
	switch {
	case d.Value != nil:
		return []any{int(d.Severity), string(cond), d.Value}
	case d.Severity == SeverityOff && cond == Always:
		return []any{int(d.Severity)}
	default:
		return []any{int(d.Severity), string(cond)}
	}
}
