package lint

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/JNZader/commitrules/internal/rules"
)

// Checker evaluates one rule against a parsed commit. It returns whether
// the commit satisfies the rule under the given condition and, if not, the
// message to report. An error means the rule's configured value is unusable.
type Checker func(c *Commit, when rules.Condition, value any) (ok bool, message string, err error)

func defaultCheckers() map[string]Checker {
	return map[string]Checker{
		"body-leading-blank":     leadingBlank("body", bodyLeadingLine),
		"footer-leading-blank":   leadingBlank("footer", footerLeadingLine),
		"body-max-line-length":   maxLineLength("body", func(c *Commit) string { return c.Body }),
		"footer-max-line-length": maxLineLength("footer", func(c *Commit) string { return c.Footer }),
		"header-max-length":      headerMaxLength,
		"header-trim":            headerTrim,
		"type-empty":             empty("type", func(c *Commit) string { return c.Type }),
		"subject-empty":          empty("subject", func(c *Commit) string { return c.Subject }),
		"type-enum":              typeEnum,
		"type-case":              letterCase("type", func(c *Commit) []string { return nonEmpty(c.Type) }),
		"scope-case":             letterCase("scope", scopes),
		"subject-case":           letterCase("subject", func(c *Commit) []string { return nonEmpty(c.Subject) }),
		"subject-full-stop":      subjectFullStop,
	}
}

func negated(when rules.Condition) bool {
	return when == rules.Never
}

func must(when rules.Condition) string {
	if negated(when) {
		return "must not"
	}
	return "must"
}

func bodyLeadingLine(c *Commit) (string, bool) {
	if c.Body == "" || len(c.lines) < 2 {
		return "", false
	}
	return c.lines[1], true
}

func footerLeadingLine(c *Commit) (string, bool) {
	if c.Footer == "" || c.footerStart < 1 {
		return "", false
	}
	return c.lines[c.footerStart-1], true
}

func leadingBlank(part string, leading func(*Commit) (string, bool)) Checker {
	return func(c *Commit, when rules.Condition, _ any) (bool, string, error) {
		line, ok := leading(c)
		if !ok {
			return true, "", nil
		}
		blank := strings.TrimSpace(line) == ""
		if blank != negated(when) {
			return true, "", nil
		}
		return false, fmt.Sprintf("%s %s have leading blank line", part, must(when)), nil
	}
}

func maxLineLength(part string, text func(*Commit) string) Checker {
	return func(c *Commit, _ rules.Condition, value any) (bool, string, error) {
		limit, err := toInt(value)
		if err != nil {
			return false, "", err
		}
		for _, line := range strings.Split(text(c), "\n") {
			if utf8.RuneCountInString(line) > limit {
				return false, fmt.Sprintf("%s's lines must not be longer than %d characters", part, limit), nil
			}
		}
		return true, "", nil
	}
}

func headerMaxLength(c *Commit, _ rules.Condition, value any) (bool, string, error) {
	limit, err := toInt(value)
	if err != nil {
		return false, "", err
	}
	n := utf8.RuneCountInString(c.Header)
	if n <= limit {
		return true, "", nil
	}
	return false, fmt.Sprintf("header must not be longer than %d characters, current length is %d", limit, n), nil
}

func headerTrim(c *Commit, when rules.Condition, _ any) (bool, string, error) {
	trimmed := strings.TrimSpace(c.Header) == c.Header
	if trimmed != negated(when) {
		return true, "", nil
	}
	if negated(when) {
		return false, "header must be surrounded by whitespace", nil
	}
	return false, "header must not be surrounded by whitespace", nil
}

func empty(part string, field func(*Commit) string) Checker {
	return func(c *Commit, when rules.Condition, _ any) (bool, string, error) {
		isEmpty := field(c) == ""
		if isEmpty != negated(when) {
			return true, "", nil
		}
		if negated(when) {
			return false, part + " may not be empty", nil
		}
		return false, part + " must be empty", nil
	}
}

func typeEnum(c *Commit, when rules.Condition, value any) (bool, string, error) {
	allowed, err := toStrings(value)
	if err != nil {
		return false, "", err
	}
	if c.Type == "" {
		return true, "", nil
	}
	if lo.Contains(allowed, c.Type) != negated(when) {
		return true, "", nil
	}
	return false, fmt.Sprintf("type %s be one of [%s]", must(when), strings.Join(allowed, ", ")), nil
}

// letterCase checks every value returned by field against the configured
// case names. "always" passes when any case matches; "never" passes when
// none does.
func letterCase(part string, field func(*Commit) []string) Checker {
	return func(c *Commit, when rules.Condition, value any) (bool, string, error) {
		names, err := toStrings(value)
		if err != nil {
			return false, "", err
		}
		for _, s := range field(c) {
			matched := false
			for _, name := range names {
				ok, err := isCase(s, name)
				if err != nil {
					return false, "", err
				}
				if ok {
					matched = true
					break
				}
			}
			if matched == negated(when) {
				return false, fmt.Sprintf("%s %s be %s", part, must(when), strings.Join(names, ", ")), nil
			}
		}
		return true, "", nil
	}
}

func subjectFullStop(c *Commit, when rules.Condition, value any) (bool, string, error) {
	stop := "."
	if value != nil {
		s, ok := value.(string)
		if !ok {
			return false, "", fmt.Errorf("expected a string, got %T", value)
		}
		stop = s
	}
	if c.Subject == "" {
		return true, "", nil
	}
	ends := strings.HasSuffix(c.Subject, stop)
	if ends != negated(when) {
		return true, "", nil
	}
	if negated(when) {
		return false, "subject may not end with full stop", nil
	}
	return false, "subject must end with full stop", nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// scopes splits multi-scope headers such as "feat(api/cli): ...".
func scopes(c *Commit) []string {
	parts := strings.FieldsFunc(c.Scope, func(r rune) bool {
		return r == '/' || r == '\\' || r == ','
	})
	return lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string entries, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string or list of strings, got %T", value)
	}
}
