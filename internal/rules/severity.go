package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Severity is the enforcement level of a rule. The numeric values are the
// codes used in configuration files and must not change.
type Severity int

const (
	SeverityOff     Severity = 0
	SeverityWarning Severity = 1
	SeverityError   Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Valid reports whether s is one of the known levels.
func (s Severity) Valid() bool {
	return s >= SeverityOff && s <= SeverityError
}

// Enabled reports whether a rule at this level is evaluated at all.
func (s Severity) Enabled() bool {
	return s > SeverityOff
}

var severityNames = map[string]Severity{
	"off":     SeverityOff,
	"warn":    SeverityWarning,
	"warning": SeverityWarning,
	"error":   SeverityError,
}

// ParseSeverity converts a decoded configuration value into a Severity.
// Numeric codes (0, 1, 2) and the names off, warning/warn and error are
// accepted. Integral floats are accepted because JSON decodes every number
// as float64.
func ParseSeverity(raw any) (Severity, error) {
	var code int64
	switch v := raw.(type) {
	case Severity:
		code = int64(v)
	case int:
		code = int64(v)
	case int64:
		code = v
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidSeverity, v)
		}
		code = int64(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidSeverity, v)
		}
		code = int64(v)
	case string:
		name := strings.ToLower(strings.TrimSpace(v))
		if s, ok := severityNames[name]; ok {
			return s, nil
		}
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSeverity, v)
		}
		code = n
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidSeverity, raw)
	}

	s := Severity(code)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSeverity, code)
	}
	return s, nil
}

// MarshalYAML writes the numeric code.
func (s Severity) MarshalYAML() (any, error) {
	return int(s), nil
}

// MarshalJSON writes the numeric code.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}
