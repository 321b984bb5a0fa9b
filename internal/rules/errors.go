package rules

import "errors"

var (
	ErrInvalidSeverity  = errors.New("invalid severity")
	ErrInvalidDirective = errors.New("invalid rule directive")
	ErrUnknownRuleSet   = errors.New("unknown rule set")
	ErrUnknownRule      = errors.New("unknown rule")
	ErrDuplicateRuleSet = errors.New("duplicate rule set")
	ErrExtendsCycle     = errors.New("rule set extends itself")
	ErrInsecureSource   = errors.New("insecure rule set source (must use HTTPS)")
	ErrRuleSetTooLarge  = errors.New("rule set too large")
)
