// Package rules resolves named base rule sets and sparse overrides into
// the effective rule table used to evaluate commit messages.
package rules

import (
	"sort"

	"github.com/samber/lo"
)

// Table maps rule identifiers to their effective directive.
type Table map[string]Directive

// IDs returns the rule identifiers in sorted order.
func (t Table) IDs() []string {
	ids := lo.Keys(t)
	sort.Strings(ids)
	return ids
}

// Enabled returns the sorted identifiers of rules with severity above off.
func (t Table) Enabled() []string {
	ids := lo.Filter(t.IDs(), func(id string, _ int) bool {
		return t[id].Enabled()
	})
	return ids
}

// Get returns the directive for id.
func (t Table) Get(id string) (Directive, bool) {
	d, ok := t[id]
	return d, ok
}

// Clone returns a shallow copy of the table.
func (t Table) Clone() Table {
	return lo.Assign(t)
}

// RuleSet is a named collection of rule directives that may itself extend
// other rule sets.
type RuleSet struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Extends     []string `yaml:"extends" json:"extends"`
	Rules       Table    `yaml:"rules" json:"rules"`
}
