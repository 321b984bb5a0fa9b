package rules

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var embeddedPresets embed.FS

// Registry holds the rule sets that can be referenced by name.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]RuleSet
}

// NewRegistry creates a registry preloaded with the embedded presets.
func NewRegistry() (*Registry, error) {
	r := NewEmptyRegistry()

	entries, err := embeddedPresets.ReadDir("presets")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		data, err := embeddedPresets.ReadFile(path.Join("presets", entry.Name()))
		if err != nil {
			return nil, err
		}

		set, err := ParseRuleSet(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}

		if err := r.Register(set); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// NewEmptyRegistry creates a registry with no rule sets.
func NewEmptyRegistry() *Registry {
	return &Registry{sets: make(map[string]RuleSet)}
}

// Register adds a named rule set.
func (r *Registry) Register(set RuleSet) error {
	if set.Name == "" {
		return fmt.Errorf("rule set name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sets[set.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRuleSet, set.Name)
	}
	set.Rules = set.Rules.Clone()
	set.Extends = append([]string(nil), set.Extends...)
	r.sets[set.Name] = set
	return nil
}

// Lookup returns the rule set registered under name.
func (r *Registry) Lookup(name string) (RuleSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sets[name]
	if !ok {
		return RuleSet{}, false
	}
	set.Rules = set.Rules.Clone()
	return set, true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.sets)
	sort.Strings(names)
	return names
}

// ParseRuleSet decodes a YAML rule set. Unknown fields and duplicate keys
// are rejected.
func ParseRuleSet(data []byte) (RuleSet, error) {
	var set RuleSet

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return RuleSet{}, err
	}
	if set.Rules == nil {
		set.Rules = Table{}
	}
	return set, nil
}
