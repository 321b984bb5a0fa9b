package config

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/JNZader/commitrules/internal/logger"
	"github.com/JNZader/commitrules/internal/rules"
)

const configName = ".commitlintrc"

// Loader discovers and decodes the rule-override configuration file.
type Loader struct {
	v          *viper.Viper
	configFile string
	log        zerolog.Logger
}

// NewLoader creates a loader searching the working directory, then $HOME,
// then /etc/commitrules for .commitlintrc.{yaml,yml,json,toml}.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName(configName)
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	v.AddConfigPath("/etc/commitrules")

	return &Loader{v: v, log: logger.WithComponent("config")}
}

// SetConfigFile pins the file to read instead of searching.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
	l.v.SetConfigFile(path)
}

// Load reads the configuration. When no file is found the permissive
// Default is returned. A file that exists but cannot be decoded is an error.
func (l *Loader) Load() (*RuleOverrideConfig, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && l.configFile == "" {
			l.log.Warn().Msg("no configuration file found, using defaults")
			return Default(), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := decodeSettings(l.v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.v.ConfigFileUsed(), err)
	}

	l.log.Debug().
		Str("file", l.v.ConfigFileUsed()).
		Strs("extends", cfg.extends).
		Int("overrides", len(cfg.rules)).
		Msg("loaded configuration")

	return cfg, nil
}

// ConfigFileUsed returns the path of the file read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*RuleOverrideConfig, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

// LoadDefault loads configuration with the default search paths.
func LoadDefault() (*RuleOverrideConfig, error) {
	return NewLoader().Load()
}

// MustLoad loads configuration and panics on error.
// Use only in main() or init() functions.
func MustLoad() *RuleOverrideConfig {
	cfg, err := LoadDefault()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// fileConfig is the on-disk shape.
type fileConfig struct {
	Extends []string                   `yaml:"extends"`
	Rules   map[string]rules.Directive `yaml:"rules"`
}

// Parse decodes YAML configuration bytes. Unknown keys and duplicate
// mapping keys are rejected.
func Parse(data []byte) (*RuleOverrideConfig, error) {
	var fc fileConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	return NewRuleOverrideConfig(fc.Extends, fc.Rules)
}

// decodeSettings converts viper's generic settings map. Viper has already
// parsed the file with the codec matching its extension.
func decodeSettings(settings map[string]any) (*RuleOverrideConfig, error) {
	unknown := lo.Without(lo.Keys(settings), "extends", "rules")
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ValidationError{Field: unknown[0], Message: "unknown configuration key"}
	}

	extends, err := toStrings(settings["extends"])
	if err != nil {
		return nil, &ValidationError{Field: "extends", Message: err.Error()}
	}

	var overrides map[string]rules.Directive
	if raw, ok := settings["rules"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, &ValidationError{Field: "rules", Message: fmt.Sprintf("expected a mapping, got %T", raw)}
		}
		overrides = make(map[string]rules.Directive, len(m))
		for id, value := range m {
			d, err := rules.ParseDirective(value)
			if err != nil {
				return nil, &ValidationError{Field: "rules." + id, Message: err.Error(), Err: err}
			}
			overrides[id] = d
		}
	}

	return NewRuleOverrideConfig(extends, overrides)
}

func toStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
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
		return nil, fmt.Errorf("expected a list of strings, got %T", raw)
	}
}
