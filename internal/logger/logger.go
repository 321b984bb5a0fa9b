// Package logger configures the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the global logger.
type Config struct {
	Level  string    // "debug", "info", ...; falls back to COMMITRULES_LOG_LEVEL, then warn
	Output io.Writer // defaults to os.Stderr
}

var (
	mu   sync.RWMutex
	base = newLogger(Config{})
)

func newLogger(cfg Config) zerolog.Logger {
	level := zerolog.WarnLevel
	name := cfg.Level
	if name == "" {
		name = os.Getenv("COMMITRULES_LOG_LEVEL")
	}
	if name != "" {
		if parsed, err := zerolog.ParseLevel(name); err == nil {
			level = parsed
		}
	}

	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Configure replaces the global logger.
func Configure(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	l := newLogger(cfg)
	mu.Lock()
	base = l
	mu.Unlock()
}

// Base returns the configured logger.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
