// Package lint evaluates commit messages against an effective rule table.
package lint

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/JNZader/commitrules/internal/logger"
	"github.com/JNZader/commitrules/internal/rules"
)

// ErrNoChecker is returned when an enabled rule has no implementation.
var ErrNoChecker = errors.New("no checker for rule")

// Problem is a single rule violation.
type Problem struct {
	Rule     string         `json:"rule"`
	Severity rules.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// Report is the outcome of linting one message.
type Report struct {
	Input    string    `json:"input"`
	Valid    bool      `json:"valid"`
	Errors   []Problem `json:"errors"`
	Warnings []Problem `json:"warnings"`
}

// Linter evaluates messages using a catalog of rule checkers.
type Linter struct {
	checkers    map[string]Checker
	concurrency int
	log         zerolog.Logger
}

// Option configures a Linter.
type Option func(*Linter)

// WithChecker registers or replaces the checker for a rule.
func WithChecker(id string, fn Checker) Option {
	return func(l *Linter) { l.checkers[id] = fn }
}

// WithConcurrency bounds the number of messages LintAll evaluates at once.
// Values below 1 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(l *Linter) { l.concurrency = n }
}

// NewLinter creates a linter with the built-in checkers.
func NewLinter(opts ...Option) *Linter {
	l := &Linter{
		checkers: defaultCheckers(),
		log:      logger.WithComponent("lint"),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.concurrency < 1 {
		l.concurrency = runtime.GOMAXPROCS(0)
	}
	return l
}

// Lint evaluates message against table. Rules set to off are skipped. The
// report is valid unless at least one error-level rule fails; warnings
// never invalidate it.
func (l *Linter) Lint(ctx context.Context, message string, table rules.Table) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	commit := Parse(message)
	report := Report{Input: message, Valid: true}

	for _, id := range table.Enabled() {
		d := table[id]
		check, ok := l.checkers[id]
		if !ok {
			return Report{}, fmt.Errorf("%w: %s", ErrNoChecker, id)
		}

		passed, msg, err := check(&commit, d.Condition, d.Value)
		if err != nil {
			return Report{}, fmt.Errorf("rule %s: %w", id, err)
		}
		if passed {
			continue
		}

		p := Problem{Rule: id, Severity: d.Severity, Message: msg}
		if d.Severity == rules.SeverityError {
			report.Errors = append(report.Errors, p)
			report.Valid = false
		} else {
			report.Warnings = append(report.Warnings, p)
		}
	}

	l.log.Debug().
		Bool("valid", report.Valid).
		Int("errors", len(report.Errors)).
		Int("warnings", len(report.Warnings)).
		Msg("linted commit message")

	return report, nil
}

// LintAll lints messages concurrently. Reports are returned in input order.
// The first error cancels the remaining work.
func (l *Linter) LintAll(ctx context.Context, messages []string, table rules.Table) ([]Report, error) {
	reports := make([]Report, len(messages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, msg := range messages {
		g.Go(func() error {
			r, err := l.Lint(ctx, msg, table)
			if err != nil {
				return fmt.Errorf("message %d: %w", i, err)
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
