package schedule

import (
	"fmt"
	"strings"
	"time"

	"tickd/internal/cronx"
)

// ID identifies a schedule within the registry. Opaque; unique per config.
type ID string

// RebootMarker is the time value that makes a reboot-capable schedule fire
// at process startup instead of on a calendar pattern.
const RebootMarker = "@reboot"

// Schedule is the immutable aggregate built from one definition.
type Schedule struct {
	id       ID
	time     string
	onReboot bool
	exec     cronx.ExecutionTime
}

type options struct {
	grammar         *cronx.Grammar
	rebootSupported bool
}

// Option configures schedule construction.
type Option func(*options)

// WithGrammar substitutes a family-specific grammar for the default one.
func WithGrammar(g *cronx.Grammar) Option {
	return func(o *options) {
		if g != nil {
			o.grammar = g
		}
	}
}

// WithRebootSupport lets the schedule accept the "@reboot" marker. Without
// it the marker falls through to the cron parser and fails there.
func WithRebootSupport() Option {
	return func(o *options) { o.rebootSupported = true }
}

// New validates the raw time text and builds the schedule. The reboot
// check runs before any parsing: a reboot-capable schedule whose trimmed,
// lower-cased time equals RebootMarker skips the cron path entirely.
// Parse failures wrap a *cronx.ParseError and carry the original text.
func New(id ID, timeText string, opts ...Option) (*Schedule, error) {
	o := options{grammar: cronx.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.rebootSupported && strings.ToLower(strings.TrimSpace(timeText)) == RebootMarker {
		return &Schedule{id: id, time: timeText, onReboot: true, exec: cronx.Reboot}, nil
	}

	expr, err := cronx.Parse(o.grammar, timeText)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: time is no valid cron syntax %q: %w", id, timeText, err)
	}
	return &Schedule{id: id, time: timeText, exec: cronx.ForExpression(expr)}, nil
}

// ID returns the schedule's identifier.
func (s *Schedule) ID() ID { return s.id }

// Time returns the raw time string the schedule was built from.
func (s *Schedule) Time() string { return s.time }

// ShouldRunOnReboot reports whether the schedule fires at startup. Always
// false for calendar schedules and for families without reboot support.
func (s *Schedule) ShouldRunOnReboot() bool { return s.onReboot }

// ExecutionTime exposes the resolved strategy for callers that evaluate
// against their own reference instants.
func (s *Schedule) ExecutionTime() cronx.ExecutionTime { return s.exec }

// NextExecution returns the next firing instant relative to now in the
// process zone. Reboot schedules report none.
func (s *Schedule) NextExecution() (time.Time, bool) { return s.exec.Next(time.Now()) }

// LastExecution returns the most recent firing instant before now.
func (s *Schedule) LastExecution() (time.Time, bool) { return s.exec.Previous(time.Now()) }
