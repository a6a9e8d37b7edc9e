package action

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	logx "tickd/pkg/logx"
)

// Request carries everything an action needs for one run.
type Request struct {
	ScheduleID string
	// Text is the schedule's payload: the message for "log", the command
	// line for "command".
	Text string
	// ScheduledAt is the tick the run was computed for (not the wall time
	// the worker picked it up).
	ScheduledAt string
}

// Action is one sink a schedule can fire into.
type Action interface {
	Name() string
	Run(ctx context.Context, req Request) error
}

// Dispatcher resolves action names and rate-limits runs globally.
type Dispatcher struct {
	actions map[string]Action
	limiter *rate.Limiter
	log     logx.Logger
}

// NewDispatcher registers the built-in actions. maxPerSecond <= 0 disables
// the limit.
func NewDispatcher(log logx.Logger, maxPerSecond float64) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	var lim *rate.Limiter
	if maxPerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(maxPerSecond), int(maxPerSecond)+1)
	}
	d := &Dispatcher{
		actions: make(map[string]Action),
		limiter: lim,
		log:     log,
	}
	d.Register(&logAction{log: log})
	d.Register(&commandAction{log: log})
	return d
}

func (d *Dispatcher) Register(a Action) {
	d.actions[strings.ToLower(a.Name())] = a
}

// Resolve maps a config action name to an Action. Empty means "log".
func (d *Dispatcher) Resolve(name string) (Action, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "log"
	}
	a, ok := d.actions[key]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	return a, nil
}

// Dispatch runs the named action, waiting on the rate limiter first.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, req Request) error {
	a, err := d.Resolve(name)
	if err != nil {
		return err
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return a.Run(ctx, req)
}
