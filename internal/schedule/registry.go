package schedule

import (
	"fmt"
	"sync"

	"tickd/internal/cronx"
	logx "tickd/pkg/logx"
)

// Family groups schedules that share a grammar and capability set.
type Family struct {
	Grammar         *cronx.Grammar
	RebootSupported bool
}

// Built-in families. "realtime" is the default and accepts "@reboot";
// "cron" is the plain calendar-only variant.
var families = map[string]Family{
	"realtime": {Grammar: cronx.Default(), RebootSupported: true},
	"cron":     {Grammar: cronx.Default(), RebootSupported: false},
}

// FamilyByName resolves a schedule type name from config. Empty selects
// the default family.
func FamilyByName(name string) (Family, bool) {
	if name == "" {
		name = "realtime"
	}
	f, ok := families[name]
	return f, ok
}

// Definition is one schedule as declared in configuration, before
// validation.
type Definition struct {
	ID     string
	Time   string
	Type   string // family name; empty = "realtime"
	Action string // action sink name ("log", "command")
	Text   string // payload handed to the action when the schedule fires
}

// Entry pairs a validated schedule with its firing payload.
type Entry struct {
	Schedule *Schedule
	Action   string
	Text     string
}

// Registry owns the live Schedule instances. Rebuild replaces the whole
// set; individual schedules are never mutated in place.
type Registry struct {
	mu      sync.RWMutex
	entries []*Entry
	byID    map[ID]*Entry

	log logx.Logger
}

func NewRegistry(log logx.Logger) *Registry {
	return &Registry{log: log, byID: map[ID]*Entry{}}
}

// Rebuild constructs schedules from the given definitions and swaps them
// in atomically. Invalid definitions are skipped with a logged diagnostic
// (the error includes the offending raw time text); valid ones still load.
// Returns the number of schedules loaded and the number skipped.
func (r *Registry) Rebuild(defs []Definition) (loaded, skipped int) {
	entries := make([]*Entry, 0, len(defs))
	byID := make(map[ID]*Entry, len(defs))

	for _, d := range defs {
		e, err := buildEntry(d)
		if err != nil {
			skipped++
			r.log.Warn("schedule rejected", logx.String("id", d.ID), logx.String("time", d.Time), logx.Err(err))
			continue
		}
		id := e.Schedule.ID()
		if _, dup := byID[id]; dup {
			skipped++
			r.log.Warn("duplicate schedule id; keeping first", logx.String("id", d.ID))
			continue
		}
		byID[id] = e
		entries = append(entries, e)
	}

	r.mu.Lock()
	r.entries = entries
	r.byID = byID
	r.mu.Unlock()
	return len(entries), skipped
}

func buildEntry(d Definition) (*Entry, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("schedule id is required")
	}
	fam, ok := FamilyByName(d.Type)
	if !ok {
		return nil, fmt.Errorf("unknown schedule type %q", d.Type)
	}
	opts := []Option{WithGrammar(fam.Grammar)}
	if fam.RebootSupported {
		opts = append(opts, WithRebootSupport())
	}
	s, err := New(ID(d.ID), d.Time, opts...)
	if err != nil {
		return nil, err
	}
	return &Entry{Schedule: s, Action: d.Action, Text: d.Text}, nil
}

// Snapshot returns the current entries. The slice is a copy; entries
// themselves are immutable.
func (r *Registry) Snapshot() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Get looks up one entry by id.
func (r *Registry) Get(id ID) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// Len reports the number of live schedules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
