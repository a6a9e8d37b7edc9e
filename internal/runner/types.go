package runner

import (
	"context"
	"sync"
	"time"

	"tickd/internal/action"
	"tickd/internal/history"
	"tickd/internal/schedule"

	logx "tickd/pkg/logx"
)

// Config controls the firing loop. Zero values get defaults at Start.
type Config struct {
	Enabled        bool
	Workers        int           // default 2
	QueueSize      int           // default 64
	PollInterval   time.Duration // default 1s
	DefaultTimeout time.Duration // 0 disables the per-run bound
	HistorySize    int           // in-memory recent runs, default 200
	Timezone       string        // IANA name; empty means process local
}

// task is one due run handed to the worker pool.
type task struct {
	id     schedule.ID
	action string
	text   string
	// at is the tick the run was computed for.
	at      time.Time
	timeout time.Duration
	reboot  bool
}

// RunRecord is one entry of the in-memory recent-run buffer.
type RunRecord struct {
	ID       schedule.ID
	Action   string
	At       time.Time
	Duration time.Duration
	Error    string
}

// Service owns the poll loop and worker pool.
type Service struct {
	mu  sync.Mutex
	cfg Config

	log logx.Logger
	reg *schedule.Registry
	dsp *action.Dispatcher
	db  *history.Store // nil when history is disabled

	loc *time.Location

	stopCh    chan struct{}
	stopDone  chan struct{}
	runCtx    context.Context
	runCancel context.CancelFunc
	queue     chan task
	workerWG  sync.WaitGroup

	// nextMu guards the per-schedule due bookkeeping used by the poll loop.
	nextMu sync.Mutex
	next   map[schedule.ID]pending

	hmu     sync.Mutex
	history []RunRecord
}

// pending remembers the computed next fire and the schedule text it was
// computed from, so an edited schedule under the same id is recomputed.
type pending struct {
	at   time.Time
	text string
}

func New(cfg Config, log logx.Logger, reg *schedule.Registry, dsp *action.Dispatcher, db *history.Store) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:  cfg,
		log:  log,
		reg:  reg,
		dsp:  dsp,
		db:   db,
		next: map[schedule.ID]pending{},
	}
}

// Enabled reports the current config flag. (Thread-safe; Apply() may run concurrently.)
func (s *Service) Enabled() bool {
	s.mu.Lock()
	en := s.cfg.Enabled
	s.mu.Unlock()
	return en
}

// Recent returns a copy of the in-memory recent-run buffer, oldest first.
func (s *Service) Recent() []RunRecord {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	out := make([]RunRecord, len(s.history))
	copy(out, s.history)
	return out
}
