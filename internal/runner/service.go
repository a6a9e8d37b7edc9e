package runner

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"tickd/internal/schedule"

	logx "tickd/pkg/logx"
)

// Apply swaps the runner config at runtime. A timezone change restarts the
// evaluation bookkeeping so next-fire times are recomputed in the new zone.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	oldTZ := strings.TrimSpace(s.cfg.Timezone)
	newTZ := strings.TrimSpace(cfg.Timezone)
	s.cfg = cfg
	running := s.stopCh != nil
	s.mu.Unlock()

	if running && oldTZ != newTZ {
		s.mu.Lock()
		s.loc = loadLocation(newTZ, s.log)
		s.mu.Unlock()
		s.resetPending()
		s.log.Info("timezone changed; schedule times recomputed", logx.String("tz", newTZ))
	}
}

// resetPending drops the due bookkeeping so the next tick recomputes
// everything from scratch. Called on timezone change and registry rebuild.
func (s *Service) resetPending() {
	s.nextMu.Lock()
	s.next = map[schedule.ID]pending{}
	s.nextMu.Unlock()
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	cur := s.cfg
	s.mu.Unlock()
	s.log.Debug("start requested",
		logx.Bool("enabled", cur.Enabled),
		logx.Int("workers", cur.Workers),
		logx.String("tz", strings.TrimSpace(cur.Timezone)))

	// If a Stop() is in progress, wait for it to complete (prevents double worker pools).
	for {
		s.mu.Lock()
		if s.stopCh == nil {
			break
		}
		done := s.stopDone
		// already running (no stop in progress)
		if done == nil {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		select {
		case <-done:
			// loop and try again
		case <-ctx.Done():
			return
		}
	}
	defer s.mu.Unlock()

	s.stopCh = make(chan struct{})
	s.runCtx, s.runCancel = context.WithCancel(ctx)

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	queueSize := s.cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	// Fresh queue per run to avoid executing stale enqueued tasks after a stop/start toggle.
	s.queue = make(chan task, queueSize)
	s.loc = loadLocation(s.cfg.Timezone, s.log)

	// Local captures prevent races if fields are swapped/nilled during Stop().
	runCtx := s.runCtx
	stopCh := s.stopCh
	queue := s.queue

	s.workerWG.Add(workers)
	for i := 0; i < workers; i++ {
		idx := i
		go func() {
			defer s.workerWG.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("panic in runner worker",
						logx.Int("worker", idx), logx.Any("panic", r),
						logx.Stack(string(debug.Stack())))
				}
			}()
			s.log.Debug("worker started", logx.Int("worker", idx))
			s.worker(runCtx, stopCh, queue, idx)
			s.log.Debug("worker stopped", logx.Int("worker", idx))
		}()
	}

	s.resetPending()
	// s.mu is held here, so push reboot runs straight onto the fresh queue.
	s.fireRebootSchedules(queue, s.loc, s.cfg.DefaultTimeout)

	s.workerWG.Add(1)
	go func() {
		defer s.workerWG.Done()
		s.pollLoop(runCtx, stopCh, interval)
	}()

	s.log.Info("runner started",
		logx.Int("workers", workers),
		logx.String("tz", s.loc.String()),
		logx.Int("schedules", s.reg.Len()))
}

func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.log.Info("stop requested")
	// If a stop is already in progress, just wait (best-effort).
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	if s.stopDone != nil {
		done := s.stopDone
		s.mu.Unlock()
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
	// Initiate stop.
	done := make(chan struct{})
	s.stopDone = done
	stopCh := s.stopCh
	cancel := s.runCancel
	s.runCancel = nil
	s.mu.Unlock()

	// signal workers and poll loop to exit promptly
	close(stopCh)
	if cancel != nil {
		cancel()
	}

	// finalize cleanup in background so Stop() can return on timeout safely.
	go func() {
		s.workerWG.Wait()
		s.mu.Lock()
		s.stopCh = nil
		s.runCtx = nil
		s.queue = nil
		s.stopDone = nil
		s.mu.Unlock()
		close(done)
		s.log.Info("runner stopped", logx.Duration("took", time.Since(start)))
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
		// stop continues in background
		return
	}
}

// fireRebootSchedules enqueues one run for every reboot-marked schedule.
// Called once per Start, before the poll loop begins.
func (s *Service) fireRebootSchedules(queue chan task, loc *time.Location, timeout time.Duration) {
	now := time.Now().In(loc)
	for _, e := range s.reg.Snapshot() {
		if !e.Schedule.ShouldRunOnReboot() {
			continue
		}
		tk := task{
			id:      e.Schedule.ID(),
			action:  e.Action,
			text:    e.Text,
			at:      now,
			timeout: timeout,
			reboot:  true,
		}
		select {
		case queue <- tk:
		default:
			s.log.Warn("runner queue full; dropping reboot run", logx.String("schedule", string(tk.id)))
		}
	}
}

func loadLocation(tz string, log logx.Logger) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn("invalid timezone; using local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}
