package runner

import (
	"context"
	"time"

	"tickd/internal/schedule"

	logx "tickd/pkg/logx"
)

func (s *Service) pollLoop(ctx context.Context, stopCh <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.tick(time.Now())
		}
	}
}

// tick enqueues every schedule whose computed next fire has come due, then
// advances its bookkeeping past now.
//
// A schedule seen for the first time (fresh start, registry rebuild, edited
// text) only gets its next fire computed; it does not fire retroactively.
func (s *Service) tick(now time.Time) {
	s.mu.Lock()
	loc := s.loc
	timeout := s.cfg.DefaultTimeout
	s.mu.Unlock()
	if loc != nil {
		now = now.In(loc)
	}

	entries := s.reg.Snapshot()

	s.nextMu.Lock()
	defer s.nextMu.Unlock()

	seen := make(map[schedule.ID]bool, len(entries))
	for _, e := range entries {
		id := e.Schedule.ID()
		seen[id] = true

		p, known := s.next[id]
		if !known || p.text != e.Schedule.Time() {
			next, ok := e.Schedule.ExecutionTime().Next(now)
			if !ok {
				// reboot schedules and dead expressions never poll-fire
				s.next[id] = pending{text: e.Schedule.Time()}
				continue
			}
			s.next[id] = pending{at: next, text: e.Schedule.Time()}
			continue
		}
		if p.at.IsZero() || p.at.After(now) {
			continue
		}

		s.enqueue(task{
			id:      id,
			action:  e.Action,
			text:    e.Text,
			at:      p.at,
			timeout: timeout,
		})

		next, ok := e.Schedule.ExecutionTime().Next(now)
		if !ok {
			s.next[id] = pending{text: e.Schedule.Time()}
			continue
		}
		s.next[id] = pending{at: next, text: e.Schedule.Time()}
	}

	// drop bookkeeping for schedules removed by a registry rebuild
	for id := range s.next {
		if !seen[id] {
			delete(s.next, id)
		}
	}
}

func (s *Service) enqueue(t task) {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		s.log.Debug("runner not running; dropping run", logx.String("schedule", string(t.id)))
		return
	}
	select {
	case q <- t:
		// ok
	default:
		s.log.Warn("runner queue full; dropping run",
			logx.String("schedule", string(t.id)),
			logx.Int("queue_len", len(q)), logx.Int("queue_cap", cap(q)))
	}
}
