package runner

import (
	"context"
	"time"

	"tickd/internal/action"
	"tickd/internal/history"

	logx "tickd/pkg/logx"
)

func (s *Service) worker(ctx context.Context, stopCh <-chan struct{}, queue <-chan task, idx int) {
	for {
		// Fast-exit check so a closed stopCh wins over queued work.
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case t := <-queue:
			s.execOne(ctx, t)
		}
	}
}

func (s *Service) execOne(ctx context.Context, t task) {
	start := time.Now()

	runCtx := ctx
	var cancel context.CancelFunc
	if t.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
	}
	err := s.dsp.Dispatch(runCtx, t.action, action.Request{
		ScheduleID:  string(t.id),
		Text:        t.text,
		ScheduledAt: t.at.Format(time.RFC3339),
	})
	if cancel != nil {
		cancel()
	}

	dur := time.Since(start)
	rec := RunRecord{
		ID:       t.id,
		Action:   t.action,
		At:       t.at,
		Duration: dur,
	}
	if err != nil {
		rec.Error = err.Error()
		s.log.Warn("run failed",
			logx.String("schedule", string(t.id)),
			logx.Err(err), logx.Duration("dur", dur),
			logx.Bool("reboot", t.reboot))
	} else {
		// Avoid noisy logs for very frequent schedules: only elevate to INFO
		// when the run took noticeable time.
		if dur >= 750*time.Millisecond {
			s.log.Info("run completed",
				logx.String("schedule", string(t.id)), logx.Duration("dur", dur))
		} else {
			s.log.Debug("run completed",
				logx.String("schedule", string(t.id)), logx.Duration("dur", dur))
		}
	}

	s.appendHistory(rec)

	if s.db != nil {
		hctx, hcancel := context.WithTimeout(context.Background(), 2*time.Second)
		herr := s.db.Append(hctx, history.Run{
			At:         t.at,
			ScheduleID: string(t.id),
			Action:     t.action,
			OK:         err == nil,
			Error:      rec.Error,
			TookMS:     dur.Milliseconds(),
		})
		hcancel()
		if herr != nil {
			s.log.Debug("history append failed", logx.Err(herr))
		}
	}
}

func (s *Service) appendHistory(rec RunRecord) {
	s.mu.Lock()
	size := s.cfg.HistorySize
	s.mu.Unlock()
	// A zero/negative history_size would mean unbounded growth, which slowly
	// retains memory on long-running daemons.
	if size <= 0 {
		size = 200
	}

	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.history = append(s.history, rec)
	if len(s.history) > size {
		s.history = s.history[len(s.history)-size:]
	}
}
