package action

import (
	"context"

	logx "tickd/pkg/logx"
)

// logAction emits one structured log line per run. The default sink.
type logAction struct {
	log logx.Logger
}

func (a *logAction) Name() string { return "log" }

func (a *logAction) Run(_ context.Context, req Request) error {
	msg := req.Text
	if msg == "" {
		msg = "schedule fired"
	}
	a.log.Info(msg,
		logx.String("schedule", req.ScheduleID),
		logx.String("scheduled_at", req.ScheduledAt),
	)
	return nil
}
