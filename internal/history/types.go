package history

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("history disabled")

// Config configures the run history store.
type Config struct {
	Enabled     bool
	Path        string
	BusyTimeout time.Duration // 0 means default
	Retention   time.Duration // 0 keeps everything
}

// Run records one schedule firing.
// Keep it compact and schema-stable.
type Run struct {
	At         time.Time
	ScheduleID string
	Action     string
	OK         bool
	Error      string
	TookMS     int64
}
