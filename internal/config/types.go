package config

// Config is the full tickd configuration file.
//
// Files may be JSON or YAML; YAML is coerced to JSON and decoded strictly,
// so unknown keys are rejected in both formats.
type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Runner controls the polling loop that fires due schedules.
	Runner RunnerConfig `json:"runner"`

	// History controls the optional sqlite-backed run history.
	History *HistoryConfig `json:"history,omitempty"`

	// Schedules are the raw schedule definitions. Each entry is validated
	// eagerly when the registry is (re)built; invalid entries are skipped
	// with a logged diagnostic and do not block the rest.
	Schedules []ScheduleConfig `json:"schedules"`
}

type LoggingConfig struct {
	Level   string     `json:"level"`
	Console bool       `json:"console"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// RunnerConfig controls the firing loop.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
//
// Enabled is a pointer so we can distinguish "omitted" (default true) from
// an explicit false.
//
// Defaults (when fields are omitted/zero):
//   - workers: 2
//   - queue_size: 64
//   - poll_interval: "1s"
//   - default_timeout: "0s" (disabled)
//   - history_size: 200 (in-memory recent runs)
//   - timezone: process local zone
type RunnerConfig struct {
	Enabled   *bool `json:"enabled,omitempty"`
	Workers   int   `json:"workers,omitempty"`
	QueueSize int   `json:"queue_size,omitempty"`

	PollInterval string `json:"poll_interval,omitempty"`

	// DefaultTimeout bounds each action run. "0s" disables the bound.
	DefaultTimeout string `json:"default_timeout,omitempty"`

	HistorySize int `json:"history_size,omitempty"`

	// Timezone is an IANA name, e.g. "Asia/Jakarta". Schedules are
	// evaluated in this zone.
	Timezone string `json:"timezone,omitempty"`
}

// HistoryConfig controls the sqlite run history store.
//
// Example:
//
//	"history": { "enabled": true, "path": "./tickd_history.db" }
type HistoryConfig struct {
	Enabled     bool   `json:"enabled"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
	Retention   string `json:"retention,omitempty"`    // Go duration string; "0s" keeps everything
}

// ScheduleConfig is one schedule definition as written in the file.
//
// Time is either a five-field cron expression, a recognized alias
// ("@hourly", ...), or "@reboot" for reboot-capable schedule types.
type ScheduleConfig struct {
	ID   string `json:"id"`
	Time string `json:"time"`

	// Type selects the schedule family. Empty means "realtime"
	// (default grammar, "@reboot" accepted); "cron" disables the
	// reboot marker.
	Type string `json:"type,omitempty"`

	// Action selects the sink invoked when the schedule fires:
	// "log" (default) or "command".
	Action string `json:"action,omitempty"`

	// Text is the payload handed to the action: the message for "log",
	// the command line for "command".
	Text string `json:"text,omitempty"`
}
