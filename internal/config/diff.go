package config

import (
	"fmt"
	"strings"
)

// SummarizeConfigChange produces a short human-readable description of what
// changed between two configs. Used for the reload log line so operators can
// tell at a glance which sections a file edit touched.
func SummarizeConfigChange(oldCfg, newCfg *Config) string {
	if oldCfg == nil && newCfg == nil {
		return "no change"
	}
	if oldCfg == nil {
		return "initial load"
	}
	if newCfg == nil {
		return "config removed"
	}

	var parts []string

	if oldCfg.Logging != newCfg.Logging {
		parts = append(parts, "logging")
	}
	if oldCfg.Runner != newCfg.Runner {
		parts = append(parts, "runner")
	}
	if historyChanged(oldCfg.History, newCfg.History) {
		parts = append(parts, "history")
	}
	if added, removed, changed := diffSchedules(oldCfg.Schedules, newCfg.Schedules); added+removed+changed > 0 {
		parts = append(parts, fmt.Sprintf("schedules(+%d -%d ~%d)", added, removed, changed))
	}

	if len(parts) == 0 {
		return "no change"
	}
	return strings.Join(parts, ", ")
}

func historyChanged(a, b *HistoryConfig) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return *a != *b
}

func diffSchedules(before, after []ScheduleConfig) (added, removed, changed int) {
	oldByID := make(map[string]ScheduleConfig, len(before))
	for _, s := range before {
		oldByID[s.ID] = s
	}
	seen := make(map[string]bool, len(after))
	for _, s := range after {
		seen[s.ID] = true
		prev, ok := oldByID[s.ID]
		switch {
		case !ok:
			added++
		case prev != s:
			changed++
		}
	}
	for id := range oldByID {
		if !seen[id] {
			removed++
		}
	}
	return added, removed, changed
}
