package schedule

import (
	"testing"

	logx "tickd/pkg/logx"
)

func TestRegistryRebuild(t *testing.T) {
	t.Parallel()
	r := NewRegistry(logx.Nop())

	defs := []Definition{
		{ID: "hourly", Time: "@hourly", Action: "log", Text: "tick"},
		{ID: "startup", Time: "@reboot", Action: "command", Text: "uptime"},
		{ID: "broken", Time: "0 24 * * *"},
		{ID: "hourly", Time: "*/5 * * * *"}, // duplicate id
		{ID: "", Time: "* * * * *"},
	}

	loaded, skipped := r.Rebuild(defs)
	if loaded != 2 || skipped != 3 {
		t.Fatalf("Rebuild = (%d, %d), want (2, 3)", loaded, skipped)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d", r.Len())
	}

	e, ok := r.Get("hourly")
	if !ok {
		t.Fatal("hourly missing")
	}
	// duplicate keeps the first definition
	if e.Schedule.Time() != "@hourly" {
		t.Fatalf("duplicate id replaced the original: %q", e.Schedule.Time())
	}
	if e.Text != "tick" {
		t.Fatalf("Text = %q", e.Text)
	}

	// a rebuild replaces everything
	loaded, skipped = r.Rebuild([]Definition{{ID: "only", Time: "0 0 * * *"}})
	if loaded != 1 || skipped != 0 {
		t.Fatalf("second Rebuild = (%d, %d)", loaded, skipped)
	}
	if _, ok := r.Get("hourly"); ok {
		t.Fatal("old entry survived the rebuild")
	}
	if len(r.Snapshot()) != 1 {
		t.Fatal("snapshot should hold one entry")
	}
}

func TestRegistryFamilies(t *testing.T) {
	t.Parallel()
	r := NewRegistry(logx.Nop())

	// the "cron" family has no reboot support
	loaded, skipped := r.Rebuild([]Definition{
		{ID: "a", Time: "@reboot", Type: "cron"},
		{ID: "b", Time: "@daily", Type: "cron"},
		{ID: "c", Time: "@reboot", Type: "realtime"},
		{ID: "d", Time: "@daily", Type: "nosuch"},
	})
	if loaded != 2 || skipped != 2 {
		t.Fatalf("Rebuild = (%d, %d), want (2, 2)", loaded, skipped)
	}
	if _, ok := r.Get("a"); ok {
		t.Fatal("cron family must reject @reboot")
	}
	e, ok := r.Get("c")
	if !ok || !e.Schedule.ShouldRunOnReboot() {
		t.Fatal("realtime family must accept @reboot")
	}
}

func TestFamilyByName(t *testing.T) {
	t.Parallel()
	if _, ok := FamilyByName(""); !ok {
		t.Fatal("empty name should resolve to the default family")
	}
	if _, ok := FamilyByName("realtime"); !ok {
		t.Fatal("realtime family missing")
	}
	f, ok := FamilyByName("cron")
	if !ok || f.RebootSupported {
		t.Fatal("cron family should exist without reboot support")
	}
	if _, ok := FamilyByName("interval"); ok {
		t.Fatal("unknown family should not resolve")
	}
}
