package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "tickd/pkg/logx"
)

func openTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "history.db")
	}
	cfg.Enabled = true
	st, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestDisabledStore(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Enabled: false}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if st != nil {
		t.Fatal("disabled store should be nil")
	}
	// nil receiver must be safe
	if err := st.Append(context.Background(), Run{ScheduleID: "s"}); err != ErrDisabled {
		t.Fatalf("Append on nil store = %v, want ErrDisabled", err)
	}
	if _, err := st.Recent(context.Background(), "", 5); err != ErrDisabled {
		t.Fatalf("Recent on nil store = %v, want ErrDisabled", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close on nil store = %v", err)
	}
}

func TestAppendAndRecent(t *testing.T) {
	t.Parallel()
	st := openTestStore(t, Config{})
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	runs := []Run{
		{At: base, ScheduleID: "a", Action: "log", OK: true, TookMS: 3},
		{At: base.Add(time.Minute), ScheduleID: "a", Action: "command", OK: false, Error: "exit status 3", TookMS: 40},
		{At: base.Add(2 * time.Minute), ScheduleID: "b", Action: "log", OK: true},
	}
	for _, r := range runs {
		if err := st.Append(ctx, r); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	got, err := st.Recent(ctx, "a", 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent = %d rows, want 2", len(got))
	}
	// newest first
	if got[0].Action != "command" || got[0].OK || got[0].Error != "exit status 3" {
		t.Fatalf("first row = %+v", got[0])
	}
	if !got[1].At.Equal(base) {
		t.Fatalf("second row at %v, want %v", got[1].At, base)
	}

	all, err := st.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent(all) error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Recent(all) = %d rows, want 3", len(all))
	}
}

func TestPruneRetention(t *testing.T) {
	t.Parallel()
	st := openTestStore(t, Config{Retention: time.Hour})
	ctx := context.Background()

	if err := st.Append(ctx, Run{At: time.Now().Add(-2 * time.Hour), ScheduleID: "old", Action: "log", OK: true}); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := st.Append(ctx, Run{At: time.Now(), ScheduleID: "fresh", Action: "log", OK: true}); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := st.Prune(ctx); err != nil {
		t.Fatalf("Prune error: %v", err)
	}

	got, err := st.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 1 || got[0].ScheduleID != "fresh" {
		t.Fatalf("after prune: %+v", got)
	}
}
