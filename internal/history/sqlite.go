package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	logx "tickd/pkg/logx"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	at          TEXT    NOT NULL,
	schedule_id TEXT    NOT NULL,
	action      TEXT    NOT NULL,
	ok          INTEGER NOT NULL,
	err         TEXT,
	took_ms     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_schedule_at ON runs(schedule_id, at);
`

// Store writes run records to SQLite. A nil *Store is safe to use.
type Store struct {
	db  *sql.DB
	log logx.Logger

	retention time.Duration

	// Pruning piggybacks on appends so there is no background goroutine.
	opCount    atomic.Uint64
	pruneEvery uint64
}

// Open initializes the store. Returns (nil, nil) when disabled.
func Open(cfg Config, log logx.Logger) (*Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = "./tickd_history.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, log: log, retention: cfg.Retention, pruneEvery: 200}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records one run. Occasionally triggers retention pruning inline.
func (s *Store) Append(ctx context.Context, r Run) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(at, schedule_id, action, ok, err, took_ms) VALUES(?,?,?,?,?,?)`,
		r.At.Format(time.RFC3339Nano), r.ScheduleID, r.Action, boolInt(r.OK), nullStr(r.Error), r.TookMS,
	)
	if err == nil && s.retention > 0 && s.opCount.Add(1)%s.pruneEvery == 0 {
		pctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		if perr := s.Prune(pctx); perr != nil {
			s.log.Debug("history prune failed", logx.Err(perr))
		}
		cancel()
	}
	return err
}

// Recent returns the newest runs for a schedule, most recent first.
// An empty scheduleID returns runs across all schedules.
func (s *Store) Recent(ctx context.Context, scheduleID string, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if scheduleID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT at, schedule_id, action, ok, err, took_ms FROM runs ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT at, schedule_id, action, ok, err, took_ms FROM runs WHERE schedule_id = ? ORDER BY id DESC LIMIT ?`,
			scheduleID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r   Run
			at  string
			ok  int
			msg sql.NullString
		)
		if err := rows.Scan(&at, &r.ScheduleID, &r.Action, &ok, &msg, &r.TookMS); err != nil {
			return nil, err
		}
		if t, perr := time.Parse(time.RFC3339Nano, at); perr == nil {
			r.At = t
		}
		r.OK = ok != 0
		r.Error = msg.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune removes runs older than the retention window.
func (s *Store) Prune(ctx context.Context) error {
	if s == nil || s.db == nil || s.retention <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-s.retention).Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE at < ?`, cutoff)
	return err
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
