// Package history records a summary of every run in SQLite so model sizes
// and save counts can be compared across runs.
package history

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"topicsdk/internal/data/sqlitedb"
)

// Run is the summary of one invocation.
type Run struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Tasks      []string
	DryRun     bool

	Namespaces     int
	Classes        int
	Members        int
	Win32Functions int
	FilesSaved     int
	SaveErrors     int
	ExitCode       int

	// LogCounts holds the entry count of each non-empty diagnostic log.
	LogCounts map[string]int
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	db, err := sqlitedb.Open(path, migrations)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return &Store{path: strings.TrimSpace(path), db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun upserts run and replaces its log counts.
func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	return sqlitedb.WithRetry("save run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.Exec(`
INSERT INTO runs (
  run_id, started_at_utc, finished_at_utc, tasks, dry_run, namespace_count, class_count,
  member_count, win32_function_count, files_saved, save_errors, exit_code
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  finished_at_utc=excluded.finished_at_utc,
  tasks=excluded.tasks,
  dry_run=excluded.dry_run,
  namespace_count=excluded.namespace_count,
  class_count=excluded.class_count,
  member_count=excluded.member_count,
  win32_function_count=excluded.win32_function_count,
  files_saved=excluded.files_saved,
  save_errors=excluded.save_errors,
  exit_code=excluded.exit_code
`,
			run.RunID,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.FinishedAt.UTC().Format(time.RFC3339Nano),
			strings.Join(run.Tasks, ","),
			run.DryRun,
			run.Namespaces,
			run.Classes,
			run.Members,
			run.Win32Functions,
			run.FilesSaved,
			run.SaveErrors,
			run.ExitCode,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM run_logs WHERE run_id = ?`, run.RunID); err != nil {
			return err
		}
		for name, count := range run.LogCounts {
			if _, err := tx.Exec(`INSERT INTO run_logs(run_id, log_name, entry_count) VALUES (?, ?, ?)`, run.RunID, name, count); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadRuns returns the runs started at or after since, oldest first. A zero
// since returns every run.
func (s *Store) LoadRuns(since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  run_id, started_at_utc, finished_at_utc, tasks, dry_run, namespace_count, class_count,
  member_count, win32_function_count, files_saved, save_errors, exit_code
FROM runs
`
	args := make([]any, 0, 1)
	if !since.IsZero() {
		query += " WHERE started_at_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY started_at_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := sqlitedb.WithRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			startedRaw  string
			finishedRaw string
			tasksRaw    string
			run         Run
		)
		if err := rows.Scan(
			&run.RunID,
			&startedRaw,
			&finishedRaw,
			&tasksRaw,
			&run.DryRun,
			&run.Namespaces,
			&run.Classes,
			&run.Members,
			&run.Win32Functions,
			&run.FilesSaved,
			&run.SaveErrors,
			&run.ExitCode,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if run.StartedAt, err = parseTime(startedRaw); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finishedRaw); err != nil {
			return nil, err
		}
		if tasksRaw != "" {
			run.Tasks = strings.Split(tasksRaw, ",")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	rows.Close()

	for i := range runs {
		counts, err := s.logCounts(runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].LogCounts = counts
	}
	return runs, nil
}

func (s *Store) logCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT log_name, entry_count FROM run_logs WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("load run logs: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan run log row: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// LastRun returns the most recently started run, or false when none is
// recorded.
func (s *Store) LastRun() (Run, bool, error) {
	runs, err := s.LoadRuns(time.Time{})
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.Before(runs[j].StartedAt) })
	return runs[len(runs)-1], true, nil
}

func parseTime(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run timestamp %q: %w", raw, err)
	}
	return ts.UTC(), nil
}
