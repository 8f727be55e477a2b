package history

import "topicsdk/internal/data/sqlitedb"

var migrations = []sqlitedb.Migration{
	{
		Version: 1,
		SQL: `
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  started_at_utc TEXT NOT NULL,
  finished_at_utc TEXT NOT NULL,
  tasks TEXT NOT NULL DEFAULT '',
  dry_run INTEGER NOT NULL DEFAULT 0,
  namespace_count INTEGER NOT NULL DEFAULT 0,
  class_count INTEGER NOT NULL DEFAULT 0,
  member_count INTEGER NOT NULL DEFAULT 0,
  win32_function_count INTEGER NOT NULL DEFAULT 0,
  files_saved INTEGER NOT NULL DEFAULT 0,
  save_errors INTEGER NOT NULL DEFAULT 0,
  exit_code INTEGER NOT NULL DEFAULT 0,
  created_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at_utc);
`,
	},
	{
		Version: 2,
		SQL: `
CREATE TABLE IF NOT EXISTS run_logs (
  run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
  log_name TEXT NOT NULL,
  entry_count INTEGER NOT NULL,
  PRIMARY KEY (run_id, log_name)
);
`,
	},
}
