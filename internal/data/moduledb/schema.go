package moduledb

import "topicsdk/internal/data/sqlitedb"

var migrations = []sqlitedb.Migration{
	{
		Version: 1,
		SQL: `
CREATE TABLE IF NOT EXISTS apis (
  umbrella TEXT NOT NULL,
  name TEXT NOT NULL,
  binary_name TEXT NOT NULL,
  api_sets TEXT NOT NULL DEFAULT '',
  sdk_version TEXT NOT NULL DEFAULT '',
  removed_in TEXT NOT NULL DEFAULT '',
  moved_to TEXT NOT NULL DEFAULT '',
  suppress INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (umbrella, binary_name, name)
);
CREATE INDEX IF NOT EXISTS idx_apis_name ON apis(name);
`,
	},
	{
		Version: 2,
		SQL: `
CREATE TABLE IF NOT EXISTS project_owners (
  project TEXT PRIMARY KEY,
  owner TEXT NOT NULL
);
`,
	},
}
