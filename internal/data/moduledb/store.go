// Package moduledb stores the API-to-binary and API-set records that Win32
// grouping is built from, plus project ownership.
package moduledb

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"

	"topicsdk/internal/data/sqlitedb"
)

// API is one exported function of one binary within an umbrella library.
type API struct {
	Umbrella   string
	Name       string
	Binary     string
	APISets    []string
	SDKVersion string
	RemovedIn  string
	MovedTo    string
	Suppress   bool
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	db, err := sqlitedb.Open(path, migrations)
	if err != nil {
		return nil, fmt.Errorf("open module database: %w", err)
	}
	return &Store{path: strings.TrimSpace(path), db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string { return s.path }

// UpsertAPIs writes apis in one transaction.
func (s *Store) UpsertAPIs(apis []API) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sqlitedb.WithRetry("upsert apis", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.Prepare(`
INSERT INTO apis (umbrella, name, binary_name, api_sets, sdk_version, removed_in, moved_to, suppress)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(umbrella, binary_name, name) DO UPDATE SET
  api_sets=excluded.api_sets,
  sdk_version=excluded.sdk_version,
  removed_in=excluded.removed_in,
  moved_to=excluded.moved_to,
  suppress=excluded.suppress
`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range apis {
			if _, err := stmt.Exec(a.Umbrella, a.Name, a.Binary, strings.Join(a.APISets, ";"),
				a.SDKVersion, a.RemovedIn, a.MovedTo, a.Suppress); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// Umbrellas lists the umbrella libraries with at least one record, sorted.
func (s *Store) Umbrellas() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := sqlitedb.WithRetry("load umbrellas", func() error {
		var qErr error
		rows, qErr = s.db.Query(`SELECT DISTINCT umbrella FROM apis ORDER BY umbrella`)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan umbrella row: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// APIs returns the records of one umbrella library ordered by binary then
// name.
func (s *Store) APIs(umbrella string) ([]API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := sqlitedb.WithRetry("load apis", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT umbrella, name, binary_name, api_sets, sdk_version, removed_in, moved_to, suppress
FROM apis WHERE umbrella = ? ORDER BY binary_name, name`, umbrella)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]API, 0)
	for rows.Next() {
		var a API
		var sets string
		if err := rows.Scan(&a.Umbrella, &a.Name, &a.Binary, &sets, &a.SDKVersion, &a.RemovedIn, &a.MovedTo, &a.Suppress); err != nil {
			return nil, fmt.Errorf("scan api row: %w", err)
		}
		a.APISets = splitSets(sets)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api rows: %w", err)
	}
	return out, nil
}

// SetProjectOwners replaces the project ownership table.
func (s *Store) SetProjectOwners(owners map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sqlitedb.WithRetry("set project owners", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.Exec(`DELETE FROM project_owners`); err != nil {
			return err
		}
		for project, owner := range owners {
			if _, err := tx.Exec(`INSERT INTO project_owners(project, owner) VALUES (?, ?)`, project, owner); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func (s *Store) ProjectOwners() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT project, owner FROM project_owners`)
	if err != nil {
		return nil, fmt.Errorf("load project owners: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var project, owner string
		if err := rows.Scan(&project, &owner); err != nil {
			return nil, fmt.Errorf("scan project owner row: %w", err)
		}
		out[project] = owner
	}
	return out, rows.Err()
}

// ParseTSV reads an export with the columns umbrella, name, binary, api
// sets (";"-separated), sdk version, removed in, moved to and suppress
// ("1" or "true"). Lines starting with "#" are skipped. The last four
// columns are optional.
func ParseTSV(r io.Reader) ([]API, error) {
	scanner := bufio.NewScanner(r)
	var out []API
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 || len(cols) > 8 {
			return nil, fmt.Errorf("line %d: expected 3 to 8 tab-separated columns, got %d", lineNo, len(cols))
		}
		for len(cols) < 8 {
			cols = append(cols, "")
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if cols[0] == "" || cols[1] == "" || cols[2] == "" {
			return nil, fmt.Errorf("line %d: umbrella, name and binary are required", lineNo)
		}
		out = append(out, API{
			Umbrella:   cols[0],
			Name:       cols[1],
			Binary:     cols[2],
			APISets:    splitSets(cols[3]),
			SDKVersion: cols[4],
			RemovedIn:  cols[5],
			MovedTo:    cols[6],
			Suppress:   cols[7] == "1" || strings.EqualFold(cols[7], "true"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read api export: %w", err)
	}
	return out, nil
}

func splitSets(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
