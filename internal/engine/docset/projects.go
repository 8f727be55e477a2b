package docset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "topicsdk/internal/core/errors"

	"github.com/gobwas/glob"
)

// Project is one top-level project folder of the enlistment.
type Project struct {
	Name string
	Dir  string
}

// Prefix returns the directory-name text before the first underscore, or ""
// when the name has none.
func (p Project) Prefix() string {
	i := strings.IndexByte(p.Name, '_')
	if i < 0 {
		return ""
	}
	return p.Name[:i]
}

// matchDirs returns the subfolders of root whose names match any pattern,
// in pattern order then name order. Matching is case-insensitive and a
// folder is returned once.
func matchDirs(root string, patterns []string) ([]Project, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "list project folders"), apperrors.CtxPath, root)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	seen := make(map[string]bool)
	var out []Project
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeValidationError, "invalid project pattern "+p)
		}
		for _, name := range names {
			if seen[name] || !g.Match(strings.ToLower(name)) {
				continue
			}
			seen[name] = true
			out = append(out, Project{Name: name, Dir: filepath.Join(root, name)})
		}
	}
	return out, nil
}

// contentDir returns the folder holding a project's topic files: the
// same-named subfolder, else "nodepage". ok is false when neither exists.
func contentDir(p Project) (string, bool) {
	for _, sub := range []string{p.Name, "nodepage"} {
		dir := filepath.Join(p.Dir, sub)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// xmlFiles lists dir/*.xml matching the glob pattern, sorted.
func xmlFiles(dir, pattern string) ([]string, error) {
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidationError, "invalid file pattern "+pattern)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "list topic files"), apperrors.CtxPath, dir)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && g.Match(strings.ToLower(e.Name())) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// splitID splits "project.topic" ids. Ids with any other number of
// segments are rejected.
func splitID(id string) (string, string, bool) {
	parts := strings.Split(id, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
