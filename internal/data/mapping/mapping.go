// Package mapping reads the comma-delimited side files that drive a run:
// unique-key maps, multi-valued maps, pair lists and plain name lists.
package mapping

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"topicsdk/internal/core/diag"
	apperrors "topicsdk/internal/core/errors"
)

// TopicResolver resolves a topic id to a file within a docset.
type TopicResolver interface {
	PathForTopic(id string) string
	Description() string
}

// Loader reads mapping files and records problems in the run's logs. Keys
// found duplicated in any unique-key map stay duplicated for the rest of the
// run.
type Loader struct {
	logs          *diag.Registry
	duplicateKeys map[string]bool
}

func NewLoader(logs *diag.Registry) *Loader {
	return &Loader{logs: logs, duplicateKeys: make(map[string]bool)}
}

// LoadUnique reads a map whose keys must appear exactly once. A key seen a
// second time is removed from the map and both lines are logged; any later
// occurrence is logged and ignored.
func (l *Loader) LoadUnique(path string) (map[string]string, error) {
	return l.loadUnique(path, nil, nil)
}

// LoadUniqueValidated is LoadUnique with keys checked against keyDocs and
// mapped values against valueDocs. Ids that resolve to no topic are logged
// but kept.
func (l *Loader) LoadUniqueValidated(path string, keyDocs, valueDocs TopicResolver) (map[string]string, error) {
	if keyDocs == nil || valueDocs == nil {
		return nil, apperrors.Newf(apperrors.CodeValidationError,
			"rids in %s could not be validated: two docsets are needed to validate keys and mapped values", filepath.Base(path))
	}
	return l.loadUnique(path, keyDocs, valueDocs)
}

func (l *Loader) loadUnique(path string, keyDocs, valueDocs TopicResolver) (map[string]string, error) {
	name := filepath.Base(path)
	out := make(map[string]string)
	err := eachLine(path, func(line string) {
		key, value, ok := split(line, ',')
		if !ok {
			l.logs.MalformedMappings.Addf("%s has malformed mapping: %s", name, line)
			return
		}
		if l.duplicateKeys[key] {
			l.logs.DuplicatedMappings.Addf("%s has duplicate key: %s", name, line)
			return
		}
		if prev, seen := out[key]; seen {
			l.logs.DuplicatedMappings.Addf("%s has duplicate key: %s,%s", name, key, prev)
			l.logs.DuplicatedMappings.Addf("%s has duplicate key: %s", name, line)
			delete(out, key)
			l.duplicateKeys[key] = true
			return
		}
		if keyDocs != nil {
			if keyDocs.PathForTopic(key) == "" {
				l.logs.NonexistentRids.Addf("%s don't contain %s", keyDocs.Description(), key)
			}
			if valueDocs.PathForTopic(value) == "" {
				l.logs.NonexistentRids.Addf("%s don't contain %s", valueDocs.Description(), value)
			}
		}
		out[key] = value
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadMulti reads a map whose keys may repeat. Values are lower-cased and
// kept once per key, in file order.
func (l *Loader) LoadMulti(path string, delim rune) (map[string][]string, error) {
	name := filepath.Base(path)
	out := make(map[string][]string)
	err := eachLine(path, func(line string) {
		key, value, ok := split(line, delim)
		if !ok {
			l.logs.MalformedMappings.Addf("%s has malformed mapping: %s", name, line)
			return
		}
		value = strings.ToLower(value)
		for _, v := range out[key] {
			if v == value {
				return
			}
		}
		out[key] = append(out[key], value)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Pair is one two-column line with its original case.
type Pair struct {
	Key   string
	Value string
}

// LoadPairs reads two-column lines in file order.
func (l *Loader) LoadPairs(path string, delim rune) ([]Pair, error) {
	name := filepath.Base(path)
	var out []Pair
	err := eachLine(path, func(line string) {
		key, value, ok := split(line, delim)
		if !ok {
			l.logs.MalformedMappings.Addf("%s has malformed mapping: %s", name, line)
			return
		}
		out = append(out, Pair{Key: key, Value: value})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DuplicateKeys returns every key found duplicated so far, sorted.
func (l *Loader) DuplicateKeys() []string {
	out := make([]string, 0, len(l.duplicateKeys))
	for k := range l.duplicateKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadList reads one trimmed name per non-blank line. notFound replaces the
// default message when the file is missing.
func LoadList(path, notFound string) ([]string, error) {
	if notFound == "" {
		notFound = "Could not find " + filepath.Base(path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeNotFound, notFound), apperrors.CtxPath, path)
	}
	var out []string
	err := eachLine(path, func(line string) {
		out = append(out, strings.TrimSpace(line))
	})
	return out, err
}

// eachLine calls fn for every line that is neither blank nor a "//"
// comment.
func eachLine(path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.AddContext(
				apperrors.Wrap(err, apperrors.CodeNotFound, "Could not find "+filepath.Base(path)),
				apperrors.CtxPath, path)
		}
		return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "open mapping file"), apperrors.CtxPath, path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "//") || strings.TrimSpace(line) == "" {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "read mapping file"), apperrors.CtxPath, path)
	}
	return nil
}

func split(line string, delim rune) (string, string, bool) {
	parts := strings.Split(line, string(delim))
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
