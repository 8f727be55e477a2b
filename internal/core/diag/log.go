// Package diag collects recoverable problems found during a run into named
// logs that are written to disk at the end of the run.
package diag

import (
	"fmt"
	"strings"

	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/shared/observability"
	"topicsdk/internal/ui/console"
)

// Log is an ordered list of entries for one diagnostic category. A log with
// headers is delimited text, one value per header per entry.
type Log struct {
	Label        string
	Filename     string
	Announcement console.Style
	Headers      []string
	Delimiter    string

	entries []string
}

// Add appends one entry. Logs without headers take exactly one value; logs
// with headers take one value per header.
func (l *Log) Add(values ...any) error {
	if len(l.Headers) == 0 {
		if len(values) != 1 {
			return apperrors.Newf(apperrors.CodeValidationError,
				"log %s takes exactly one value per entry, got %d", l.Filename, len(values))
		}
		l.append(fmt.Sprint(values[0]))
		return nil
	}
	if len(values) != len(l.Headers) {
		return apperrors.Newf(apperrors.CodeValidationError,
			"log %s takes %d values per entry, got %d", l.Filename, len(l.Headers), len(values))
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	l.append(strings.Join(parts, l.delimiter()))
	return nil
}

// Addf appends a formatted single-value entry.
func (l *Log) Addf(format string, args ...any) {
	l.append(fmt.Sprintf(format, args...))
}

func (l *Log) append(entry string) {
	l.entries = append(l.entries, entry)
	observability.DiagEntriesTotal.WithLabelValues(l.Filename).Inc()
}

func (l *Log) Len() int { return len(l.entries) }

func (l *Log) Entries() []string {
	return append([]string(nil), l.entries...)
}

func (l *Log) Reset() { l.entries = nil }

// FirstLine is the line written ahead of the entries: the header row for
// delimited logs, otherwise a "// label" comment.
func (l *Log) FirstLine() string {
	if len(l.Headers) > 0 {
		return strings.Join(l.Headers, l.delimiter())
	}
	return "// " + l.Label
}

func (l *Log) delimiter() string {
	if l.Delimiter == "" {
		return "|"
	}
	return l.Delimiter
}
