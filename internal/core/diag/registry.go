package diag

import (
	"bufio"
	"os"
	"path/filepath"

	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/ui/console"
)

// Registry owns the logs of a single run. FilesSaved and FileSaveErrors are
// reported separately from the other logs.
type Registry struct {
	dir     string
	console *console.Console

	FilesSaved         *Log
	FileSaveErrors     *Log
	NonexistentRids    *Log
	MalformedMappings  *Log
	DuplicatedMappings *Log
	DupedWin32Names    *Log
	MalformedTopics    *Log
	AmbiguousMerges    *Log
	UndocumentedWin32  *Log
	DryRunDiffs        *Log

	others []*Log
}

func NewRegistry(dir string, c *console.Console) *Registry {
	r := &Registry{dir: dir, console: c}
	r.FilesSaved = &Log{Label: "Files saved.", Filename: "FilesSaved_Log.txt"}
	r.FileSaveErrors = &Log{Label: "File save errors.", Filename: "FileSaveErrors_Log.txt", Announcement: console.Error}

	r.NonexistentRids = r.Register(&Log{Label: "Non-existent topic rids found in mapping file(s).", Filename: "NonexistentRidInMappingFile_Log.txt", Announcement: console.Error})
	r.MalformedMappings = r.Register(&Log{Label: "Malformed mappings (should be two comma-separated values).", Filename: "MalformedMappings_Log.txt", Announcement: console.Error})
	r.DuplicatedMappings = r.Register(&Log{Label: "Duplicated mappings.", Filename: "DuplicatedMappings_Log.txt", Announcement: console.Error})
	r.DupedWin32Names = r.Register(&Log{Label: "Duped Win32 API names.", Filename: "DupedWin32ApiNames_Log.txt", Announcement: console.Error})
	r.MalformedTopics = r.Register(&Log{Label: "Malformed topics.", Filename: "MalformedTopics_Log.txt", Announcement: console.Warning})
	r.AmbiguousMerges = r.Register(&Log{Label: "Ambiguous class merges.", Filename: "AmbiguousClassMerges_Log.txt", Announcement: console.Warning,
		Headers: []string{"namespace", "id", "name", "class by id", "class by name"}})
	r.UndocumentedWin32 = r.Register(&Log{Label: "Undocumented Win32 APIs.", Filename: "UndocumentedWin32Apis_Log.txt",
		Headers: []string{"module", "api"}})
	r.DryRunDiffs = r.Register(&Log{Label: "Dry-run diffs.", Filename: "DryRunDiffs_Log.txt", Announcement: console.Highlight})
	return r
}

// Register adds a log to the end-of-run output and returns it.
func (r *Registry) Register(l *Log) *Log {
	r.others = append(r.others, l)
	return l
}

func (r *Registry) Logs() []*Log {
	return append([]*Log(nil), r.others...)
}

func (r *Registry) Path(l *Log) string {
	return filepath.Join(r.dir, l.Filename)
}

// WriteFilesSaved prints the saved-files summary and writes the files-saved
// and save-error logs.
func (r *Registry) WriteFilesSaved(dryRun bool) error {
	if err := r.refresh(r.FilesSaved); err != nil {
		return err
	}

	if dryRun {
		r.console.Println(console.Highlight, "===FILES SAVED (DRYRUN)===")
	} else {
		r.console.Println(console.Highlight, "=======FILES SAVED========")
	}

	switch {
	case r.FilesSaved.Len() > 0:
		r.console.Println(console.Default, r.FilesSaved.entries[0])
	case dryRun:
		r.console.Println(console.Warning, "***None***")
	default:
		r.console.Println(console.Warning, "!!!No files saved. This was not a dry-run and it was a no-op!!!")
	}

	if r.FilesSaved.Len() > 1 {
		r.console.Println(console.Default, "For the rest, see "+r.Path(r.FilesSaved))
		if err := r.writeLines(r.FilesSaved, false); err != nil {
			return err
		}
	}

	wrote, err := r.writeLog(r.FileSaveErrors)
	if err != nil {
		return err
	}
	if wrote {
		if dryRun {
			r.console.Println(console.Warning, "!!!Make files writable if you want to save them!!!")
		} else {
			r.console.Println(console.Warning, "!!!There are file save errors!!!")
		}
	}
	return nil
}

// WriteAll writes every registered non-empty log and announces each one.
func (r *Registry) WriteAll() error {
	r.console.Println(console.Highlight, "\n===========LOGS===========")
	wroteAny := false
	for _, l := range r.others {
		wrote, err := r.writeLog(l)
		if err != nil {
			return err
		}
		wroteAny = wroteAny || wrote
	}
	if !wroteAny {
		r.console.Println(console.Warning, "***No logs***")
	}
	return nil
}

func (r *Registry) writeLog(l *Log) (bool, error) {
	if err := r.refresh(l); err != nil {
		return false, err
	}
	if l.Len() == 0 {
		return false, nil
	}
	r.console.Println(l.Announcement, "See "+r.Path(l))
	return true, r.writeLines(l, true)
}

func (r *Registry) writeLines(l *Log, withFirstLine bool) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.CodeIO, "create logs directory")
	}
	path := r.Path(l)
	f, err := os.Create(path)
	if err != nil {
		return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "create log"), apperrors.CtxPath, path)
	}
	w := bufio.NewWriter(f)
	if withFirstLine {
		w.WriteString(l.FirstLine() + "\n")
	}
	for _, line := range l.entries {
		w.WriteString(line + "\n")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "write log"), apperrors.CtxPath, path)
	}
	return f.Close()
}

// refresh removes a previous run's copy of the log.
func (r *Registry) refresh(l *Log) error {
	path := r.Path(l)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.console.Println(console.Error, "I can't refresh the file "+path)
		r.console.Println(console.Error, "Please close it if you have it open.")
		return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "refresh log"), apperrors.CtxPath, path)
	}
	return nil
}
