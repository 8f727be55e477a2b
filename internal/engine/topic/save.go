package topic

import (
	"context"
	"fmt"

	"topicsdk/internal/core/diag"
	"topicsdk/internal/shared/observability"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Checkouter makes a file writable in source control before it is saved.
type Checkouter interface {
	Checkout(ctx context.Context, path string) error
}

// Saver writes dirty documents back to disk. Checkout is skipped on a dry
// run, but the file is still written.
type Saver struct {
	DryRun      bool
	RecordDiffs bool
	Checkout    Checkouter
	Logs        *diag.Registry
}

// SaveIfDirty checks out and saves d when it has unsaved changes, recording
// the outcome in the files-saved or save-errors log. The dirty flag is
// cleared either way.
func (s *Saver) SaveIfDirty(ctx context.Context, d *Doc) {
	if !d.dirty {
		return
	}
	defer func() { d.dirty = false }()

	if !s.DryRun && s.Checkout != nil {
		if err := s.Checkout.Checkout(ctx, d.path); err != nil {
			s.saveFailed(d, err)
			return
		}
	}

	if s.DryRun || s.RecordDiffs {
		s.recordDiff(d)
	}

	if err := d.doc.WriteToFile(d.path); err != nil {
		s.saveFailed(d, err)
		return
	}
	observability.FilesSavedTotal.Inc()
	s.Logs.FilesSaved.Addf("%s", d.path)
}

func (s *Saver) saveFailed(d *Doc, err error) {
	observability.FileSaveErrorsTotal.Inc()
	s.Logs.FileSaveErrors.Addf("%s: %v", d.path, err)
}

func (s *Saver) recordDiff(d *Doc) {
	patch, err := d.Diff()
	if err != nil || patch == "" {
		return
	}
	s.Logs.DryRunDiffs.Addf("%s\n%s", d.path, patch)
}

// Diff returns a unified-style patch between the document as read and its
// current state, or "" when unchanged.
func (d *Doc) Diff() (string, error) {
	after, err := d.doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("render %s: %w", d.path, err)
	}
	before := string(d.original)
	if before == after {
		return "", nil
	}
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(before, after)), nil
}
