package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/data/moduledb"
	"topicsdk/internal/engine/docset"
	"topicsdk/internal/engine/toc"
	"topicsdk/internal/engine/win32"
	"topicsdk/internal/shared/observability"
	"topicsdk/internal/shared/util"
	"topicsdk/internal/ui/console"
	"topicsdk/internal/ui/report"
)

// retitle applies a "topic id, new title" map to the UWP reference topics
// and the matching nodes of their project TOCs.
func (a *App) retitle(ctx context.Context) error {
	path := a.Config.Mappings.RetitleMap
	if path == "" {
		return apperrors.New(apperrors.CodeValidationError, "the retitle task needs retitle_map to be configured")
	}
	ds, err := a.UWPReference()
	if err != nil {
		return err
	}
	titles, err := a.Loader.LoadUnique(path)
	if err != nil {
		return err
	}

	tocs := make(map[string]*toc.TOC)
	retitled := 0
	for _, id := range util.SortedStringKeys(titles) {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := ds.TopicForID(id)
		if err != nil {
			return err
		}
		if doc == nil {
			a.Logs.NonexistentRids.Addf("%s don't contain %s", ds.Description(), id)
			continue
		}
		title := titles[id]
		doc.SetTitle(title)
		a.track(doc)
		retitled++

		p, ok := projectFor(ds, doc.Path())
		if !ok {
			continue
		}
		t, ok := tocs[p.Name]
		if !ok {
			if t, err = toc.FindTOC(p.Dir); err != nil {
				return err
			}
			tocs[p.Name] = t
			a.track(t.Doc)
		}
		if !t.SetNodeText(t.URLFor(doc.Path()), title) {
			a.Logs.MalformedTopics.Addf("%s has no node for %s", t.Path(), doc.Path())
		}
	}
	a.Console.Printf(console.Success, "Retitled %d topic(s).", retitled)
	return nil
}

// projectFor returns the docset project whose folder contains path.
func projectFor(ds *docset.DocSet, path string) (docset.Project, bool) {
	for _, p := range ds.Projects() {
		rel, err := filepath.Rel(p.Dir, path)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return p, true
		}
	}
	return docset.Project{}, false
}

func (a *App) winrtReport(ctx context.Context) error {
	m, err := a.APIRefModel()
	if err != nil {
		return err
	}
	a.run.Namespaces, a.run.Classes, a.run.Members = m.Counts()

	opts := report.MarkdownOptions{
		Title:       "UWP API reference",
		Version:     a.Version,
		GeneratedAt: a.now(),
		Owners:      a.projectOwners(),
	}
	base := filepath.Join(a.Config.Paths.LogsDir, "winrt-api-reference")
	if err := a.writeReport(base+".tsv", report.WinRTTSV(m)); err != nil {
		return err
	}
	return a.writeReport(base+".md", report.WinRTMarkdown(m, opts))
}

// win32Report groups the module database by umbrella library against the
// documented Win32 functions.
func (a *App) win32Report(ctx context.Context) error {
	if a.Modules == nil {
		return apperrors.New(apperrors.CodeValidationError, "the win32-report task needs module_db to be configured")
	}
	ds, err := a.Win32Desktop()
	if err != nil {
		return err
	}
	documented, err := ds.Win32Model()
	if err != nil {
		return err
	}
	observability.Win32Functions.Set(float64(documented.Len()))
	a.run.Win32Functions = documented.Len()

	names, err := a.Modules.Umbrellas()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeIO, "list umbrella libraries")
	}
	umbrellas := make([]*win32.UmbrellaLib, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		apis, err := a.Modules.APIs(name)
		if err != nil {
			return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "load APIs"), apperrors.CtxOperation, name)
		}
		u := win32.NewUmbrellaLib(name)
		u.Group(apiRecords(apis), documented, func(rec win32.APIRecord) {
			_ = a.Logs.UndocumentedWin32.Add(rec.Binary, rec.Name)
		})
		umbrellas = append(umbrellas, u)
	}
	if err := a.injectInterfaces(umbrellas); err != nil {
		return err
	}

	for _, u := range umbrellas {
		base := filepath.Join(a.Config.Paths.LogsDir, "win32-"+fileSlug(u.Name))
		if err := a.writeReport(base+".tsv", report.ModulesTSV(u)); err != nil {
			return err
		}
		opts := report.MarkdownOptions{Version: a.Version, GeneratedAt: a.now()}
		if err := a.writeReport(base+".md", report.InitialCharMarkdown(u, opts)); err != nil {
			return err
		}
	}
	return nil
}

// injectInterfaces adds "name,module" records to each umbrella that contains
// the module. Records no umbrella claims are logged as malformed.
func (a *App) injectInterfaces(umbrellas []*win32.UmbrellaLib) error {
	path := a.Config.Win32.InjectedInterfaces
	if path == "" {
		return nil
	}
	pairs, err := a.Loader.LoadPairs(path, ',')
	if err != nil {
		return err
	}
	for _, p := range pairs {
		claimed := false
		for _, u := range umbrellas {
			if u.Module(p.Value) != nil {
				u.AddInjected(p.Key, p.Value)
				claimed = true
			}
		}
		if !claimed {
			a.Logs.MalformedMappings.Addf("%s names a module no umbrella library contains: %s,%s", filepath.Base(path), p.Key, p.Value)
		}
	}
	return nil
}

func apiRecords(apis []moduledb.API) []win32.APIRecord {
	out := make([]win32.APIRecord, len(apis))
	for i, api := range apis {
		out[i] = win32.APIRecord{
			Name:       api.Name,
			Binary:     api.Binary,
			APISets:    api.APISets,
			SDKVersion: api.SDKVersion,
			RemovedIn:  api.RemovedIn,
			MovedTo:    api.MovedTo,
			Suppress:   api.Suppress,
		}
	}
	return out
}

func (a *App) projectOwners() map[string]string {
	if a.Modules == nil {
		return nil
	}
	owners, err := a.Modules.ProjectOwners()
	if err != nil {
		a.Console.Printf(console.Warning, "Project owners unavailable: %v", err)
		return nil
	}
	return owners
}

func (a *App) writeReport(path, content string) error {
	if err := util.WriteFileWithDirs(path, []byte(content), 0o644); err != nil {
		return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "write report"), apperrors.CtxPath, path)
	}
	a.Console.Println(console.Success, fmt.Sprintf("Wrote %s", path))
	return nil
}

// fileSlug lower-cases name and replaces anything but letters and digits
// with '-'.
func fileSlug(name string) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, name)
	if slug == "" {
		return "umbrella"
	}
	return slug
}
