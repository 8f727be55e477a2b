// Package app runs the configured tasks over a content enlistment: it builds
// the docsets and models, applies edits, saves dirty topics and writes the
// run's logs, reports and history.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"topicsdk/internal/core/config"
	"topicsdk/internal/core/diag"
	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/data/history"
	"topicsdk/internal/data/mapping"
	"topicsdk/internal/data/moduledb"
	"topicsdk/internal/data/vcs"
	"topicsdk/internal/engine/docset"
	"topicsdk/internal/engine/topic"
	"topicsdk/internal/engine/winrt"
	"topicsdk/internal/shared/observability"
	"topicsdk/internal/shared/util"
	"topicsdk/internal/ui/console"
	"topicsdk/internal/ui/report"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const runsReportWindow = 30 * 24 * time.Hour

type Options struct {
	RunID   string
	Version string
	Out     io.Writer
	// Checkout replaces the configured checkout command.
	Checkout topic.Checkouter
	Now      func() time.Time
}

type App struct {
	Config  *config.Config
	Console *console.Console
	Logs    *diag.Registry
	Loader  *mapping.Loader
	Saver   *topic.Saver

	// Modules and History are nil when their database is not configured.
	Modules *moduledb.Store
	History *history.Store

	RunID   string
	Version string
	now     func() time.Time

	uwpRef   *docset.DocSet
	win32Set *docset.DocSet
	apiModel *winrt.Model

	pending map[*topic.Doc]bool
	order   []*topic.Doc
	run     history.Run
}

func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.CodeValidationError, "config is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	con := console.New(out)
	logs := diag.NewRegistry(cfg.Paths.LogsDir, con)

	checkout := opts.Checkout
	if checkout == nil && !cfg.DryRun {
		c, err := vcs.NewCommandCheckout(cfg.Checkout.Command, cfg.Checkout.Rate, cfg.Checkout.Burst)
		if err != nil {
			return nil, err
		}
		checkout = c
	}

	a := &App{
		Config:  cfg,
		Console: con,
		Logs:    logs,
		Loader:  mapping.NewLoader(logs),
		Saver: &topic.Saver{
			DryRun:      cfg.DryRun,
			RecordDiffs: cfg.Observability.RecordDiffs,
			Checkout:    checkout,
			Logs:        logs,
		},
		RunID:   opts.RunID,
		Version: opts.Version,
		now:     now,
		pending: make(map[*topic.Doc]bool),
	}

	if cfg.Paths.ModuleDB != "" {
		store, err := moduledb.Open(cfg.Paths.ModuleDB)
		if err != nil {
			return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "open module database"), apperrors.CtxPath, cfg.Paths.ModuleDB)
		}
		a.Modules = store
	}
	if cfg.Paths.HistoryDB != "" {
		store, err := history.Open(cfg.Paths.HistoryDB)
		if err != nil {
			a.Close()
			return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "open history database"), apperrors.CtxPath, cfg.Paths.HistoryDB)
		}
		a.History = store
	}
	return a, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Modules != nil {
		errs = append(errs, a.Modules.Close())
		a.Modules = nil
	}
	if a.History != nil {
		errs = append(errs, a.History.Close())
		a.History = nil
	}
	return errors.Join(errs...)
}

// Run executes the configured tasks, saves every edited topic and writes the
// run's logs and history. The returned code is the process exit code; the
// logs are written even when a task fails.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.String("run_id", a.RunID),
		attribute.StringSlice("tasks", a.Config.Tasks),
		attribute.Bool("dry_run", a.Config.DryRun),
	))
	defer span.End()

	a.run = history.Run{
		RunID:     a.RunID,
		StartedAt: a.now().UTC(),
		Tasks:     append([]string(nil), a.Config.Tasks...),
		DryRun:    a.Config.DryRun,
	}
	slog.Info("run started", "tasks", strings.Join(a.Config.Tasks, ","), "dry_run", a.Config.DryRun)

	err := a.runTasks(ctx)
	if err == nil {
		err = a.phase(ctx, "save", a.saveAll)
	}
	code := 0
	if err != nil {
		code = 1
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if ferr := a.finish(code); ferr != nil {
		if err == nil {
			err = ferr
		}
		code = 1
	}
	slog.Info("run finished", "exit_code", code, "files_saved", a.run.FilesSaved, "save_errors", a.run.SaveErrors, "heap_mb", util.HeapAllocMB())
	return code, err
}

func (a *App) runTasks(ctx context.Context) error {
	tasks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{config.TaskRetitle, a.retitle},
		{config.TaskWinRTReport, a.winrtReport},
		{config.TaskWin32Report, a.win32Report},
	}
	for _, t := range tasks {
		if !a.Config.HasTask(t.name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.phase(ctx, t.name, t.fn); err != nil {
			return apperrors.AddContext(err, apperrors.CtxOperation, t.name)
		}
	}
	return nil
}

// phase runs fn inside a span and records its duration.
func (a *App) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.Tracer.Start(ctx, "phase."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	observability.PhaseDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Debug("phase failed", "phase", name, "error", err)
	} else {
		slog.Debug("phase done", "phase", name, "elapsed", time.Since(start))
	}
	return err
}

// track queues d to be saved at the end of the run.
func (a *App) track(d *topic.Doc) {
	if d == nil || a.pending[d] {
		return
	}
	a.pending[d] = true
	a.order = append(a.order, d)
}

func (a *App) saveAll(ctx context.Context) error {
	for _, d := range a.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.Saver.SaveIfDirty(ctx, d)
	}
	return nil
}

func (a *App) finish(code int) error {
	a.run.FinishedAt = a.now().UTC()
	a.run.ExitCode = code
	a.run.FilesSaved = a.Logs.FilesSaved.Len()
	a.run.SaveErrors = a.Logs.FileSaveErrors.Len()
	a.run.LogCounts = make(map[string]int)
	for _, l := range a.Logs.Logs() {
		if l.Len() > 0 {
			a.run.LogCounts[l.Filename] = l.Len()
		}
	}

	var errs []error
	if a.History != nil && a.run.RunID != "" {
		if err := a.History.SaveRun(a.run); err != nil {
			errs = append(errs, apperrors.Wrap(err, apperrors.CodeIO, "record run history"))
		} else if err := a.writeRunsReport(); err != nil {
			errs = append(errs, err)
		}
	}
	if path := a.Config.Observability.MetricsFile; path != "" {
		if err := observability.WriteTextfile(path); err != nil {
			errs = append(errs, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "write metrics textfile"), apperrors.CtxPath, path))
		}
	}
	if err := a.Logs.WriteFilesSaved(a.Config.DryRun); err != nil {
		errs = append(errs, err)
	}
	if err := a.Logs.WriteAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// writeRunsReport lists the runs recorded in the last 30 days.
func (a *App) writeRunsReport() error {
	runs, err := a.History.LoadRuns(a.run.StartedAt.Add(-runsReportWindow))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeIO, "load run history")
	}
	path := filepath.Join(a.Config.Paths.LogsDir, "runs.tsv")
	if err := util.WriteFileWithDirs(path, []byte(report.RunsTSV(runs)), 0o644); err != nil {
		return apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "write run history"), apperrors.CtxPath, path)
	}
	return nil
}

// LastRun returns the run summary recorded by the most recent Run.
func (a *App) LastRun() history.Run { return a.run }

// UWPReference returns the UWP reference docset, creating it on first use.
func (a *App) UWPReference() (*docset.DocSet, error) {
	if a.uwpRef != nil {
		return a.uwpRef, nil
	}
	d, err := docset.Create(a.Config, a.Logs, a.Console, docset.ReferenceOnly, docset.PlatformUWP, "UWP API reference")
	if err != nil {
		return nil, err
	}
	a.uwpRef = d
	return d, nil
}

// Win32Desktop returns the Win32 desktop docset, creating it on first use.
func (a *App) Win32Desktop() (*docset.DocSet, error) {
	if a.win32Set != nil {
		return a.win32Set, nil
	}
	d, err := docset.Create(a.Config, a.Logs, a.Console, docset.ConceptualAndReference, docset.PlatformWin32Desktop, "Win32 desktop")
	if err != nil {
		return nil, err
	}
	a.win32Set = d
	return d, nil
}

// APIRefModel builds the UWP namespace model plus any injected types.
func (a *App) APIRefModel() (*winrt.Model, error) {
	if a.apiModel != nil {
		return a.apiModel, nil
	}
	d, err := a.UWPReference()
	if err != nil {
		return nil, err
	}
	m, err := d.APIRefModel()
	if err != nil {
		return nil, err
	}
	if path := a.Config.Mappings.InjectedTypes; path != "" {
		pairs, err := a.Loader.LoadPairs(path, ',')
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			m.AddInjected(p.Key, p.Value)
		}
	}
	m.Sort()

	namespaces, classes, _ := m.Counts()
	observability.ModelNamespaces.Set(float64(namespaces))
	observability.ModelClasses.Set(float64(classes))
	a.apiModel = m
	return m, nil
}

// BrowseModel returns the UWP model and, when history is recorded, its change
// since the last recorded run.
func (a *App) BrowseModel() (*winrt.Model, *history.Delta, error) {
	m, err := a.APIRefModel()
	if err != nil {
		return nil, nil, err
	}
	if a.History == nil {
		return m, nil, nil
	}
	prev, ok, err := a.History.LastRun()
	if err != nil || !ok {
		return m, nil, err
	}
	cur := prev
	cur.Namespaces, cur.Classes, cur.Members = m.Counts()
	delta := history.Compare(prev, cur)
	// The Win32 count is not rebuilt for browsing.
	delta.Win32Functions = 0
	return m, &delta, nil
}

// ImportAPIs loads a tab-separated module database export into the module
// store and returns the number of records read.
func (a *App) ImportAPIs(path string) (int, error) {
	if a.Modules == nil {
		return 0, apperrors.New(apperrors.CodeValidationError, "importing APIs needs module_db to be configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "open API export"), apperrors.CtxPath, path)
	}
	defer f.Close()

	apis, err := moduledb.ParseTSV(f)
	if err != nil {
		return 0, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeParse, "parse API export"), apperrors.CtxPath, path)
	}
	if err := a.Modules.UpsertAPIs(apis); err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeIO, "store APIs")
	}
	a.Console.Printf(console.Success, "Imported %d API record(s) from %s.", len(apis), filepath.Base(path))
	return len(apis), nil
}
