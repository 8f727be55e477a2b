package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"topicsdk/internal/core/config"
	apperrors "topicsdk/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckout struct {
	paths []string
}

func (f *fakeCheckout) Checkout(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return nil
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newEnlistment(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"metro.txt":   "w_foo\n",
		"windev.txt":  "",
		"desktop.txt": "dev_*\n",

		"w_foo/w_foo.xtoc":       `<toc><node topicURL="w_foo/ns.xml" text="Windows.Foo"/><node topicURL="w_foo/widget.xml" text="Widget"/></toc>`,
		"w_foo/w_foo/ns.xml":     `<topic><metadata id="w_foo.ns" type="namespace"><title>Windows.Foo</title></metadata></topic>`,
		"w_foo/w_foo/widget.xml": `<topic><metadata id="w_foo.widget" type="class_winrt" intellisense_id_string="Windows.Foo.Widget"><title>Widget</title></metadata></topic>`,

		"dev_win/dev_win.xtoc":  `<toc><node topicURL="dev_win/a.xml"/></toc>`,
		"dev_win/dev_win/a.xml": `<topic><metadata id="dev_win.a" type="function"><title>CreateThing</title></metadata></topic>`,
	})
	work := t.TempDir()
	return &config.Config{
		EnlistmentDir:     root,
		StubDir:           filepath.Join(work, "stubs"),
		UWPProjects:       []string{"w_*"},
		ReferencePrefixes: []string{"w"},
		Tasks:             []string{config.TaskWinRTReport},
		Paths: config.Paths{
			LogsDir:   filepath.Join(work, "logs"),
			HistoryDB: filepath.Join(work, "history.db"),
		},
		Win32:    config.Win32{TopicTypes: []string{"function"}},
		Checkout: config.Checkout{Command: "true {path}", Rate: 0, Burst: 1},
		Cache:    config.Cache{TopicCacheSize: 8},
		BaseDir:  work,
	}
}

func newApp(t *testing.T, cfg *config.Config, checkout *fakeCheckout) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := New(cfg, Options{
		RunID:    "run-1",
		Version:  "test",
		Out:      &out,
		Checkout: checkout,
		Now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, &out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunWinRTReportRecordsHistory(t *testing.T) {
	cfg := newEnlistment(t)
	a, _ := newApp(t, cfg, &fakeCheckout{})

	code, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	tsv := readFile(t, filepath.Join(cfg.Paths.LogsDir, "winrt-api-reference.tsv"))
	assert.Contains(t, tsv, "Windows.Foo")
	assert.Contains(t, tsv, "Widget")
	md := readFile(t, filepath.Join(cfg.Paths.LogsDir, "winrt-api-reference.md"))
	assert.Contains(t, md, "version: test")

	run := a.LastRun()
	assert.Equal(t, 1, run.Namespaces)
	assert.Equal(t, 1, run.Classes)

	prev, ok, err := a.History.LastRun()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", prev.RunID)
	assert.Equal(t, 1, prev.Namespaces)
	assert.Equal(t, 0, prev.ExitCode)
	assert.Contains(t, readFile(t, filepath.Join(cfg.Paths.LogsDir, "runs.tsv")), "run-1\t")
}

func TestRunRetitleUpdatesTopicAndTOC(t *testing.T) {
	cfg := newEnlistment(t)
	cfg.Tasks = []string{config.TaskRetitle}
	cfg.Mappings.RetitleMap = filepath.Join(cfg.BaseDir, "retitle.txt")
	writeTree(t, cfg.BaseDir, map[string]string{
		"retitle.txt": "w_foo.widget,Widget class\nw_foo.missing,Nothing\n",
	})
	checkout := &fakeCheckout{}
	a, _ := newApp(t, cfg, checkout)

	code, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	widget := filepath.Join(cfg.EnlistmentDir, "w_foo", "w_foo", "widget.xml")
	xtoc := filepath.Join(cfg.EnlistmentDir, "w_foo", "w_foo.xtoc")
	assert.Contains(t, readFile(t, widget), "<title>Widget class</title>")
	assert.Contains(t, readFile(t, xtoc), `text="Widget class"`)
	assert.ElementsMatch(t, []string{widget, xtoc}, checkout.paths)

	assert.Equal(t, 2, a.LastRun().FilesSaved)
	missing := readFile(t, filepath.Join(cfg.Paths.LogsDir, "NonexistentRidInMappingFile_Log.txt"))
	assert.Contains(t, missing, "UWP API reference don't contain w_foo.missing")
}

func TestRunRetitleRequiresMap(t *testing.T) {
	cfg := newEnlistment(t)
	cfg.Tasks = []string{config.TaskRetitle}
	a, _ := newApp(t, cfg, &fakeCheckout{})

	code, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationError))

	prev, ok, err := a.History.LastRun()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, prev.ExitCode)
}

func TestDryRunSkipsCheckoutAndRecordsDiffs(t *testing.T) {
	cfg := newEnlistment(t)
	cfg.DryRun = true
	cfg.Tasks = []string{config.TaskRetitle}
	cfg.Mappings.RetitleMap = filepath.Join(cfg.BaseDir, "retitle.txt")
	writeTree(t, cfg.BaseDir, map[string]string{"retitle.txt": "w_foo.widget,Renamed\n"})
	checkout := &fakeCheckout{}
	a, out := newApp(t, cfg, checkout)

	code, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, checkout.paths)
	assert.Contains(t, out.String(), "FILES SAVED (DRYRUN)")
	assert.Contains(t, readFile(t, filepath.Join(cfg.Paths.LogsDir, "DryRunDiffs_Log.txt")), "Renamed")
}

func TestRunWin32Report(t *testing.T) {
	cfg := newEnlistment(t)
	cfg.Tasks = []string{config.TaskWin32Report}
	cfg.Paths.ModuleDB = filepath.Join(cfg.BaseDir, "modules.db")
	cfg.Win32.InjectedInterfaces = filepath.Join(cfg.BaseDir, "interfaces.txt")
	writeTree(t, cfg.BaseDir, map[string]string{
		"apis.tsv": "# umbrella\tname\tbinary\n" +
			"onecore\tCreateThing\tkernel32.dll\t\t10.0.10240\n" +
			"onecore\tUndocumentedThing\tkernel32.dll\n" +
			"onecore\tDllMain\tkernel32.dll\n",
		"interfaces.txt": "IThing,kernel32.dll\nIOrphan,nowhere.dll\n",
	})
	a, _ := newApp(t, cfg, &fakeCheckout{})

	n, err := a.ImportAPIs(filepath.Join(cfg.BaseDir, "apis.tsv"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	code, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, a.LastRun().Win32Functions)

	modules := readFile(t, filepath.Join(cfg.Paths.LogsDir, "win32-onecore.tsv"))
	assert.Contains(t, modules, "CreateThing")
	assert.NotContains(t, modules, "DllMain")
	md := readFile(t, filepath.Join(cfg.Paths.LogsDir, "win32-onecore.md"))
	assert.Contains(t, md, "IThing")

	undocumented := readFile(t, filepath.Join(cfg.Paths.LogsDir, "UndocumentedWin32Apis_Log.txt"))
	assert.Contains(t, undocumented, "UndocumentedThing")
	malformed := readFile(t, filepath.Join(cfg.Paths.LogsDir, "MalformedMappings_Log.txt"))
	assert.Contains(t, malformed, "IOrphan")
}

func TestRunWin32ReportRequiresModuleDB(t *testing.T) {
	cfg := newEnlistment(t)
	cfg.Tasks = []string{config.TaskWin32Report}
	a, _ := newApp(t, cfg, &fakeCheckout{})

	code, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationError))
}

func TestBrowseModelDelta(t *testing.T) {
	cfg := newEnlistment(t)
	a, _ := newApp(t, cfg, &fakeCheckout{})

	m, delta, err := a.BrowseModel()
	require.NoError(t, err)
	assert.Len(t, m.Namespaces, 1)
	assert.Nil(t, delta, "no previous run recorded yet")

	_, err = a.Run(context.Background())
	require.NoError(t, err)

	_, delta, err = a.BrowseModel()
	require.NoError(t, err)
	require.NotNil(t, delta)
	assert.True(t, delta.IsZero())
}

func TestImportAPIsRequiresModuleDB(t *testing.T) {
	cfg := newEnlistment(t)
	a, _ := newApp(t, cfg, &fakeCheckout{})

	_, err := a.ImportAPIs(filepath.Join(cfg.BaseDir, "apis.tsv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationError))
}

func TestFileSlug(t *testing.T) {
	assert.Equal(t, "onecore", fileSlug("OneCore"))
	assert.Equal(t, "api-ms-win", fileSlug("api ms/win"))
	assert.Equal(t, "umbrella", fileSlug(""))
}
