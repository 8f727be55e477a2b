package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"topicsdk/internal/core/app"
	"topicsdk/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEnlistment(t *testing.T, root string) {
	files := map[string]string{
		"metro.txt":   "w_foo\n",
		"windev.txt":  "",
		"desktop.txt": "dev_*\n",

		"w_foo/w_foo.xtoc":       `<toc><node topicURL="w_foo/ns.xml" text="Windows.Foo"/><node topicURL="w_foo/widget.xml" text="Widget"/></toc>`,
		"w_foo/w_foo/ns.xml":     `<topic><metadata id="w_foo.ns" type="namespace"><title>Windows.Foo</title></metadata></topic>`,
		"w_foo/w_foo/widget.xml": `<topic><metadata id="w_foo.widget" type="class_winrt" intellisense_id_string="Windows.Foo.Widget"><title>Widget</title></metadata></topic>`,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestTOMLConfigPipeline(t *testing.T) {
	enlistment := t.TempDir()
	createEnlistment(t, enlistment)

	work := t.TempDir()
	toml := `enlistment_dir = "` + filepath.ToSlash(enlistment) + `"
stub_dir = "stubs"
dry_run = true
uwp_projects = ["w_*"]
reference_prefixes = ["w_"]
tasks = ["winrt-report"]

[paths]
logs_dir = "out"
history_db = "history.db"

[observability]
metrics_file = "out/topicsdk.prom"
`
	cfgPath := filepath.Join(work, "topicsdk.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(toml), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, cfg.ReferencePrefixes)

	a, err := app.New(cfg, app.Options{RunID: "integration", Version: "test", Out: &bytes.Buffer{}})
	require.NoError(t, err)
	defer a.Close()

	code, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.FileExists(t, filepath.Join(work, "out", "winrt-api-reference.tsv"))
	metrics, err := os.ReadFile(filepath.Join(work, "out", "topicsdk.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "topicsdk_model_namespaces 1")
	assert.Contains(t, string(metrics), `topicsdk_phase_seconds_count{phase="winrt-report"}`)

	runs, ok, err := a.History.LastRun()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, runs.Classes)
}

func TestLegacyConfigRetitle(t *testing.T) {
	enlistment := t.TempDir()
	createEnlistment(t, enlistment)

	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "retitle.txt"), []byte("// id, title\nw_foo.widget,Widget runtime class\n"), 0o644))
	legacy := "// comment\n" +
		"my_enlistment_folder " + enlistment + "\n" +
		"api_ref_stub_folder " + filepath.Join(work, "stubs") + "\n" +
		"dryrun 1\n" +
		"uwp_proj w_*\n" +
		"ref_proj_prefix w\n" +
		"task retitle\n" +
		"retitle_map retitle.txt\n"
	cfgPath := filepath.Join(work, "configuration.txt")
	require.NoError(t, os.WriteFile(cfgPath, []byte(legacy), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "retitle.txt"), cfg.Mappings.RetitleMap)

	var out bytes.Buffer
	a, err := app.New(cfg, app.Options{RunID: "legacy", Out: &out})
	require.NoError(t, err)
	defer a.Close()

	code, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	widget, err := os.ReadFile(filepath.Join(enlistment, "w_foo", "w_foo", "widget.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(widget), "Widget runtime class")
	assert.Contains(t, out.String(), "Retitled 1 topic(s).")
	assert.FileExists(t, filepath.Join(work, "FilesSaved_Log.txt"))
}
