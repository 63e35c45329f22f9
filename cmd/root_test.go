package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/smartmd/internal/config"
	"github.com/zjrosen/smartmd/internal/presentation"
	"github.com/zjrosen/smartmd/internal/settings"
)

// setup writes a config whose data directory lives in a temp dir and
// returns its path.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	require.NoError(t, config.SetValue(path, "data_dir", filepath.Join(dir, "data")))

	t.Cleanup(func() {
		cfgFile, debug = "", false
		decorateMode, decorateCursor, decorateLine = "", 0, 0
		decorateJSON, decorateDefaults, decorateNoStatus, decorateNoBullets = false, false, false, false
	})
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecorate_PrintsResolvedSet(t *testing.T) {
	cfgPath := setup(t)
	doc := writeMarkdown(t, "# Title\n\n---\n\n- item\n")

	out, err := run(t, "decorate", doc, "--config", cfgPath, "--defaults", "--mode", "hidden")
	require.NoError(t, err)

	require.Contains(t, out, `1:0-2 replace widget=hidden "# "`)
	require.Contains(t, out, "widget=rule")
	require.Contains(t, out, "widget=bullet")
}

func TestDecorate_JSONAndFlags(t *testing.T) {
	cfgPath := setup(t)
	doc := writeMarkdown(t, "- [x] done\n* item\n")

	out, err := run(t, "decorate", doc, "--config", cfgPath, "--defaults",
		"--mode", "visible", "--no-bullets", "--json")
	require.NoError(t, err)

	var report presentation.DecorationReportDTO
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, "visible", report.Mode)
	require.NotEmpty(t, report.Decorations)
	for _, d := range report.Decorations {
		require.NotEqual(t, "bullet", d.Widget)
	}
	require.Equal(t, "line-done", report.Decorations[0].Class)
}

func TestDecorate_RejectsUnknownMode(t *testing.T) {
	cfgPath := setup(t)
	doc := writeMarkdown(t, "x")

	_, err := run(t, "decorate", doc, "--config", cfgPath, "--defaults", "--mode", "sometimes")
	require.Error(t, err)
}

func TestSettings_SetShowReset(t *testing.T) {
	cfgPath := setup(t)

	out, err := run(t, "settings", "set", "theme", "dark", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "updated theme")

	out, err = run(t, "settings", "show", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "theme: dark")

	out, err = run(t, "settings", "set", "theme", "dark", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "unchanged")

	_, err = run(t, "settings", "reset", "--config", cfgPath)
	require.NoError(t, err)
	out, err = run(t, "settings", "show", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "theme: "+string(settings.Defaults().Theme))
}

func TestSettings_SetRejectsUnknownKey(t *testing.T) {
	cfgPath := setup(t)

	_, err := run(t, "settings", "set", "fontSize", "12", "--config", cfgPath)
	require.ErrorContains(t, err, "unknown setting")
}

func TestSettings_Keys(t *testing.T) {
	cfgPath := setup(t)

	out, err := run(t, "settings", "keys", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "markdownViewMode\n")
	require.Contains(t, out, "listMarkers.*.color")
}

func TestConfig_SetKeepsFileValid(t *testing.T) {
	cfgPath := setup(t)

	out, err := run(t, "config", "set", "watch.debounce_ms", "500", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "watch.debounce_ms = 500")

	loaded, _, err := config.Load(config.NewViper(), cfgPath)
	require.NoError(t, err)
	require.Equal(t, 500, loaded.Watch.DebounceMs)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Reload open files", "comments survive")
}

func TestConfig_Path(t *testing.T) {
	cfgPath := setup(t)

	out, err := run(t, "config", "path", "--config", cfgPath)
	require.NoError(t, err)
	require.Equal(t, cfgPath+"\n", out)
}
