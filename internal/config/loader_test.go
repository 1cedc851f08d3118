package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "shell", cfg.Backend)
	assert.Equal(t, "task", cfg.Task.Binary)
	assert.Equal(t, 100, cfg.Display.DescriptionWidth)
	assert.True(t, cfg.Display.DurationHumanReadable)
	assert.True(t, cfg.Timewarrior.Enabled)
	assert.Equal(t, "next", cfg.DefaultReport)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Backend, cfg.Backend)
	assert.Equal(t, Default().Display, cfg.Display)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
backend: embedded
embedded:
  data_dir: /tmp/tasks
display:
  description_width: 40
  vague_precise: true
timewarrior:
  enabled: false
context: project:work
reports:
  mine:
    columns: [id, project, description.count]
    labels: [ID, Proj, Desc]
    filter: status:pending +mine
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "embedded", cfg.Backend)
	assert.Equal(t, "/tmp/tasks", cfg.Embedded.DataDir)
	assert.Equal(t, 40, cfg.Display.DescriptionWidth)
	assert.True(t, cfg.Display.VaguePrecise)
	assert.True(t, cfg.Display.DurationHumanReadable, "unset keys keep defaults")
	assert.False(t, cfg.Timewarrior.Enabled)
	assert.Equal(t, "timew", cfg.Timewarrior.Binary)
	assert.Equal(t, "project:work", cfg.Context)

	defs := cfg.ReportDefinitions()
	cols, labels, err := defs.ReportDefinition("mine")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "project", "description.count"}, cols)
	assert.Equal(t, []string{"ID", "Proj", "Desc"}, labels)

	filters := cfg.DefaultFilters()
	assert.Equal(t, "status:pending +mine", filters["mine"])
	assert.Equal(t, "status:pending -WAITING limit:page", filters["next"])

	f := cfg.Formatter()
	assert.Equal(t, 40, f.DescriptionWidth)
	assert.True(t, f.VaguePrecise)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "backend: shell\n")
	t.Setenv("TASKVIEW_BACKEND", "embedded")
	t.Setenv("TASKVIEW_LOG_LEVEL", "debug")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "embedded", cfg.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeFile(t, "backend: cloud\n"))
	assert.ErrorContains(t, err, "backend")

	_, err = Load(writeFile(t, "reports:\n  empty:\n    filter: x\n"))
	assert.ErrorContains(t, err, "reports.empty")

	_, err = Load(writeFile(t, "backend: [unclosed\n"))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Backend = "embedded"
	cfg.Reports = map[string]ReportConfig{"mine": {Columns: []string{"id", "description"}}}
	require.NoError(t, Write(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "embedded", got.Backend)
	assert.Equal(t, []string{"id", "description"}, got.Reports["mine"].Columns)
}
