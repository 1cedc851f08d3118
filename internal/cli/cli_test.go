package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/taskview/internal/proc"
)

type harness struct {
	t      *testing.T
	config string
	fake   *proc.Fake
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	content := "backend: embedded\n" +
		"embedded:\n  data_dir: " + filepath.Join(dir, "data") + "\n" +
		"timewarrior:\n  enabled: true\n" +
		"default_report: mine\n" +
		"reports:\n  mine:\n    columns: [description, project]\n    labels: [Desc, Project]\n    filter: status:pending\n"
	require.NoError(t, os.WriteFile(config, []byte(content), 0o644))

	fake := proc.NewFake()
	prev := newRunner
	newRunner = func() proc.Runner { return fake }
	t.Cleanup(func() { newRunner = prev })

	return &harness{t: t, config: config, fake: fake}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	err := run("test", append([]string{"--config", h.config}, args...), &stdout, &stderr)
	return ansi.Strip(stdout.String()), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "taskview %s", strings.Join(args, " "))
	return out
}

type listed struct {
	Report string `json:"report"`
	Count  int    `json:"count"`
	Tasks  []struct {
		UUID    string            `json:"uuid"`
		Tracked bool              `json:"tracked"`
		Values  map[string]string `json:"values"`
	} `json:"tasks"`
}

func (h *harness) list(args ...string) listed {
	h.t.Helper()
	out := h.mustRun(append([]string{"list", "--format", "json"}, args...)...)
	var l listed
	require.NoError(h.t, json.Unmarshal([]byte(out), &l), out)
	return l
}

// ---------------------------------------------------------------------------
// list
// ---------------------------------------------------------------------------

func TestListDefaultReport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "write report", "project:work")
	h.mustRun("add", "buy milk", "project:home")

	l := h.list()
	assert.Equal(t, "mine", l.Report)
	require.Equal(t, 2, l.Count)
	assert.Equal(t, "write report", l.Tasks[0].Values["Desc"])
	assert.Equal(t, "work", l.Tasks[0].Values["Project"])
	assert.False(t, l.Tasks[0].Tracked)
}

func TestListReportAndFilter(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "write report", "project:work")
	h.mustRun("add", "buy milk", "project:home")

	l := h.list("mine", "project:home")
	require.Equal(t, 1, l.Count)
	assert.Equal(t, "buy milk", l.Tasks[0].Values["Desc"])

	l = h.list("--context", "project:work")
	require.Equal(t, 1, l.Count)
	assert.Equal(t, "write report", l.Tasks[0].Values["Desc"])

	// Unknown first words are filter words, not reports.
	l = h.list("+nothing")
	assert.Zero(t, l.Count)
}

func TestListTable(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("list")
	assert.Contains(t, out, "No matches.")

	h.mustRun("add", "write report", "project:work")
	out = h.mustRun("list")
	assert.Contains(t, out, "Desc")
	assert.Contains(t, out, "write report")
	assert.Contains(t, out, "1 task")
}

func TestListCSVToFile(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "write report", "project:work")
	path := filepath.Join(t.TempDir(), "out.csv")
	h.mustRun("list", "--format", "csv", "--output", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Desc,Project"))
	assert.True(t, strings.HasPrefix(lines[1], "write report,work,"))
}

func TestListRejectsBadFlags(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("list", "--format", "xml")
	assert.Error(t, err)
	_, err = h.run("list", "--watch", "--output", "x.json", "--format", "json")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

func TestDoneDeleteModify(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "one")
	h.mustRun("add", "two")
	h.mustRun("add", "three")
	l := h.list()
	require.Equal(t, 3, l.Count)
	one, two, three := l.Tasks[0].UUID, l.Tasks[1].UUID, l.Tasks[2].UUID

	out := h.mustRun("done", one)
	assert.Contains(t, out, "Completed 1 task(s)")

	out = h.mustRun("delete", "--yes", two)
	assert.Contains(t, out, "Deleted 1 task(s)")

	h.mustRun("modify", three, "project:garden")
	l = h.list()
	require.Equal(t, 1, l.Count)
	assert.Equal(t, "garden", l.Tasks[0].Values["Project"])

	info := h.mustRun("info", one)
	assert.Contains(t, info, "completed")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "keep me")
	id := h.list().Tasks[0].UUID

	prev := confirm
	t.Cleanup(func() { confirm = prev })
	var asked string
	confirm = func(title string) (bool, error) {
		asked = title
		return false, nil
	}

	out := h.mustRun("delete", id)
	assert.Equal(t, "Delete 1 task(s)?", asked)
	assert.Contains(t, out, "Nothing deleted")
	assert.Equal(t, 1, h.list().Count)
}

func TestResolveIDsErrors(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "one")

	_, err := h.run("done", "abc")
	assert.ErrorContains(t, err, "invalid task id")

	// Embedded tasks have no working-set ids.
	_, err = h.run("done", "1")
	assert.ErrorContains(t, err, "no pending task with id 1")

	_, err = h.run("info", "9f0c1c55-8a0e-4c53-9d1e-6a6b5c2f0001")
	assert.ErrorContains(t, err, "no task with uuid")
}

func TestAddRequiresDescription(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add")
	assert.Error(t, err)
	_, err = h.run("add", "x", "due:whenever")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// projects, sync, report, tracking
// ---------------------------------------------------------------------------

func TestProjectsAndSync(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a", "project:work")
	h.mustRun("add", "b", "project:work")

	out := h.mustRun("projects")
	assert.Contains(t, out, "work")
	assert.Contains(t, out, "2")

	assert.NotEmpty(t, h.mustRun("projects", "--chart"))
	assert.Contains(t, h.mustRun("sync"), "Synchronized")
}

func TestReportSetAndShow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("report", "set", "short", "columns", "id,description.count")

	out := h.mustRun("report", "show", "short")
	assert.Contains(t, out, "id,description.count")
	assert.Contains(t, out, "ID,Description")

	out = h.mustRun("report", "show", "mine")
	assert.Contains(t, out, "Desc,Project")

	out = h.mustRun("report", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, fmt.Sprintf("%-20s %s", "mine", "config"))
	assert.Contains(t, lines, fmt.Sprintf("%-20s %s", "short", "database"))
	assert.Contains(t, lines, fmt.Sprintf("%-20s %s", "next", "builtin"))

	_, err := h.run("report", "show", "missing")
	assert.Error(t, err)
	_, err = h.run("report", "set", "short", "colour", "red")
	assert.Error(t, err)
}

func TestTrackingWithoutTimewarrior(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("tracking", "check", "9f0c1c55-8a0e-4c53-9d1e-6a6b5c2f0001")
	assert.Contains(t, out, "not tracked")

	out = h.mustRun("tracking", "refresh")
	assert.Contains(t, out, "No tracked tasks.")

	_, err := h.run("tracking", "check", "nope")
	assert.Error(t, err)
}

func TestTrackedRowsMarked(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "focus")
	id := h.list().Tasks[0].UUID

	h.fake.
		On("timew --version", proc.Result{Stdout: []byte("1.7.1\n")}).
		On("timew get dom.active", proc.Result{Stdout: []byte("1\n")}).
		On("timew get dom.active.json", proc.Result{Stdout: []byte(`{"id":1,"tags":["uuid:` + id + `"]}`)})

	l := h.list()
	require.Equal(t, 1, l.Count)
	assert.True(t, l.Tasks[0].Tracked)
	out := h.mustRun("tracking", "check", id)
	assert.Contains(t, out, "tracked")
	assert.NotContains(t, out, "not tracked")
}

func TestTrackingDisabledByUDA(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "focus")
	id := h.list().Tasks[0].UUID

	h.fake.
		On("task _get rc.uda.timewarrior.enabled", proc.Result{Stdout: []byte("false\n")}).
		On("timew --version", proc.Result{Stdout: []byte("1.7.1\n")}).
		On("timew get dom.active", proc.Result{Stdout: []byte("1\n")}).
		On("timew get dom.active.json", proc.Result{Stdout: []byte(`{"id":1,"tags":["uuid:` + id + `"]}`)})

	assert.False(t, h.list().Tasks[0].Tracked)
	assert.Contains(t, h.mustRun("tracking", "check", id), "not tracked")
}

func TestTrackingHookInstallUninstall(t *testing.T) {
	h := newHarness(t)
	data := t.TempDir()
	h.fake.On("task _get rc.data.location", proc.Result{Stdout: []byte(data + "\n")})

	src := filepath.Join(t.TempDir(), "on-modify.timewarrior")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0o644))

	out := h.mustRun("tracking", "hook", "install", "--source", src)
	dest := filepath.Join(data, "hooks", "on-modify.timewarrior")
	assert.Contains(t, out, dest)
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	assert.Contains(t, h.mustRun("tracking", "hook", "uninstall"), "Removed hook")
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, h.mustRun("tracking", "hook", "uninstall"), "No hook installed")
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("config", "show")
	assert.Contains(t, out, "backend: embedded")
	assert.Contains(t, out, "default_report: mine")

	assert.Equal(t, h.config+"\n", h.mustRun("config", "path"))

	_, err := h.run("config", "init")
	assert.ErrorContains(t, err, "already exists")

	fresh := filepath.Join(t.TempDir(), "nested", "config.yaml")
	var stdout bytes.Buffer
	require.NoError(t, run("test", []string{"--config", fresh, "config", "init"}, &stdout, &bytes.Buffer{}))
	data, err := os.ReadFile(fresh)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: shell")
}

func TestBackendOverride(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--backend", "cloud", "list")
	assert.Error(t, err)

	// The shell backend probes the task binary, which the fake does not know.
	_, err = h.run("--backend", "shell", "list")
	assert.Error(t, err)
}
