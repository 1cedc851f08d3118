package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sadopc/taskview/internal/store"
	"github.com/sadopc/taskview/internal/timew"
	"github.com/sadopc/taskview/internal/tui"
)

// watchDir is the directory whose changes mean the task data changed.
func (a *app) watchDir() (string, error) {
	if a.cfg.Backend == "embedded" {
		if a.cfg.Embedded.DataDir != "" {
			return a.cfg.Embedded.DataDir, nil
		}
		return store.DefaultDataDir()
	}
	return filepath.Dir(timew.HooksDir(a.runner, a.cfg.Task.Binary)), nil
}

// watch shows v full screen. The report is reloaded on every change below the
// data directory and once per tracking cache period, so the tracked highlight
// stays current.
func (a *app) watch(ctx context.Context, v view) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	dir, err := a.watchDir()
	if err != nil {
		return err
	}
	// The embedded database directory may not exist before the first write.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	load := func() (tui.Snapshot, error) {
		tbl, err := a.table(v)
		if err != nil {
			return tui.Snapshot{Report: v.report}, err
		}
		return tui.Snapshot{Report: v.report, Table: tbl, Tracked: a.tracked()}, nil
	}
	return tui.Run(ctx, tui.NewApp(load, timew.DefaultTTL, exportDir), dir, a.log.With("watch"))
}
