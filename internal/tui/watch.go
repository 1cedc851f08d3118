package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/sadopc/taskview/internal/logging"
)

const debounce = 200 * time.Millisecond

// Run shows app full screen until the user quits or ctx is cancelled. Writes
// below dir trigger a reload.
func Run(ctx context.Context, app App, dir string, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Debugf("watching %s", dir)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan struct{})
	defer close(done)
	go forwardChanges(watcher, p, done, logger)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// forwardChanges coalesces bursts of filesystem events into one changedMsg.
func forwardChanges(watcher *fsnotify.Watcher, p *tea.Program, done <-chan struct{}, logger *logging.Logger) {
	var pending <-chan time.Time
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				logger.Debugf("fsnotify event=%s file=%s", event.Op, event.Name)
				pending = time.After(debounce)
			}
		case <-pending:
			pending = nil
			p.Send(changedMsg{})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("fsnotify error: %v", err)
		}
	}
}
