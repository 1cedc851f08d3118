package timew

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/sadopc/taskview/internal/logging"
	"github.com/sadopc/taskview/internal/proc"
)

const (
	DefaultBinary = "timew"
	HookFile      = "on-modify.timewarrior"
	uuidTagPrefix = "uuid:"
)

type Options struct {
	Enabled bool
	Binary  string
	// HooksDir is the Taskwarrior hooks directory checked by Status.
	HooksDir string
	TTL      time.Duration
	Logger   *logging.Logger
}

// Tracker reports which tasks Timewarrior is currently tracking. Every
// failure degrades to "not tracked".
type Tracker struct {
	runner    proc.Runner
	opts      Options
	available bool
	log       *logging.Logger
	now       func() time.Time

	mu    sync.Mutex
	cache *Cache
	group singleflight.Group
}

// New probes the Timewarrior binary once.
func New(runner proc.Runner, opts Options) *Tracker {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	t := &Tracker{
		runner: runner,
		opts:   opts,
		log:    logger,
		now:    time.Now,
		cache:  NewCache(opts.TTL),
	}
	res, err := runner.Run(opts.Binary, "--version")
	t.available = err == nil && res.Success()
	if !t.available {
		logger.Debugf("%s not available, tracking disabled", opts.Binary)
	}
	return t
}

func (t *Tracker) Available() bool { return t.available }

func (t *Tracker) Enabled() bool { return t.opts.Enabled }

func (t *Tracker) active() bool { return t.available && t.opts.Enabled }

// IsTracked reports whether id is tagged on the active interval, refreshing
// the cache first when it has expired.
func (t *Tracker) IsTracked(id uuid.UUID) bool {
	if !t.active() {
		return false
	}
	t.Refresh()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.Contains(id.String())
}

// Tracked returns the current set of tracked task ids.
func (t *Tracker) Tracked() map[string]bool {
	if !t.active() {
		return map[string]bool{}
	}
	t.Refresh()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.IDs()
}

// Refresh queries Timewarrior only when the cache has expired.
func (t *Tracker) Refresh() {
	t.mu.Lock()
	expired := t.cache.Expired(t.now())
	t.mu.Unlock()
	if expired {
		t.refresh(false)
	}
}

// ForceRefresh queries Timewarrior regardless of the cache age.
func (t *Tracker) ForceRefresh() {
	t.refresh(true)
}

// refresh coalesces concurrent callers into one query. Unforced callers that
// lost the race to a finished refresh find the cache fresh and return.
func (t *Tracker) refresh(force bool) {
	key := "refresh"
	if force {
		key = "force"
	}
	t.group.Do(key, func() (any, error) {
		if !force {
			t.mu.Lock()
			expired := t.cache.Expired(t.now())
			t.mu.Unlock()
			if !expired {
				return nil, nil
			}
		}
		var ids []string
		if t.active() {
			ids = t.query()
		}
		t.mu.Lock()
		t.cache.Replace(ids, t.now())
		t.mu.Unlock()
		return nil, nil
	})
}

func (t *Tracker) query() []string {
	interval, ok := t.activeInterval()
	if !ok {
		return nil
	}
	var ids []string
	for _, tag := range interval.Tags {
		if id, ok := strings.CutPrefix(tag, uuidTagPrefix); ok {
			ids = append(ids, id)
		}
	}
	t.log.Debugf("active interval tracks %d task(s)", len(ids))
	return ids
}

type interval struct {
	ID    int      `json:"id"`
	Start string   `json:"start"`
	Tags  []string `json:"tags"`
}

func (t *Tracker) activeInterval() (interval, bool) {
	out, ok := t.get("dom.active")
	if !ok || out != "1" {
		return interval{}, false
	}
	out, ok = t.get("dom.active.json")
	if !ok {
		return interval{}, false
	}
	var iv interval
	if err := json.Unmarshal([]byte(out), &iv); err != nil {
		t.log.Warnf("decode active interval: %v", err)
		return interval{}, false
	}
	return iv, true
}

func (t *Tracker) get(ref string) (string, bool) {
	res, err := t.runner.Run(t.opts.Binary, "get", ref)
	if err != nil {
		t.log.Warnf("%s get %s: %v", t.opts.Binary, ref, err)
		return "", false
	}
	if !res.Success() {
		return "", false
	}
	return strings.TrimSpace(string(res.Stdout)), true
}

// Active describes the interval Timewarrior is recording.
type Active struct {
	Tags     []string
	Duration string
}

type Status struct {
	Available     bool
	Enabled       bool
	HookInstalled bool
	Active        *Active
}

func (t *Tracker) Status() Status {
	st := Status{
		Available:     t.available,
		Enabled:       t.opts.Enabled,
		HookInstalled: t.HookInstalled(),
	}
	if !t.available {
		return st
	}
	iv, ok := t.activeInterval()
	if !ok {
		return st
	}
	duration, ok := t.get("dom.active.duration")
	if !ok {
		duration = "unknown"
	}
	st.Active = &Active{Tags: iv.Tags, Duration: duration}
	return st
}

func (t *Tracker) HookInstalled() bool {
	if t.opts.HooksDir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(t.opts.HooksDir, HookFile))
	return err == nil && !info.IsDir()
}

// InstallHook copies the hook script at src into the hooks directory and makes
// it executable. An empty src means FindHookSource. It returns the installed
// path.
func (t *Tracker) InstallHook(src string) (string, error) {
	if t.opts.HooksDir == "" {
		return "", errors.New("taskwarrior hooks directory unknown")
	}
	if src == "" {
		found, err := FindHookSource()
		if err != nil {
			return "", err
		}
		src = found
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read hook %s: %w", src, err)
	}
	if err := os.MkdirAll(t.opts.HooksDir, 0o755); err != nil {
		return "", fmt.Errorf("create hooks directory: %w", err)
	}
	dest := filepath.Join(t.opts.HooksDir, HookFile)
	if err := os.WriteFile(dest, data, 0o755); err != nil {
		return "", fmt.Errorf("write hook %s: %w", dest, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(dest, 0o755); err != nil {
		return "", fmt.Errorf("make hook executable: %w", err)
	}
	t.log.Infof("installed timewarrior hook to %s", dest)
	return dest, nil
}

// UninstallHook removes the installed hook. It reports false when there was
// nothing to remove.
func (t *Tracker) UninstallHook() (bool, error) {
	if t.opts.HooksDir == "" {
		return false, nil
	}
	path := filepath.Join(t.opts.HooksDir, HookFile)
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		t.log.Warnf("hook not found: %s", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove hook %s: %w", path, err)
	}
	t.log.Infof("removed timewarrior hook %s", path)
	return true, nil
}

// FindHookSource looks for hooks/on-modify.timewarrior below the working
// directory, then next to the running executable.
func FindHookSource() (string, error) {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, "hooks", HookFile)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("hook source %s not found; pass its path explicitly", HookFile)
}

// UDAEnabled reads rc.uda.timewarrior.enabled from the Taskwarrior config.
// set is false when the value is absent or task cannot be run.
func UDAEnabled(runner proc.Runner, taskBinary string) (enabled, set bool) {
	if taskBinary == "" {
		taskBinary = "task"
	}
	res, err := runner.Run(taskBinary, "_get", "rc.uda.timewarrior.enabled")
	if err != nil || !res.Success() {
		return false, false
	}
	v := strings.TrimSpace(string(res.Stdout))
	if v == "" {
		return false, false
	}
	return strings.EqualFold(v, "true"), true
}

// Instructions lists what is missing for tracking to work.
func (s Status) Instructions() []string {
	var out []string
	if !s.Available {
		out = append(out, "timewarrior not found: install it (https://timewarrior.net) and make sure timew is on PATH")
	}
	if !s.HookInstalled {
		out = append(out, "timewarrior hook not installed: run `taskview tracking hook install`")
	}
	if !s.Enabled {
		out = append(out, "tracking disabled: set timewarrior.enabled: true in the config file")
	}
	return out
}

// HooksDir asks Taskwarrior for its data location and falls back to
// ~/.task/hooks.
func HooksDir(runner proc.Runner, taskBinary string) string {
	if taskBinary == "" {
		taskBinary = "task"
	}
	res, err := runner.Run(taskBinary, "_get", "rc.data.location")
	if err == nil && res.Success() {
		if loc := strings.TrimSpace(string(res.Stdout)); loc != "" {
			return filepath.Join(expandHome(loc), "hooks")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".task", "hooks")
}

func expandHome(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}
