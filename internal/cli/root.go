package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskview/internal/config"
	"github.com/sadopc/taskview/internal/logging"
	"github.com/sadopc/taskview/internal/proc"
	"github.com/sadopc/taskview/internal/report"
	"github.com/sadopc/taskview/internal/source"
	"github.com/sadopc/taskview/internal/timew"
)

// newRunner is swapped out by tests.
var newRunner = func() proc.Runner { return proc.Exec{} }

type globalFlags struct {
	configPath string
	backend    string
	verbose    bool
}

// app holds what one command invocation needs. It is built lazily so that
// commands like `config` work without a task backend.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	log    *logging.Logger
	runner proc.Runner

	src     source.Source
	tracker *timew.Tracker
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	level := logging.ParseLevel(cfg.Log.Level)
	if a.flags.verbose {
		level = logging.LevelDebug
	}
	a.cfg = cfg
	a.log = logging.New(os.Stderr, level)
	a.runner = newRunner()
	return nil
}

func (a *app) source() (source.Source, error) {
	if a.src != nil {
		return a.src, nil
	}
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	src, err := source.Open(source.Options{
		Backend:        a.cfg.Backend,
		Binary:         a.cfg.Task.Binary,
		Runner:         a.runner,
		DataDir:        a.cfg.Embedded.DataDir,
		DefaultFilters: a.cfg.DefaultFilters(),
		Logger:         a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", a.cfg.Backend, err)
	}
	a.src = src
	return src, nil
}

func (a *app) timew() (*timew.Tracker, error) {
	if a.tracker != nil {
		return a.tracker, nil
	}
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	// Taskwarrior's own UDA can switch tracking off too.
	enabled := a.cfg.Timewarrior.Enabled
	if uda, set := timew.UDAEnabled(a.runner, a.cfg.Task.Binary); set && !uda {
		a.log.Debugf("tracking disabled by rc.uda.timewarrior.enabled")
		enabled = false
	}
	a.tracker = timew.New(a.runner, timew.Options{
		Enabled:  enabled,
		Binary:   a.cfg.Timewarrior.Binary,
		HooksDir: timew.HooksDir(a.runner, a.cfg.Task.Binary),
		Logger:   a.log.With("timew"),
	})
	return a.tracker, nil
}

// resolver looks reports up in the config file first, then in the backend,
// then among the built-in defaults.
func (a *app) resolver() (report.Resolver, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	return report.Resolver{a.cfg.ReportDefinitions(), src, report.Builtin}, nil
}

func (a *app) close() {
	if a.src != nil {
		if err := a.src.Close(); err != nil {
			a.log.Warnf("close backend: %v", err)
		}
	}
}

// newRootCmd builds the full command tree around a.
func newRootCmd(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskview",
		Short: "Browse and edit Taskwarrior tasks as reports",
		Long: `taskview renders Taskwarrior reports as tables.

Tasks come either from the task binary (backend: shell) or from a local
SQLite database (backend: embedded). Rows of tasks that Timewarrior is
currently tracking are highlighted.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskview/config.yaml)")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "override the configured backend (shell or embedded)")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newDoneCmd(a),
		newDeleteCmd(a),
		newModifyCmd(a),
		newInfoCmd(a),
		newSyncCmd(a),
		newProjectsCmd(a),
		newTrackingCmd(a),
		newReportCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the root command
func Execute(version string) error {
	return run(version, os.Args[1:], os.Stdout, os.Stderr)
}

func run(version string, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	root := newRootCmd(a, version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return err
	}
	return nil
}
