package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/shlex"
	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/logging"
	"github.com/sadopc/taskview/internal/proc"
	"github.com/sadopc/taskview/internal/report"
	"github.com/sadopc/taskview/internal/task"
)

// DefaultBinary is the Taskwarrior executable looked up on PATH.
const DefaultBinary = "task"

var (
	baselineFlags = []string{
		"rc.json.array=on",
		"rc.confirmation=off",
		"rc.json.depends.array=on",
		"rc.color=off",
		"rc._forcecolor=off",
	}
	mutationFlags = []string{
		"rc.bulk=0",
		"rc.confirmation=off",
		"rc.dependency.confirmation=off",
		"rc.recurrence.confirmation=off",
	}

	// From 3.0 on, export takes a report name and context expressions as
	// plain arguments.
	reportExportVersion = semver.MustParse("3.0.0")
)

// Shell runs one Taskwarrior process per call.
type Shell struct {
	runner  proc.Runner
	binary  string
	version *semver.Version
	log     *logging.Logger
}

// NewShell probes the binary's version. A binary that cannot be run or
// reports an unreadable version is an error.
func NewShell(runner proc.Runner, binary string, logger *logging.Logger) (*Shell, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	s := &Shell{runner: runner, binary: binary, log: logger}

	res, err := runner.Run(binary, "--version")
	if err != nil {
		return nil, fmt.Errorf("probe taskwarrior version: %w", err)
	}
	if !res.Success() {
		return nil, s.processError([]string{"--version"}, res)
	}
	v, err := ParseVersion(string(res.Stdout))
	if err != nil {
		return nil, err
	}
	s.version = v
	logger.Debugf("detected taskwarrior %s", v)
	return s, nil
}

// ParseVersion reads the first line of `task --version`, either
// "task 2.6.2 (2022-10-19)" or a bare "3.4.1".
func ParseVersion(out string) (*semver.Version, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Fields(line)
	raw := ""
	switch {
	case len(fields) >= 2 && fields[0] == "task":
		raw = fields[1]
	case len(fields) >= 1:
		raw = fields[0]
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parse taskwarrior version %q: %w", line, err)
	}
	return v, nil
}

func (s *Shell) Version() *semver.Version {
	return s.version
}

func (s *Shell) modernExport() bool {
	return !s.version.LessThan(reportExportVersion)
}

// ExportArgs returns the arguments Export passes to the binary.
func (s *Shell) ExportArgs(filter, reportName, contextFilter string) []string {
	args := append([]string{}, baselineFlags...)
	if f := strings.TrimSpace(filter); f != "" {
		args = append(args, fmt.Sprintf("rc.report.%s.filter=%s", reportName, f))
	}
	if c := strings.TrimSpace(contextFilter); c != "" {
		if s.modernExport() {
			if words, err := shlex.Split(c); err != nil {
				s.log.Warnf("ignoring context %q: %v", c, err)
			} else {
				args = append(args, words...)
			}
		} else {
			args = append(args, fmt.Sprintf(`'\(%s\)'`, c))
		}
	}
	args = append(args, "export")
	if s.modernExport() {
		args = append(args, reportName)
	}
	return args
}

func (s *Shell) Export(filter, reportName, contextFilter string) ([]task.Record, error) {
	out, err := s.run(s.ExportArgs(filter, reportName, contextFilter))
	if err != nil {
		return nil, err
	}
	return decode(out)
}

func (s *Shell) Add(description string, attrs []string) error {
	args := append(append([]string{}, mutationFlags...), "add", description)
	_, err := s.run(append(args, attrs...))
	return err
}

func (s *Shell) MarkDone(ids []uuid.UUID) error {
	return s.mutate(ids, "done")
}

func (s *Shell) Delete(ids []uuid.UUID) error {
	return s.mutate(ids, "delete")
}

func (s *Shell) Modify(ids []uuid.UUID, attrs []string) error {
	return s.mutate(ids, "modify", attrs...)
}

func (s *Shell) mutate(ids []uuid.UUID, command string, extra ...string) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]string{}, mutationFlags...)
	for _, id := range ids {
		args = append(args, id.String())
	}
	args = append(args, command)
	_, err := s.run(append(args, extra...))
	return err
}

func (s *Shell) Detail(id uuid.UUID) (*task.Record, error) {
	args := append(append([]string{}, baselineFlags...), id.String(), "export")
	out, err := s.run(args)
	if err != nil {
		return nil, err
	}
	records, err := decode(out)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *Shell) Sync() error {
	_, err := s.run([]string{"sync"})
	return err
}

func (s *Shell) Projects() ([]Project, error) {
	args := append(append([]string{}, baselineFlags...), "status:pending", "export")
	out, err := s.run(args)
	if err != nil {
		return nil, err
	}
	records, err := decode(out)
	if err != nil {
		return nil, err
	}
	return countProjects(records), nil
}

// ReportDefinition reads report.<name>.columns and report.<name>.labels from
// the Taskwarrior configuration.
func (s *Shell) ReportDefinition(name string) ([]string, []string, error) {
	columns, err := s.showList(fmt.Sprintf("report.%s.columns", name))
	var perr *ProcessError
	if errors.As(err, &perr) {
		s.log.Debugf("report %s not configured: %v", name, err)
		columns, err = nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("report %q: %w", name, report.ErrUnknownReport)
	}
	labels, err := s.showList(fmt.Sprintf("report.%s.labels", name))
	if err != nil {
		return nil, nil, err
	}
	return columns, labels, nil
}

func (s *Shell) showList(key string) ([]string, error) {
	out, err := s.run([]string{"show", "rc.defaultwidth=0", key})
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		rest, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), key+" ")
		if !ok {
			continue
		}
		return splitList(rest), nil
	}
	return nil, sc.Err()
}

func (s *Shell) Close() error { return nil }

func (s *Shell) run(args []string) ([]byte, error) {
	s.log.Debugf("run %s", proc.CommandLine(s.binary, args))
	res, err := s.runner.Run(s.binary, args...)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, s.processError(args, res)
	}
	return res.Stdout, nil
}

func (s *Shell) processError(args []string, res proc.Result) *ProcessError {
	return &ProcessError{
		Command:    proc.CommandLine(s.binary, args),
		ExitCode:   res.ExitCode,
		Diagnostic: string(res.Stderr),
	}
}

func decode(out []byte) ([]task.Record, error) {
	records, err := task.Import(out)
	if err != nil {
		return nil, &ConversionError{Err: err}
	}
	return records, nil
}

var _ Source = (*Shell)(nil)
