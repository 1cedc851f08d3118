// Package proc runs external command-line tools and captures their output.
package proc

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the captured outcome of one process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner starts one process and waits for it. A non-zero exit is reported
// through Result, not as an error; err is only set when the process could not
// run at all.
type Runner interface {
	Run(name string, args ...string) (Result, error)
}

// Exec runs real processes with os/exec.
type Exec struct{}

func (Exec) Run(name string, args ...string) (Result, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", name, err)
	}
	return res, nil
}

// CommandLine renders a command for diagnostics.
func CommandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
