package source

import (
	"fmt"
	"strings"
)

// ProcessError is a non-zero exit of the task binary. Diagnostic holds its
// stderr unchanged.
type ProcessError struct {
	Command    string
	ExitCode   int
	Diagnostic string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	if d := strings.TrimSpace(e.Diagnostic); d != "" {
		msg += ": " + d
	}
	return msg
}

// ConversionError is a fetched task that could not be turned into a record.
// It aborts the whole export.
type ConversionError struct {
	UUID string
	Err  error
}

func (e *ConversionError) Error() string {
	if e.UUID == "" {
		return fmt.Sprintf("convert tasks: %v", e.Err)
	}
	return fmt.Sprintf("convert task %s: %v", e.UUID, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// StorageError wraps a failure of the embedded database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
