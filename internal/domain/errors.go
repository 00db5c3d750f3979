package domain

import "fmt"

// The error taxonomy below is deliberately flat: every failure is
// decided at the point of detection and reported once. Nothing in this
// package (or its consumers) retries.

// PolicyError means the command or path was rejected by the security
// policy. It is never downgraded or retried.
type PolicyError struct {
	Target string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy: %s: %s", e.Target, e.Reason)
}

// ConflictError means a stored item with the same unique name already
// exists.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("item %q already exists", e.Name)
}

// NotFoundError means a requested file does not exist or is not a
// regular file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// SpawnError means the shell process could not be started at all, as
// opposed to a command that ran and exited with stderr output.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// IOError wraps a failed filesystem operation (write, mkdir, read of an
// existing file).
type IOError struct {
	Op   string // read | write | mkdir
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
