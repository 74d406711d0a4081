package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned by Execute when there are no commands. Callers
	// usually treat it as a no-op.
	ErrEmpty = errors.New("no commands")

	// ErrNotBuiltin is returned by Registry.Run when the name isn't
	// registered; the caller should fall back to an external program.
	ErrNotBuiltin = errors.New("not a shell builtin")
)

// StaticError is a structural problem with a command that has a fixed
// message.
type StaticError string

func (e StaticError) Error() string {
	return string(e)
}

const (
	ErrEmptyPipe    StaticError = "invalid empty pipe command"
	ErrEmptyCommand StaticError = "empty command"
	ErrSubshellWait StaticError = "failed to execute subshell"
)

// UnsupportedError reports a shell feature that is recognized but not
// implemented.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Feature)
}

func unsupported(format string, args ...interface{}) error {
	return &UnsupportedError{Feature: fmt.Sprintf(format, args...)}
}

// IsUnsupported reports whether any error in err's chain is an
// UnsupportedError.
func IsUnsupported(err error) bool {
	var target *UnsupportedError
	return errors.As(err, &target)
}

// IOError is an operating system failure opening a redirect target or
// starting a program.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
