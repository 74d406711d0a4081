package core

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// ExitStatus is the result of a completed command. A command either exited
// with a numeric code or was terminated by a signal.
type ExitStatus struct {
	code   int
	signal syscall.Signal
}

// ExitCode returns the status of a command that exited with code.
func ExitCode(code int) ExitStatus {
	return ExitStatus{code: code}
}

// Signaled returns the status of a command terminated by sig.
func Signaled(sig syscall.Signal) ExitStatus {
	return ExitStatus{code: -1, signal: sig}
}

var (
	// StatusSuccess is the status of a command that exited with 0.
	StatusSuccess = ExitCode(0)
	// StatusFailure is the status of a command that exited with 1.
	StatusFailure = ExitCode(1)
)

// StatusFromProcessState converts the result of waiting on a process.
func StatusFromProcessState(state *os.ProcessState) ExitStatus {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Signaled(ws.Signal())
	}
	return ExitCode(state.ExitCode())
}

// Success reports whether the command exited with code 0.
func (s ExitStatus) Success() bool {
	return s.signal == 0 && s.code == 0
}

// Code returns the exit code, ok is false if the command was signaled.
func (s ExitStatus) Code() (code int, ok bool) {
	if s.signal != 0 {
		return -1, false
	}
	return s.code, true
}

// Signal returns the signal that terminated the command, ok is false if the
// command exited normally.
func (s ExitStatus) Signal() (sig syscall.Signal, ok bool) {
	return s.signal, s.signal != 0
}

// Negate maps success to exit code 1 and anything else to exit code 0.
func (s ExitStatus) Negate() ExitStatus {
	if s.Success() {
		return StatusFailure
	}
	return StatusSuccess
}

func (s ExitStatus) String() string {
	if s.signal != 0 {
		name := unix.SignalName(s.signal)
		if name == "" {
			name = fmt.Sprintf("signal %d", int(s.signal))
		}
		return "terminated by " + name
	}
	return fmt.Sprintf("exit status %d", s.code)
}
