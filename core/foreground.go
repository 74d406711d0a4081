package core

import (
	"os"
	"sync"
)

// Foreground holds the external process the shell is currently waiting on.
// The launcher fills it after a successful start and empties it once the
// process is reaped; the signal bridge kills whatever it holds.
type Foreground struct {
	mu   sync.Mutex
	proc *os.Process
}

// NewForeground creates an empty slot.
func NewForeground() *Foreground {
	return &Foreground{}
}

// Set records proc as the foreground child.
func (f *Foreground) Set(proc *os.Process) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proc = proc
}

// Clear empties the slot if it still holds proc.
func (f *Foreground) Clear(proc *os.Process) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.proc == proc {
		f.proc = nil
	}
}

// Current returns the foreground child, or nil.
func (f *Foreground) Current() *os.Process {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.proc
}

// Kill terminates the foreground child. It reports the pid it signaled, or
// false if the slot was empty.
func (f *Foreground) Kill() (pid int, killed bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.proc == nil {
		return 0, false, nil
	}
	return f.proc.Pid, true, f.proc.Kill()
}
