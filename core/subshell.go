package core

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/josephlewis42/rush/core/ast"
	"github.com/josephlewis42/rush/core/shell"
)

// SubshellEnv is the environment variable that carries a subshell's script
// from the parent shell to the child.
const SubshellEnv = "RUSH_SUBSHELL"

// SubshellExecutor runs subshells as separate shell processes. The child
// inherits the working directory, environment and streams, so nothing it
// changes is visible to the parent.
type SubshellExecutor struct {
	// Path is the shell binary to start. It defaults to the running
	// executable.
	Path string
	// Logger records wait anomalies.
	Logger *log.Logger
}

var _ SubshellRunner = (*SubshellExecutor)(nil)

// NewSubshellExecutor creates an executor that re-runs the current binary.
func NewSubshellExecutor(logger *log.Logger) *SubshellExecutor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SubshellExecutor{Logger: logger}
}

// RunSubshell executes cmds in a child shell and waits for it. Only a clean
// exit produces a status; a child that was signaled or stopped, or that
// couldn't be waited on, results in ErrSubshellWait.
func (s *SubshellExecutor) RunSubshell(cmds []ast.Command, stdio Stdio) (ExitStatus, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return ExitStatus{}, &IOError{Op: "subshell", Err: err}
		}
		path = exe
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   []string{path},
		Env:    append(os.Environ(), SubshellEnv+"="+ast.Format(cmds)),
		Stdin:  stdio.Stdin,
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
	}

	// The child runs its own signal bridge, so interrupts sent only to this
	// process are passed down for it to handle.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	if err := cmd.Start(); err != nil {
		return ExitStatus{}, &IOError{Op: "subshell", Path: path, Err: err}
	}

	done := make(chan struct{})
	go s.forwardInterrupts(cmd.Process, interrupts, done)

	err := cmd.Wait()
	close(done)
	state := cmd.ProcessState
	if state == nil {
		s.logf("subshell: wait: %v", err)
		return ExitStatus{}, ErrSubshellWait
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		s.logf("subshell pid %d: %v", state.Pid(), err)
		return ExitStatus{}, ErrSubshellWait
	}

	if !state.Exited() {
		s.logf("subshell pid %d: %s", state.Pid(), StatusFromProcessState(state))
		return ExitStatus{}, ErrSubshellWait
	}

	return ExitCode(state.ExitCode()), nil
}

func (s *SubshellExecutor) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func (s *SubshellExecutor) forwardInterrupts(proc *os.Process, interrupts <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case sig := <-interrupts:
			if err := proc.Signal(sig); err != nil {
				s.logf("subshell pid %d: forwarding %v: %v", proc.Pid, sig, err)
				continue
			}
			s.logf("subshell pid %d: forwarded %v", proc.Pid, sig)
		}
	}
}

// SubshellScript returns the script passed down by a parent shell. ok is
// false unless the process was started as a subshell.
func SubshellScript() (script string, ok bool) {
	return os.LookupEnv(SubshellEnv)
}

// RunSubshellScript is the body of a child shell: it runs the script
// passed down by the parent with engine and returns the process exit code.
func RunSubshellScript(engine *Engine, script string) int {
	// Programs started by the subshell must not mistake themselves for one.
	os.Unsetenv(SubshellEnv)
	return RunScript(engine, "subshell", script)
}

// RunScript parses and executes script and returns the code the shell
// should exit with. Errors are written to the engine's stderr and exit with
// 1, as does a last command that was killed by a signal. A script with no
// commands exits with 0.
func RunScript(engine *Engine, name, script string) int {
	cmds, err := shell.Parse(strings.NewReader(script), name)
	if err != nil {
		fmt.Fprintf(engine.Stdio.Stderr, "rush: %v\n", err)
		return 1
	}

	status, err := engine.Execute(cmds)
	switch {
	case errors.Is(err, ErrEmpty):
		return 0
	case err != nil:
		fmt.Fprintf(engine.Stdio.Stderr, "rush: %v\n", err)
		return 1
	}

	code, ok := status.Code()
	if !ok {
		return 1
	}
	return code
}
