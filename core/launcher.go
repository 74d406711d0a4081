package core

import (
	"errors"
	"io"
	"log"
	"os"
	"os/exec"

	"github.com/josephlewis42/rush/core/ast"
	"github.com/spf13/afero"
)

// Stdio holds the standard streams of a command.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// OSStdio returns the shell's own standard streams.
func OSStdio() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Launcher starts external programs and waits for them in the foreground.
type Launcher struct {
	// Foreground receives each process while the launcher waits on it.
	Foreground *Foreground
	// Fs is used to open redirect targets and search PATH.
	Fs afero.Fs
	// Logger records starts and exits.
	Logger *log.Logger
}

// NewLauncher creates a launcher on the real filesystem.
func NewLauncher(slot *Foreground, logger *log.Logger) *Launcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Launcher{
		Foreground: slot,
		Fs:         afero.NewOsFs(),
		Logger:     logger,
	}
}

// Launch opens exe's redirect targets, starts the program and blocks until
// it exits. If any target can't be opened the program is never started.
func (l *Launcher) Launch(exe *Executable, stdio Stdio) (ExitStatus, error) {
	bound, files, err := openRedirects(l.Fs, exe.Redirects, stdio)
	if err != nil {
		return ExitStatus{}, err
	}
	defer files.closeAll()

	path, err := LookPath(l.Fs, os.Getenv("PATH"), exe.Name)
	if err != nil {
		return ExitStatus{}, &IOError{Op: "exec", Path: exe.Name, Err: err}
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   exe.Argv(),
		Stdin:  bound.Stdin,
		Stdout: bound.Stdout,
		Stderr: bound.Stderr,
	}

	err = cmd.Start()
	// The child holds its own copies of the descriptors now.
	files.closeStarted()
	if err != nil {
		return ExitStatus{}, &IOError{Op: "exec", Path: exe.Name, Err: err}
	}

	l.Foreground.Set(cmd.Process)
	l.Logger.Printf("started %s (pid %d)", path, cmd.Process.Pid)

	err = cmd.Wait()
	l.Foreground.Clear(cmd.Process)

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		if cmd.ProcessState == nil {
			return ExitStatus{}, &IOError{Op: "wait", Path: exe.Name, Err: err}
		}
		l.Logger.Printf("%s: %v", exe.Name, err)
	}

	status := StatusFromProcessState(cmd.ProcessState)
	l.Logger.Printf("pid %d: %s", cmd.Process.Pid, status)
	return status, nil
}

// openFiles tracks the redirect targets opened for one command.
type openFiles struct {
	started []io.Closer
	all     []io.Closer
}

// closeStarted closes the files the child received as real descriptors.
func (o *openFiles) closeStarted() {
	for _, f := range o.started {
		f.Close()
	}
	o.started = nil
}

// closeAll closes every file that is still open.
func (o *openFiles) closeAll() {
	o.closeStarted()
	for _, f := range o.all {
		f.Close()
	}
	o.all = nil
}

func (o *openFiles) add(f afero.File) {
	if _, ok := f.(*os.File); ok {
		o.started = append(o.started, f)
		return
	}
	o.all = append(o.all, f)
}

const redirectPerm = 0666

func openFlags(r Redirection) int {
	switch r.Op {
	case ast.Append:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ast.ReadWrite:
		return os.O_RDWR | os.O_CREATE
	case ast.Read:
		return os.O_RDONLY
	default:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
}

// openRedirects opens redirect targets and returns stdio with them bound.
// Output may only go to stdout or stderr and input may only come to stdin.
func openRedirects(fsys afero.Fs, r Redirects, stdio Stdio) (Stdio, *openFiles, error) {
	files := &openFiles{}

	for _, w := range r.Write {
		if w.FD != Stdout && w.FD != Stderr {
			return stdio, files, unsupported("redirecting output of file descriptor %d", w.FD)
		}
	}
	for _, rd := range r.Read {
		if rd.FD != Stdin {
			return stdio, files, unsupported("redirecting input of file descriptor %d", rd.FD)
		}
	}

	open := func(target Redirection) (afero.File, error) {
		f, err := fsys.OpenFile(target.Path, openFlags(target), redirectPerm)
		if err != nil {
			files.closeAll()
			return nil, &IOError{Op: "open", Path: target.Path, Err: err}
		}
		files.add(f)
		return f, nil
	}

	for _, w := range r.Write {
		f, err := open(w)
		if err != nil {
			return stdio, files, err
		}
		if w.FD == Stdout {
			stdio.Stdout = f
		} else {
			stdio.Stderr = f
		}
	}

	for _, rd := range r.Read {
		f, err := open(rd)
		if err != nil {
			return stdio, files, err
		}
		stdio.Stdin = f
	}

	return stdio, files, nil
}
