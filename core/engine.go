package core

import (
	"errors"
	"io"
	"log"

	"github.com/josephlewis42/rush/core/ast"
)

// SubshellRunner runs a nested command sequence in isolation from the
// calling shell.
type SubshellRunner interface {
	RunSubshell(cmds []ast.Command, stdio Stdio) (ExitStatus, error)
}

// Engine evaluates parsed commands. It never prints results itself; output
// comes only from the commands it runs.
type Engine struct {
	Builtins *Registry
	Launcher *Launcher
	Subshell SubshellRunner
	Stdio    Stdio
	Logger   *log.Logger
}

// NewEngine creates an engine connected to the process's standard streams.
// Programs it launches are published to slot while they run.
func NewEngine(builtins *Registry, slot *Foreground, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Engine{
		Builtins: builtins,
		Launcher: NewLauncher(slot, logger),
		Subshell: NewSubshellExecutor(logger),
		Stdio:    OSStdio(),
		Logger:   logger,
	}
}

// Execute runs each command in order and returns the result of the last
// one. It returns ErrEmpty if there are no commands.
func (e *Engine) Execute(cmds []ast.Command) (ExitStatus, error) {
	if len(cmds) == 0 {
		return ExitStatus{}, ErrEmpty
	}

	var status ExitStatus
	var err error
	for _, cmd := range cmds {
		status, err = e.executeCommand(cmd)
	}
	return status, err
}

func (e *Engine) executeCommand(cmd ast.Command) (ExitStatus, error) {
	switch cmd := cmd.(type) {
	case *ast.List:
		return e.executeList(cmd.AndOr)
	case *ast.Job:
		e.Logger.Println("running background job in the foreground")
		return e.executeList(cmd.AndOr)
	default:
		return ExitStatus{}, unsupported("command %T", cmd)
	}
}

// executeList evaluates an AND-OR list left to right. An error counts as a
// failure for ||, and stops the list for &&.
func (e *Engine) executeList(list ast.AndOrList) (ExitStatus, error) {
	status, err := e.executeListable(list.First)

	for _, next := range list.Rest {
		switch {
		case next.Op == ast.And && err == nil && status.Success():
		case next.Op == ast.Or && (err != nil || !status.Success()):
			if err != nil {
				e.Logger.Printf("||: continuing after error: %v", err)
			}
		default:
			return status, err
		}

		status, err = e.executeListable(next.Command)
	}

	return status, err
}

func (e *Engine) executeListable(l ast.Listable) (ExitStatus, error) {
	switch l := l.(type) {
	case *ast.Single:
		return e.executePipeable(l.Command)

	case *ast.Pipe:
		switch len(l.Commands) {
		case 0:
			return ExitStatus{}, ErrEmptyPipe
		case 1:
			status, err := e.executePipeable(l.Commands[0])
			if err != nil || !l.Negate {
				return status, err
			}
			return status.Negate(), nil
		default:
			return ExitStatus{}, unsupported("pipelines with %d commands", len(l.Commands))
		}

	default:
		return ExitStatus{}, unsupported("list element %T", l)
	}
}

func (e *Engine) executePipeable(p ast.Pipeable) (ExitStatus, error) {
	switch p := p.(type) {
	case *ast.Simple:
		return e.executeSimple(p)
	case *ast.Compound:
		return e.executeCompound(p)
	case *ast.FunctionDef:
		return ExitStatus{}, unsupported("function definition %s()", p.Name)
	default:
		return ExitStatus{}, unsupported("command %T", p)
	}
}

func (e *Engine) executeCompound(c *ast.Compound) (ExitStatus, error) {
	switch kind := c.Kind.(type) {
	case *ast.Subshell:
		if len(c.IO) > 0 {
			return ExitStatus{}, unsupported("redirecting a subshell")
		}
		if e.Subshell == nil {
			return ExitStatus{}, unsupported("subshells")
		}
		e.Logger.Printf("subshell: %q", ast.Format(kind.Commands))
		return e.Subshell.RunSubshell(kind.Commands, e.Stdio)
	case *ast.Brace:
		return ExitStatus{}, unsupported("brace group")
	case *ast.While:
		return ExitStatus{}, unsupported("while loop")
	case *ast.Until:
		return ExitStatus{}, unsupported("until loop")
	case *ast.If:
		return ExitStatus{}, unsupported("if statement")
	case *ast.For:
		return ExitStatus{}, unsupported("for loop")
	case *ast.Case:
		return ExitStatus{}, unsupported("case statement")
	default:
		return ExitStatus{}, unsupported("compound command %T", kind)
	}
}

// executeSimple runs a builtin if one is registered under the command's
// name and otherwise launches an external program.
func (e *Engine) executeSimple(cmd *ast.Simple) (ExitStatus, error) {
	exe, err := ResolveSimple(cmd)
	if err != nil {
		return ExitStatus{}, err
	}

	status, err := e.runBuiltin(exe)
	if !errors.Is(err, ErrNotBuiltin) {
		return status, err
	}

	e.Logger.Printf("exec: %q", exe.Argv())
	return e.Launcher.Launch(exe, e.Stdio)
}

func (e *Engine) runBuiltin(exe *Executable) (ExitStatus, error) {
	if _, ok := e.Builtins.Lookup(exe.Name); !ok {
		return ExitStatus{}, ErrNotBuiltin
	}

	stdio, files, err := openRedirects(e.Launcher.Fs, exe.Redirects, e.Stdio)
	if err != nil {
		return ExitStatus{}, err
	}
	defer files.closeAll()

	e.Logger.Printf("builtin: %q", exe.Argv())
	return e.Builtins.Run(stdio, exe.Argv())
}
