package core

import (
	"github.com/josephlewis42/rush/core/ast"
)

const (
	// Stdin is the descriptor input redirects bind by default.
	Stdin = 0
	// Stdout is the descriptor output redirects bind by default.
	Stdout = 1
	// Stderr is the only other descriptor output redirects may bind.
	Stderr = 2
)

// Redirection is a resolved redirect: bind FD to the file at Path.
type Redirection struct {
	FD   int
	Path string
	Op   ast.RedirectOp
}

// Redirects are a command's resolved redirections, split by direction.
type Redirects struct {
	Read  []Redirection
	Write []Redirection
}

// Executable is a fully resolved simple command.
type Executable struct {
	Name      string
	Args      []string
	Redirects Redirects
}

// Argv returns the name followed by the arguments.
func (e *Executable) Argv() []string {
	return append([]string{e.Name}, e.Args...)
}

// ResolveWord converts a word to a plain string. Only literal, escaped and
// single quoted words resolve; everything else needs an expansion the shell
// doesn't implement.
func ResolveWord(w ast.Word) (string, error) {
	switch w := w.(type) {
	case *ast.Literal:
		return w.Value, nil
	case *ast.Escaped:
		return w.Value, nil
	case *ast.SingleQuoted:
		return w.Value, nil
	case *ast.DoubleQuoted:
		return "", unsupported("double quoted strings")
	case *ast.Concat:
		return "", unsupported("concatenated words")
	case *ast.Param:
		return "", unsupported("parameter expansion $%s", w.Name)
	case *ast.Subst:
		switch w.Kind {
		case ast.ArithSubst:
			return "", unsupported("arithmetic expansion")
		case ast.ProcessSubst:
			return "", unsupported("process substitution")
		default:
			return "", unsupported("command substitution")
		}
	case *ast.Star:
		return "", unsupported("glob *")
	case *ast.Question:
		return "", unsupported("glob ?")
	case *ast.SquareOpen:
		return "", unsupported("glob [")
	case *ast.SquareClose:
		return "", unsupported("glob ]")
	case *ast.Tilde:
		return "", unsupported("tilde expansion")
	case *ast.Colon:
		return "", unsupported(":")
	case nil:
		return "", ErrEmptyCommand
	default:
		return "", unsupported("word %T", w)
	}
}

// ResolveRedirect resolves a redirect into the read or write bucket of out.
func ResolveRedirect(r ast.Redirect, out *Redirects) error {
	var bucket *[]Redirection
	fd := Stdin

	switch r.Op {
	case ast.Read, ast.ReadWrite:
		bucket = &out.Read
	case ast.Write, ast.Append:
		bucket = &out.Write
		fd = Stdout
	case ast.Clobber:
		return unsupported("clobber redirect >|")
	case ast.Heredoc:
		return unsupported("here-document")
	case ast.DupRead:
		return unsupported("descriptor duplication <&")
	case ast.DupWrite:
		return unsupported("descriptor duplication >&")
	default:
		return unsupported("redirect %v", r.Op)
	}

	if r.FD != nil {
		fd = *r.FD
	}

	path, err := ResolveWord(r.Target)
	if err != nil {
		return err
	}

	*bucket = append(*bucket, Redirection{FD: fd, Path: path, Op: r.Op})
	return nil
}

// ResolveSimple resolves every word and redirect of cmd. Any failure aborts
// the whole command.
func ResolveSimple(cmd *ast.Simple) (*Executable, error) {
	if len(cmd.Assigns) > 0 {
		return nil, unsupported("environment variable assignment %s=", cmd.Assigns[0].Name)
	}

	var argv []string
	for _, w := range cmd.Words {
		arg, err := ResolveWord(w)
		if err != nil {
			return nil, err
		}
		argv = append(argv, arg)
	}

	var redirects Redirects
	for _, r := range cmd.Redirects {
		if err := ResolveRedirect(r, &redirects); err != nil {
			return nil, err
		}
	}

	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	return &Executable{
		Name:      argv[0],
		Args:      argv[1:],
		Redirects: redirects,
	}, nil
}
