package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/josephlewis42/rush/core"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// execFunc and dup2Func are replaced in tests.
var (
	execFunc = syscall.Exec
	dup2Func = unix.Dup2
)

// Exec implements the POSIX exec builtin, it replaces the shell with a
// program.
func Exec(stdio core.Stdio, argv []string) int {
	cmd := &SimpleCommand{
		Use:     "exec COMMAND [ARG]...",
		Short:   "Replace the shell with COMMAND.",
		RawArgs: true,
	}

	return cmd.Run(stdio, argv, func() int {
		args := cmd.Args()
		if len(args) == 0 {
			return 1
		}

		path, err := core.LookPath(afero.NewOsFs(), os.Getenv("PATH"), args[0])
		if err == nil {
			err = bindStdio(stdio)
		}
		if err == nil {
			err = execFunc(path, args, os.Environ())
		}

		fmt.Fprintf(stdio.Stderr, "exec: %s: %v\n", args[0], err)
		exitFunc(1)
		return 1
	})
}

// bindStdio moves the streams that are open files onto descriptors 0, 1
// and 2 so the new program inherits the builtin's redirects.
func bindStdio(stdio core.Stdio) error {
	streams := []struct {
		stream interface{}
		fd     int
	}{
		{stdio.Stdin, core.Stdin},
		{stdio.Stdout, core.Stdout},
		{stdio.Stderr, core.Stderr},
	}

	for _, s := range streams {
		f, ok := s.stream.(*os.File)
		if !ok || f == nil || int(f.Fd()) == s.fd {
			continue
		}
		if err := dup2Func(int(f.Fd()), s.fd); err != nil {
			return fmt.Errorf("binding descriptor %d: %w", s.fd, err)
		}
	}
	return nil
}

var _ BuiltinFunc = Exec

func init() {
	mustAddBuiltin("exec", Exec)
}
