package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/josephlewis42/rush/core"
)

// exitFunc is replaced in tests.
var exitFunc = os.Exit

// Exit implements the POSIX exit builtin, it terminates the shell.
func Exit(stdio core.Stdio, argv []string) int {
	cmd := &SimpleCommand{
		Use:     "exit [N]",
		Short:   "Exit the shell with status N, or 0.",
		RawArgs: true,
	}

	return cmd.Run(stdio, argv, func() int {
		args := cmd.Args()
		if len(args) >= 2 {
			fmt.Fprintln(stdio.Stderr, "exit: too many arguments")
			return 1
		}

		code := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(stdio.Stderr, "exit: %s: integer argument required\n", args[0])
				return 2
			}
			code = n
		}

		exitFunc(code)
		return code
	})
}

var _ BuiltinFunc = Exit

func init() {
	mustAddBuiltin("exit", Exit)
}
