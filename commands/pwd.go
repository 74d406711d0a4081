package commands

import (
	"fmt"
	"os"

	"github.com/josephlewis42/rush/core"
)

// Pwd implements the POSIX pwd builtin.
func Pwd(stdio core.Stdio, argv []string) int {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.Run(stdio, argv, func() int {
		if len(cmd.Args()) > 0 {
			fmt.Fprintln(stdio.Stderr, "pwd: too many arguments")
			return 1
		}

		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "pwd: %v\n", err)
			return 1
		}

		fmt.Fprintln(stdio.Stdout, wd)
		return 0
	})
}

var _ BuiltinFunc = Pwd

func init() {
	mustAddBuiltin("pwd", Pwd)
}
