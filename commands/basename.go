package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/rush/core"
)

// Basename implements the POSIX basename builtin for one or more paths.
func Basename(stdio core.Stdio, argv []string) int {
	cmd := &SimpleCommand{
		Use:   "basename PATH...",
		Short: "Print the last component of each PATH.",
	}

	return cmd.Run(stdio, argv, func() int {
		args := cmd.Args()
		if len(args) == 0 {
			fmt.Fprintln(stdio.Stderr, "basename: missing operand")
			return 1
		}

		for _, path := range args {
			name, ok := baseOf(path)
			if !ok {
				fmt.Fprintf(stdio.Stderr, "basename: %s has no basename\n", path)
				return 1
			}
			fmt.Fprintln(stdio.Stdout, name)
		}
		return 0
	})
}

// baseOf returns the final component of path. A path without a slash is its
// own base; a path ending in the root or .. has none.
func baseOf(path string) (string, bool) {
	if !strings.Contains(path, "/") {
		return path, true
	}

	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		switch parts[i] {
		case "", ".":
			continue
		case "..":
			return "", false
		default:
			return parts[i], true
		}
	}
	return "", false
}

var _ BuiltinFunc = Basename

func init() {
	mustAddBuiltin("basename", Basename)
}
