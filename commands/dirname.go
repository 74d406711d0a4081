package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/rush/core"
)

// Dirname implements the POSIX dirname builtin for one or more paths.
func Dirname(stdio core.Stdio, argv []string) int {
	cmd := &SimpleCommand{
		Use:   "dirname PATH...",
		Short: "Print each PATH with its last component removed.",
	}

	return cmd.Run(stdio, argv, func() int {
		args := cmd.Args()
		if len(args) == 0 {
			fmt.Fprintln(stdio.Stderr, "dirname: missing operand")
			return 1
		}

		for _, path := range args {
			parent, ok := parentOf(path)
			if !ok {
				fmt.Fprintf(stdio.Stderr, "dirname: %s has no parent directory\n", path)
				return 1
			}
			fmt.Fprintln(stdio.Stdout, parent)
		}
		return 0
	})
}

// parentOf returns path without its final component. Repeated slashes and
// interior . components are ignored; the root has no parent.
func parentOf(path string) (string, bool) {
	if !strings.Contains(path, "/") {
		return ".", true
	}

	rooted := strings.HasPrefix(path, "/")

	var components []string
	for i, part := range strings.Split(path, "/") {
		switch {
		case part == "":
		case part == "." && (i > 0 || rooted):
		default:
			components = append(components, part)
		}
	}

	if len(components) == 0 {
		return "", false
	}

	parent := strings.Join(components[:len(components)-1], "/")
	switch {
	case rooted:
		return "/" + parent, true
	case parent == "":
		return ".", true
	default:
		return parent, true
	}
}

var _ BuiltinFunc = Dirname

func init() {
	mustAddBuiltin("dirname", Dirname)
}
