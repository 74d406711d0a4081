package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/josephlewis42/rush/core"
	getopt "github.com/pborman/getopt/v2"
)

// BuiltinFunc is the body of a builtin, it returns the exit code.
type BuiltinFunc func(stdio core.Stdio, argv []string) int

// Main implements core.Builtin.
func (f BuiltinFunc) Main(stdio core.Stdio, argv []string) core.ExitStatus {
	return core.ExitCode(f(stdio, argv))
}

var _ core.Builtin = (BuiltinFunc)(nil)

// allBuiltins holds every builtin by name. It is only written by init
// functions; callers get a copy through NewRegistry.
var allBuiltins = make(map[string]BuiltinFunc)

func mustAddBuiltin(name string, cmd BuiltinFunc) {
	if _, ok := allBuiltins[name]; ok {
		panic(fmt.Sprintf("builtin %q registered twice", name))
	}
	allBuiltins[name] = cmd
}

// NewRegistry creates a registry holding all builtins.
func NewRegistry() *core.Registry {
	builtins := make(map[string]core.Builtin, len(allBuiltins))
	for name, cmd := range allBuiltins {
		builtins[name] = cmd
	}
	return core.NewRegistry(builtins)
}

// ListBuiltins returns the names of all builtins in sorted order.
func ListBuiltins() []string {
	var out []string
	for name := range allBuiltins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// RawArgs skips option parsing so arguments that look like flags are
	// passed through. Only a lone --help or -h is recognized.
	RawArgs bool

	flags *getopt.Set
	args  []string
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// Args returns the arguments left after option parsing.
func (s *SimpleCommand) Args() []string {
	return s.args
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	if s.RawArgs {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was successful call the callback.
func (s *SimpleCommand) Run(stdio core.Stdio, argv []string, callback func() int) int {
	if s.RawArgs {
		if len(argv) == 2 && (argv[1] == "--help" || argv[1] == "-h") {
			s.PrintHelp(stdio.Stdout)
			return 0
		}
		if len(argv) > 0 {
			s.args = argv[1:]
		}
		return callback()
	}

	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if err := opts.Getopt(argv, nil); err != nil {
		fmt.Fprintf(stdio.Stderr, "error: %s\n\n", err)

		s.PrintHelp(stdio.Stdout)
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(stdio.Stdout)
		return 0
	}

	s.args = opts.Args()
	return callback()
}
