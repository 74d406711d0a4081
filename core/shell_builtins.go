package core

import (
	"sort"
)

// Builtin is a command that runs inside the shell process. argv[0] is the
// name the builtin was invoked as.
type Builtin interface {
	Main(stdio Stdio, argv []string) ExitStatus
}

// BuiltinFunc adapts a function to the Builtin interface.
type BuiltinFunc func(stdio Stdio, argv []string) ExitStatus

// Main implements Builtin.
func (f BuiltinFunc) Main(stdio Stdio, argv []string) ExitStatus {
	return f(stdio, argv)
}

var _ Builtin = (BuiltinFunc)(nil)

// Registry maps command names to builtins. It is built once and never
// modified, so it's safe to share.
type Registry struct {
	builtins map[string]Builtin
}

// NewRegistry creates a registry holding a copy of builtins.
func NewRegistry(builtins map[string]Builtin) *Registry {
	r := &Registry{builtins: make(map[string]Builtin, len(builtins))}
	for name, builtin := range builtins {
		r.builtins[name] = builtin
	}
	return r
}

// Lookup finds the builtin registered under the exact name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	if r == nil {
		return nil, false
	}
	builtin, ok := r.builtins[name]
	return builtin, ok
}

// Run executes the builtin named by argv[0]. It returns ErrNotBuiltin if
// there is none.
func (r *Registry) Run(stdio Stdio, argv []string) (ExitStatus, error) {
	if len(argv) == 0 {
		return ExitStatus{}, ErrEmptyCommand
	}
	builtin, ok := r.Lookup(argv[0])
	if !ok {
		return ExitStatus{}, ErrNotBuiltin
	}
	return builtin.Main(stdio, argv), nil
}

// Names lists the registered builtins in sorted order.
func (r *Registry) Names() []string {
	var names []string
	if r == nil {
		return names
	}
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
