package commands

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/rush/core"
)

const (
	EnvHome   = "HOME"
	EnvOldPWD = "OLDPWD"
	EnvPWD    = "PWD"
)

// lookupUser is replaced in tests.
var lookupUser = user.Lookup

// Cd implements the POSIX cd builtin.
func Cd(stdio core.Stdio, argv []string) int {
	cmd := &SimpleCommand{
		Use:   "cd [DIR]",
		Short: "Change the shell working directory. DIR defaults to $HOME, - is $OLDPWD and ~USER is USER's home.",
	}

	return cmd.Run(stdio, argv, func() int {
		args := cmd.Args()
		if len(args) > 1 {
			fmt.Fprintln(stdio.Stderr, "cd: too many arguments")
			return 1
		}

		var dir string
		switch {
		case len(args) == 0 || args[0] == "~":
			home, ok := os.LookupEnv(EnvHome)
			if !ok {
				fmt.Fprintln(stdio.Stderr, "cd: HOME not set")
				return 2
			}
			dir = home

		case args[0] == "-":
			old, ok := os.LookupEnv(EnvOldPWD)
			if !ok {
				fmt.Fprintln(stdio.Stderr, "cd: OLDPWD not set")
				return 3
			}
			dir = old

		case strings.HasPrefix(args[0], "~"):
			name, rest, _ := strings.Cut(args[0][1:], "/")
			home, err := homeDir(name)
			if err != nil {
				fmt.Fprintf(stdio.Stderr, "cd: couldn't find home directory for user %q: %v\n", name, err)
				return 4
			}
			dir = filepath.Join(home, rest)

		default:
			dir = args[0]
		}

		previous, _ := os.Getwd()
		if err := os.Chdir(dir); err != nil {
			fmt.Fprintf(stdio.Stderr, "cd: %v\n", err)
			return 5
		}

		current, _ := os.Getwd()
		os.Setenv(EnvOldPWD, previous)
		os.Setenv(EnvPWD, current)
		return 0
	})
}

// homeDir returns the home directory of the named user, or $HOME if the
// name is empty.
func homeDir(name string) (string, error) {
	if name == "" {
		if home, ok := os.LookupEnv(EnvHome); ok {
			return home, nil
		}
		return "", fmt.Errorf("HOME not set")
	}

	u, err := lookupUser(name)
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

var _ BuiltinFunc = Cd

func init() {
	mustAddBuiltin("cd", Cd)
}
