package core

import (
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is wrapped by LookPath errors when no directory in the search
// path holds an executable with the requested name.
var ErrNotFound = exec.ErrNotFound

// checkExecutable reports whether name is a regular file with an execute
// bit set.
func checkExecutable(fsys afero.Fs, name string) error {
	info, err := fsys.Stat(name)
	switch {
	case err != nil:
		return err
	case info.IsDir(), info.Mode()&0111 == 0:
		return fs.ErrPermission
	default:
		return nil
	}
}

// LookPath finds the program a command name refers to. Names containing a
// slash are used as they are; a failure there is a *fs.PathError. Otherwise
// each directory in searchPath, a colon separated list where an empty entry
// means the working directory, is tried in order and a miss is an
// *exec.Error wrapping ErrNotFound.
func LookPath(fsys afero.Fs, searchPath, name string) (string, error) {
	if strings.ContainsRune(name, '/') {
		if err := checkExecutable(fsys, name); err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				err = pathErr.Err
			}
			return "", &fs.PathError{Op: "lookpath", Path: name, Err: err}
		}
		return name, nil
	}

	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if checkExecutable(fsys, candidate) == nil {
			return candidate, nil
		}
	}
	return "", &exec.Error{Name: name, Err: ErrNotFound}
}
