package core

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsupportedError(t *testing.T) {
	err := unsupported("glob %s", "*")

	assert.Equal(t, "unsupported: glob *", err.Error())
	assert.True(t, IsUnsupported(err))
	assert.True(t, IsUnsupported(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsUnsupported(ErrEmptyPipe))
	assert.False(t, IsUnsupported(nil))
}

func TestIOError(t *testing.T) {
	err := &IOError{Op: "open", Path: "out.txt", Err: fs.ErrPermission}

	assert.Equal(t, "open out.txt: permission denied", err.Error())
	assert.True(t, errors.Is(err, fs.ErrPermission))

	noPath := &IOError{Op: "subshell", Err: fs.ErrNotExist}
	assert.Equal(t, "subshell: file does not exist", noPath.Error())
}

func TestStaticError(t *testing.T) {
	var err error = ErrEmptyPipe

	assert.Equal(t, "invalid empty pipe command", err.Error())
	assert.True(t, errors.Is(err, ErrEmptyPipe))
	assert.False(t, errors.Is(err, ErrSubshellWait))
}
