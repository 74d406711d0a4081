package core

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeground(t *testing.T) {
	slot := NewForeground()

	_, killed, err := slot.Kill()
	assert.False(t, killed)
	assert.Nil(t, err)

	first := &os.Process{Pid: 1}
	second := &os.Process{Pid: 2}

	slot.Set(first)
	assert.Equal(t, first, slot.Current())

	// Clearing a process that isn't in the slot is a no-op.
	slot.Clear(second)
	assert.Equal(t, first, slot.Current())

	slot.Clear(first)
	assert.Nil(t, slot.Current())
}

func TestForegroundKill(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	require.Nil(t, cmd.Start())

	slot := NewForeground()
	slot.Set(cmd.Process)

	pid, killed, err := slot.Kill()
	assert.True(t, killed)
	assert.Nil(t, err)
	assert.Equal(t, cmd.Process.Pid, pid)

	_ = cmd.Wait()
	assert.False(t, StatusFromProcessState(cmd.ProcessState).Success())
}
