package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPwd(t *testing.T) {
	dir := chdirTemp(t)

	code, stdout, _ := run(Pwd, "pwd")
	assert.Equal(t, 0, code)
	assert.Equal(t, dir+"\n", stdout)

	code, stdout, stderr := run(Pwd, "pwd", "home")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "pwd: too many arguments\n", stderr)
}
