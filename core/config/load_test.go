package config

import (
	"bytes"
	"io/fs"
	"io/ioutil"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/home/user/.rush"

	require.Nil(t, Initialize(fsys, path))

	contents, err := afero.ReadFile(fsys, path)
	require.Nil(t, err)
	assert.Equal(t, defaultConfigData, contents)

	cfg, err := Read(fsys, path)
	require.Nil(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	t.Run("no overwrite", func(t *testing.T) {
		err := Initialize(fsys, path)
		assert.ErrorIs(t, err, fs.ErrExist)
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file is created", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		var logs bytes.Buffer

		cfg := Load(fsys, "/home/user/.rush", log.New(&logs, "", 0))

		assert.Equal(t, DefaultConfig(), cfg)
		assert.Contains(t, logs.String(), "No config file found")
		exists, err := afero.Exists(fsys, "/home/user/.rush")
		assert.Nil(t, err)
		assert.True(t, exists)
	})

	t.Run("valid file", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		data := []byte(`
prompt:
  ps1: '% '
  ps2: '> '
  ps_quote: "'> "
  ps_dquote: '"> '
  ps_pipe: '|> '
  ps_and: '&&> '
  ps_or: '||> '
history:
  size: 10
  path: /tmp/history
env:
  EDITOR: vi
`)
		require.Nil(t, afero.WriteFile(fsys, "/cfg", data, 0644))

		cfg := Load(fsys, "/cfg", log.New(ioutil.Discard, "", 0))

		assert.Equal(t, "% ", cfg.Prompt.PS1)
		assert.Equal(t, 10, cfg.History.Size)
		assert.Equal(t, "/tmp/history", cfg.History.Path)
		assert.Equal(t, map[string]string{"EDITOR": "vi"}, cfg.Env)
	})

	corrupt := map[string]string{
		"unknown field": "colour: red\n",
		"not yaml":      "prompt: [\n",
		"invalid":       "history:\n  size: -4\n",
	}
	for tn, data := range corrupt {
		t.Run(tn, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.Nil(t, afero.WriteFile(fsys, "/cfg", []byte(data), 0644))
			var logs bytes.Buffer

			cfg := Load(fsys, "/cfg", log.New(&logs, "", 0))

			assert.Equal(t, DefaultConfig(), cfg)
			assert.Contains(t, logs.String(), "Config file is corrupted")

			// The broken file is left for the user to fix.
			contents, err := afero.ReadFile(fsys, "/cfg")
			assert.Nil(t, err)
			assert.Equal(t, data, string(contents))
		})
	}
}
