package core_test

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/josephlewis42/rush/commands"
	"github.com/josephlewis42/rush/core"
	"github.com/josephlewis42/rush/core/ast"
	"github.com/josephlewis42/rush/core/shell"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a builtin that records its first argument and exits with the
// code given as its second.
type recorder struct {
	calls []string
}

func (r *recorder) Main(stdio core.Stdio, argv []string) core.ExitStatus {
	r.calls = append(r.calls, argv[1])
	code, _ := strconv.Atoi(argv[2])
	return core.ExitCode(code)
}

type engineFixture struct {
	engine *core.Engine
	record *recorder
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	record := &recorder{}
	builtins := map[string]core.Builtin{"record": record}
	all := commands.NewRegistry()
	for _, name := range all.Names() {
		builtins[name], _ = all.Lookup(name)
	}

	f := &engineFixture{
		engine: core.NewEngine(core.NewRegistry(builtins), core.NewForeground(), nil),
		record: record,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	f.engine.Stdio = core.Stdio{
		Stdin:  strings.NewReader(""),
		Stdout: f.stdout,
		Stderr: f.stderr,
	}
	return f
}

func (f *engineFixture) run(t *testing.T, src string) (core.ExitStatus, error) {
	t.Helper()

	cmds, err := shell.ParseString(src)
	require.Nil(t, err)
	return f.engine.Execute(cmds)
}

func TestExecuteEmpty(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Execute(nil)
	assert.ErrorIs(t, err, core.ErrEmpty)
}

func TestExecuteSequence(t *testing.T) {
	f := newEngineFixture(t)

	status, err := f.run(t, "record a 0; record b 4\nrecord c 2")
	assert.Nil(t, err)
	assert.Equal(t, core.ExitCode(2), status)
	assert.Equal(t, []string{"a", "b", "c"}, f.record.calls)
}

func TestExecuteAndOr(t *testing.T) {
	cases := map[string]struct {
		src       string
		wantCalls []string
		wantCode  int
		wantErr   bool
	}{
		"and runs on success": {
			src:       "record a 0 && record b 5",
			wantCalls: []string{"a", "b"},
			wantCode:  5,
		},
		"and stops on failure": {
			src:       "record a 1 && record b 0",
			wantCalls: []string{"a"},
			wantCode:  1,
		},
		"or stops on success": {
			src:       "record a 0 || record b 0",
			wantCalls: []string{"a"},
			wantCode:  0,
		},
		"or runs on failure": {
			src:       "record a 1 || record b 0",
			wantCalls: []string{"a", "b"},
			wantCode:  0,
		},
		"or recovers from error": {
			src:       "record $x 0 || record b 3",
			wantCalls: []string{"b"},
			wantCode:  3,
		},
		"and stops on error": {
			src:     "record $x 0 && record b 0",
			wantErr: true,
		},
		"failed and ends list": {
			src:       "record a 1 && record b 0 || record c 0",
			wantCalls: []string{"a"},
			wantCode:  1,
		},
		"successful or ends list": {
			src:       "record a 0 || record b 0 && record c 7",
			wantCalls: []string{"a"},
			wantCode:  0,
		},
		"chain continues": {
			src:       "record a 1 || record b 0 && record c 7",
			wantCalls: []string{"a", "b", "c"},
			wantCode:  7,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			f := newEngineFixture(t)

			status, err := f.run(t, tc.src)
			assert.Equal(t, tc.wantCalls, f.record.calls)

			if tc.wantErr {
				assert.True(t, core.IsUnsupported(err), "got %v", err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, core.ExitCode(tc.wantCode), status)
		})
	}
}

func TestExecutePipe(t *testing.T) {
	single := func(negate bool, argv ...string) []ast.Command {
		return []ast.Command{&ast.List{AndOr: ast.AndOrList{
			First: &ast.Pipe{Negate: negate, Commands: []ast.Pipeable{ast.Call(argv...)}},
		}}}
	}

	t.Run("one stage", func(t *testing.T) {
		f := newEngineFixture(t)
		status, err := f.engine.Execute(single(false, "record", "a", "3"))
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(3), status)
	})

	t.Run("negate success", func(t *testing.T) {
		f := newEngineFixture(t)
		status, err := f.run(t, "! record a 0")
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(1), status)
	})

	t.Run("negate failure", func(t *testing.T) {
		f := newEngineFixture(t)
		status, err := f.run(t, "! record a 3")
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(0), status)
	})

	t.Run("negate doesn't hide errors", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.run(t, "! record *")
		assert.True(t, core.IsUnsupported(err))
	})

	t.Run("empty", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Execute([]ast.Command{&ast.List{AndOr: ast.AndOrList{
			First: &ast.Pipe{},
		}}})
		assert.Equal(t, core.ErrEmptyPipe, err)
	})

	t.Run("multiple stages", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.run(t, "record a 0 | record b 0")
		assert.True(t, core.IsUnsupported(err))
		assert.Empty(t, f.record.calls)
	})
}

func TestExecuteUnsupported(t *testing.T) {
	cases := map[string]string{
		"brace":               "{ record a 0; }",
		"while":               "while record a 0; do record b 0; done",
		"until":               "until record a 0; do record b 0; done",
		"if":                  "if record a 0; then record b 0; fi",
		"for":                 "for x in 1 2; do record b 0; done",
		"case":                "case a in a) record b 0;; esac",
		"function":            "f() { record a 0; }",
		"assignment":          "A=1 record a 0",
		"glob":                "record * 0",
		"param":               "record $HOME 0",
		"double quotes":       `record "a" 0`,
		"redirected subshell": "(record a 0) > out",
		"heredoc":             "record a 0 <<EOF\nx\nEOF",
		"dup":                 "record a 0 2>&1",
	}

	for tn, src := range cases {
		t.Run(tn, func(t *testing.T) {
			f := newEngineFixture(t)

			_, err := f.run(t, src)
			assert.True(t, core.IsUnsupported(err), "got %v", err)
			assert.Empty(t, f.record.calls)
		})
	}
}

func TestExecuteBuiltins(t *testing.T) {
	t.Run("basename", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.run(t, "basename /usr/bin")
		assert.Nil(t, err)
		assert.True(t, status.Success())
		assert.Equal(t, "bin\n", f.stdout.String())
	})

	t.Run("preempts programs", func(t *testing.T) {
		f := newEngineFixture(t)
		// Nothing can be found on an empty filesystem.
		f.engine.Launcher.Fs = afero.NewMemMapFs()

		status, err := f.run(t, "pwd")
		assert.Nil(t, err)
		assert.True(t, status.Success())

		wd, _ := os.Getwd()
		assert.Equal(t, wd+"\n", f.stdout.String())
	})

	t.Run("redirected", func(t *testing.T) {
		f := newEngineFixture(t)
		out := filepath.Join(t.TempDir(), "out.txt")

		status, err := f.run(t, "dirname /usr/bin > "+out)
		assert.Nil(t, err)
		assert.True(t, status.Success())
		assert.Empty(t, f.stdout.String())

		got, err := os.ReadFile(out)
		assert.Nil(t, err)
		assert.Equal(t, "/usr\n", string(got))
	})

	t.Run("missing input", func(t *testing.T) {
		f := newEngineFixture(t)
		missing := filepath.Join(t.TempDir(), "missing")

		_, err := f.run(t, "record a 0 < "+missing)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Empty(t, f.record.calls)
	})

	t.Run("unsupported descriptor", func(t *testing.T) {
		f := newEngineFixture(t)
		out := filepath.Join(t.TempDir(), "out.txt")

		_, err := f.run(t, "record a 0 3> "+out)
		assert.True(t, core.IsUnsupported(err))
		assert.Empty(t, f.record.calls)

		_, statErr := os.Stat(out)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestExecutePrograms(t *testing.T) {
	t.Run("exit code", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.run(t, "sh -c 'exit 3'")
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(3), status)
	})

	t.Run("or with programs", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.run(t, "false || true")
		assert.Nil(t, err)
		assert.True(t, status.Success())

		status, err = f.run(t, "true && false")
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(1), status)
	})

	t.Run("redirects", func(t *testing.T) {
		f := newEngineFixture(t)
		dir := t.TempDir()
		in := filepath.Join(dir, "in.txt")
		out := filepath.Join(dir, "out.txt")
		require.Nil(t, os.WriteFile(in, []byte("hello\n"), 0644))
		require.Nil(t, os.WriteFile(out, []byte("previous contents\n"), 0644))

		status, err := f.run(t, fmt.Sprintf("cat < %s > %s", in, out))
		assert.Nil(t, err)
		assert.True(t, status.Success())

		got, err := os.ReadFile(out)
		assert.Nil(t, err)
		assert.Equal(t, "hello\n", string(got))

		status, err = f.run(t, fmt.Sprintf("cat %s >> %s", in, out))
		assert.Nil(t, err)
		assert.True(t, status.Success())

		got, err = os.ReadFile(out)
		assert.Nil(t, err)
		assert.Equal(t, "hello\nhello\n", string(got))
	})

	t.Run("stderr", func(t *testing.T) {
		f := newEngineFixture(t)
		out := filepath.Join(t.TempDir(), "err.txt")

		_, err := f.run(t, "sh -c 'echo out; echo err >&2' 2> "+out)
		assert.Nil(t, err)
		assert.Equal(t, "out\n", f.stdout.String())

		got, err := os.ReadFile(out)
		assert.Nil(t, err)
		assert.Equal(t, "err\n", string(got))
	})

	t.Run("not found", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.run(t, "rush-no-such-program")
		var ioErr *core.IOError
		assert.ErrorAs(t, err, &ioErr)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestExecuteSubshell(t *testing.T) {
	t.Run("isolated", func(t *testing.T) {
		f := newEngineFixture(t)
		before, err := os.Getwd()
		require.Nil(t, err)

		status, err := f.run(t, "(cd / && pwd)")
		assert.Nil(t, err)
		assert.True(t, status.Success())
		assert.Equal(t, "/\n", f.stdout.String())

		after, err := os.Getwd()
		require.Nil(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("exit code", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.run(t, "(exit 7)")
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(7), status)
	})

	t.Run("in a list", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.run(t, "(false) || (basename /usr/bin)")
		assert.Nil(t, err)
		assert.True(t, status.Success())
		assert.Equal(t, "bin\n", f.stdout.String())
	})

	t.Run("nested", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.run(t, "( (exit 4) || exit 9 )")
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(9), status)
	})

	t.Run("exec keeps redirects", func(t *testing.T) {
		f := newEngineFixture(t)
		out := filepath.Join(t.TempDir(), "out.txt")

		status, err := f.run(t, "(exec sh -c 'echo hi' > "+out+")")
		assert.Nil(t, err)
		assert.True(t, status.Success())
		assert.Empty(t, f.stdout.String())

		got, err := os.ReadFile(out)
		assert.Nil(t, err)
		assert.Equal(t, "hi\n", string(got))
	})

	t.Run("child errors", func(t *testing.T) {
		f := newEngineFixture(t)

		status, err := f.run(t, "(basename *)")
		assert.Nil(t, err)
		assert.Equal(t, core.ExitCode(1), status)
		assert.Contains(t, f.stderr.String(), "unsupported")
	})

	t.Run("killed", func(t *testing.T) {
		executor := core.NewSubshellExecutor(nil)
		executor.Path = "/bin/sh"

		// sh reads its script from stdin and ignores the subshell variable.
		_, err := executor.RunSubshell(
			[]ast.Command{ast.SimpleCommand("true")},
			core.Stdio{Stdin: strings.NewReader("kill -KILL $$\n")},
		)
		assert.Equal(t, core.ErrSubshellWait, err)
	})

	t.Run("can't start", func(t *testing.T) {
		executor := core.NewSubshellExecutor(nil)
		executor.Path = filepath.Join(t.TempDir(), "missing")

		_, err := executor.RunSubshell([]ast.Command{ast.SimpleCommand("true")}, core.Stdio{})
		var ioErr *core.IOError
		assert.ErrorAs(t, err, &ioErr)
	})

	t.Run("disabled", func(t *testing.T) {
		f := newEngineFixture(t)
		f.engine.Subshell = nil

		_, err := f.run(t, "(record a 0)")
		assert.True(t, core.IsUnsupported(err))
		assert.Empty(t, f.record.calls)
	})
}
