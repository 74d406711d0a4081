package core_test

import (
	"os"
	"testing"

	"github.com/josephlewis42/rush/commands"
	"github.com/josephlewis42/rush/core"
)

// TestMain lets the test binary act as the shell when the engine starts a
// subshell.
func TestMain(m *testing.M) {
	if script, ok := core.SubshellScript(); ok {
		slot := core.NewForeground()
		core.StartSignalBridge(slot, nil)
		engine := core.NewEngine(commands.NewRegistry(), slot, nil)
		os.Exit(core.RunSubshellScript(engine, script))
	}

	os.Exit(m.Run())
}
