package cmd

import (
	"io"
	"log"
	"os"

	"github.com/josephlewis42/rush/commands"
	"github.com/josephlewis42/rush/core"
	"github.com/josephlewis42/rush/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	script  string
	debug   bool

	// exitCode is the status the process exits with once the root command
	// returns.
	exitCode int
)

func configPath() (string, error) {
	if cfgPath != "" {
		return cfgPath, nil
	}
	return config.DefaultPath()
}

func loadConfig(logger *log.Logger) *config.Configuration {
	path, err := configPath()
	if err != nil {
		logger.Printf("Cannot determine config path, loading defaults: %v", err)
		return config.DefaultConfig()
	}
	return config.Load(afero.NewOsFs(), path, logger)
}

func debugLogger(w io.Writer) *log.Logger {
	if !debug {
		w = io.Discard
	}
	return log.New(w, "[rush] ", log.LstdFlags|log.Lmicroseconds)
}

// newEngine wires an engine to the builtins and starts forwarding
// interrupts to its foreground programs. Call stop when done.
func newEngine(logger *log.Logger) (engine *core.Engine, stop func()) {
	slot := core.NewForeground()
	bridge := core.StartSignalBridge(slot, logger)
	return core.NewEngine(commands.NewRegistry(), slot, logger), bridge.Stop
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rush",
	Short: "A small POSIX style shell",
	Long: `rush reads commands from the terminal, or from -c, and runs them.

It supports simple commands, && and || lists, ! negation, file redirects
and ( ) subshells.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := debugLogger(cmd.ErrOrStderr())
		cfg := loadConfig(log.New(cmd.ErrOrStderr(), "rush: ", 0))
		if err := cfg.ApplyEnv(os.Setenv); err != nil {
			logger.Printf("config: %v", err)
		}

		engine, stop := newEngine(logger)
		defer stop()

		if cmd.Flags().Changed("command") {
			exitCode = core.RunScript(engine, "-c", script)
			return nil
		}

		shell, err := core.NewShell(engine, cfg, logger)
		if err != nil {
			return err
		}
		defer shell.Close()

		exitCode = shell.Run()
		return nil
	},
}

// runSubshell executes a script handed down by a parent shell.
func runSubshell(script string) int {
	engine, stop := newEngine(debugLogger(os.Stderr))
	defer stop()
	return core.RunSubshellScript(engine, script)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if script, ok := core.SubshellScript(); ok {
		os.Exit(runSubshell(script))
	}

	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitCode)
}

func init() {
	rootCmd.Flags().StringVarP(&script, "command", "c", "", "run the given commands and exit")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config path (default $HOME/.rush)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log execution details to stderr")
}
