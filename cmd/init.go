package cmd

import (
	"fmt"

	"github.com/josephlewis42/rush/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		path, err := configPath()
		if err != nil {
			return err
		}

		if err := config.Initialize(afero.NewOsFs(), path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote configuration to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
