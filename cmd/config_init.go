package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adk-dev/adk/internal/config"
)

var configInitUser bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .adk.toml",
	Long: `Write a configuration file holding the default settings. By default
it is created as .adk.toml in the project directory; --user writes the
per-user config.toml instead. An existing file is never overwritten.

Example .adk.toml:

  repo = "LukasLeindals/agentic-dev-kit"
  branch = "main"
  target = "claude"
  verbose = false`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitUser, "user", false, "Write the per-user config file instead")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(settings.ProjectDir, config.ProjectConfigFile)
	if configInitUser {
		dir, err := config.UserConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if err := config.DefaultSettings().Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("Created:"), path)
	return nil
}
