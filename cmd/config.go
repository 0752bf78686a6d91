package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration adk would use, after merging defaults, the
user config file, the project's .adk.toml, ADK_* environment variables and
command-line flags. The token is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shown := *settings
	if shown.Token != "" {
		shown.Token = maskToken(shown.Token)
	}
	data, err := toml.Marshal(shown)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, SubtitleStyle.Render("# target root: "+cfg.Root()))
	fmt.Fprint(out, string(data))
	return nil
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
