package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <type:name>...",
	Short: "Re-download installed components",
	Long: `Replace installed components with the current content from the
repository. Local edits are discarded. A component must already be
installed; use 'adk add' first.

Examples:
  adk update tool:file_search
  adk update skill:debugging --branch dev`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeInstalledRefs,
	RunE:              runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inst := newInstaller()
	for _, ref := range refs {
		res, err := inst.Update(cmd.Context(), ref, cfg)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
	}
	return nil
}
