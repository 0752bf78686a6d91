package cmd

import (
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <type:name>...",
	Aliases: []string{"rm"},
	Short:   "Remove installed components",
	Long: `Delete installed components from the target root. Nothing is
downloaded. Directory components are removed recursively.

Examples:
  adk remove tool:file_search
  adk rm agent:code_reviewer --target codex`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeInstalledRefs,
	RunE:              runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
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
		res, err := inst.Remove(cmd.Context(), ref, cfg)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
	}
	return nil
}
