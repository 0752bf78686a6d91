package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <type:name>...",
	Short: "Add components to the target root",
	Long: `Download components from the repository and install them.

A component that already exists locally is never overwritten; use
'adk update' to refresh it. Several components are fetched with a single
download.

Types: tool, skill, agent, command, rule

Examples:
  adk add tool:file_search
  adk add skill:debugging agent:code_reviewer
  adk add tool:search/semantic --branch dev`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeRefTypes,
	RunE:              runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inst := newInstaller()
	if len(refs) == 1 {
		res, err := inst.Add(cmd.Context(), refs[0], cfg)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	}

	results, err := inst.AddMany(cmd.Context(), refs, cfg)
	if err != nil {
		return err
	}
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		printResult(cmd.OutOrStdout(), res)
	}
	return errors.Join(errs...)
}
