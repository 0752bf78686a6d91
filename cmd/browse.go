package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/inventory"
	"github.com/adk-dev/adk/internal/picker"
)

var browseAll bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Pick components from the repository interactively",
	Long: `Download the repository once, list every component it offers and
install the ones you select. Components that are already installed are
shown but cannot be selected.

Use --all to install everything that is missing without the picker.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&browseAll, "all", false, "Install every component that is not installed yet")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	batch, err := newInstaller().Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	catalog := batch.Catalog()

	inv, err := inventory.NewScanner(logger).Scan(cfg.Root())
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", cfg.Root(), err)
	}

	out := cmd.OutOrStdout()

	var refs []component.Ref
	if browseAll {
		for _, ref := range catalog {
			if !inv.Has(ref) {
				refs = append(refs, ref)
			}
		}
	} else {
		title := fmt.Sprintf("%s@%s → %s", cfg.Repo, cfg.Branch, cfg.Root())
		selected, err := picker.Run(cmd.Context(), title, picker.ComponentItems(catalog, inv))
		if err != nil {
			return err
		}
		if refs, err = parseRefs(selected); err != nil {
			return err
		}
	}

	if len(refs) == 0 {
		fmt.Fprintln(out, "Nothing to install")
		return nil
	}

	results, err := batch.AddMany(cmd.Context(), refs)
	if err != nil {
		return err
	}
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		printResult(out, res)
	}
	return errors.Join(errs...)
}
