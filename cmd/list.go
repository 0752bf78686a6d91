package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/inventory"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list [type]",
	Aliases: []string{"ls"},
	Short:   "List installed components",
	Long: `List the components installed under the target root, optionally
filtered by type. Description and version come from a component's
metadata.yaml when it has one.

Types: tool, skill, agent, command, rule`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"tool", "skill", "agent", "command", "rule"},
	RunE:      runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	typesToShow := component.AllTypes()
	if len(args) > 0 {
		t, err := component.ParseType(args[0])
		if err != nil {
			return err
		}
		typesToShow = []component.Type{t}
	}

	inv, err := inventory.NewScanner(logger).Scan(cfg.Root())
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", cfg.Root(), err)
	}

	out := cmd.OutOrStdout()

	if listJSON {
		type itemJSON struct {
			Ref         string `json:"ref"`
			Path        string `json:"path"`
			Description string `json:"description,omitempty"`
			Version     string `json:"version,omitempty"`
		}

		output := []itemJSON{}
		for _, t := range typesToShow {
			for _, item := range inv.GetItems(t) {
				j := itemJSON{Ref: item.Ref.String(), Path: item.Path}
				if item.Metadata != nil {
					j.Description = item.Metadata.Description
					j.Version = item.Metadata.Version
				}
				output = append(output, j)
			}
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	shown := 0
	for _, t := range typesToShow {
		items := inv.GetItems(t)
		if len(items) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", TitleStyle.Render(t.Plural()))
		for _, item := range items {
			version, desc := "", ""
			if item.Metadata != nil {
				version, desc = item.Metadata.Version, item.Metadata.Description
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", item.Ref.Name, version, SubtitleStyle.Render(desc))
			shown++
		}
	}

	w.Flush()

	if shown == 0 {
		fmt.Fprintf(out, "No components installed in %s\n", cfg.Root())
	}

	return nil
}
