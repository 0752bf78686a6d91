package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/config"
	"github.com/adk-dev/adk/internal/inventory"
)

// completeTargets lists the supported target platforms
func completeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, t := range config.AllTargets() {
		names = append(names, string(t))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeRefTypes offers the "type:" prefixes; names need the network.
func completeRefTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, ":") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var prefixes []string
	for _, t := range component.AllTypes() {
		prefixes = append(prefixes, string(t)+":")
	}
	return prefixes, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeInstalledRefs lists components installed under the target root
func completeInstalledRefs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := loadSettings(cmd, args); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	inv, err := inventory.NewScanner(nil).Scan(cfg.Root())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var refs []string
	for _, item := range inv.AllItems() {
		refs = append(refs, item.Ref.String())
	}
	return refs, cobra.ShellCompDirectiveNoFileComp
}
