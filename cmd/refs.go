package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/installer"
)

// parseRefs parses every argument before anything runs, so one bad
// reference aborts the whole command.
func parseRefs(args []string) ([]component.Ref, error) {
	refs := make([]component.Ref, 0, len(args))
	for _, arg := range args {
		ref, err := component.Parse(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

var opLabels = map[installer.Op]string{
	installer.OpAdd:    "Added",
	installer.OpUpdate: "Updated",
	installer.OpRemove: "Removed",
	installer.OpSkip:   "Skipped",
}

func printResult(w io.Writer, res installer.Result) {
	label := opLabels[res.Op]
	if label == "" {
		label = strings.ToUpper(string(res.Op[:1])) + string(res.Op[1:])
	}
	arrow := "->"
	if res.Op == installer.OpRemove {
		arrow = "from"
	}
	fmt.Fprintf(w, "%s %s %s %s\n",
		SuccessStyle.Render(label), CmdStyle.Render(res.Ref.String()), arrow, res.Path)
}
