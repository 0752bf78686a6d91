package picker

import (
	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/inventory"
)

// ComponentItems turns a remote catalog into picker items, grouped by type.
// Components already in inv are listed but disabled.
func ComponentItems(catalog []component.Ref, inv *inventory.Inventory) []Item {
	items := make([]Item, 0, len(catalog))
	for _, ref := range catalog {
		item := Item{
			ID:    ref.String(),
			Label: ref.Name,
			Group: ref.Type.Plural(),
		}
		if inv != nil && inv.Has(ref) {
			item.Disabled = true
			item.Hint = "installed"
		}
		items = append(items, item)
	}
	return items
}
