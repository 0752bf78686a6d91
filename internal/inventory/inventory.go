// Package inventory reports which components are installed under a target
// root. It reads the filesystem directly; adk keeps no manifest.
package inventory

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/adk-dev/adk/internal/component"
)

// MetadataFile is the optional descriptor shipped inside directory components.
const MetadataFile = "metadata.yaml"

// Inventory is the set of components found under one target root
type Inventory struct {
	Root  string
	Items map[component.Type][]Item
}

// Item is one installed component
type Item struct {
	Ref      component.Ref
	Path     string
	Metadata *Metadata // nil when absent or unreadable
}

// Metadata is the metadata.yaml a tool or skill may carry.
type Metadata struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Version      string   `yaml:"version,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// New creates an empty Inventory for root.
func New(root string) *Inventory {
	return &Inventory{
		Root:  root,
		Items: make(map[component.Type][]Item),
	}
}

// GetItems returns items of a specific type
func (inv *Inventory) GetItems(t component.Type) []Item {
	return inv.Items[t]
}

// Has reports whether ref was found.
func (inv *Inventory) Has(ref component.Ref) bool {
	for _, item := range inv.Items[ref.Type] {
		if item.Ref == ref {
			return true
		}
	}
	return false
}

// AllItems returns all items as a flat slice, ordered by type
func (inv *Inventory) AllItems() []Item {
	var all []Item
	for _, t := range component.AllTypes() {
		all = append(all, inv.Items[t]...)
	}
	return all
}

// ItemCount returns the total number of items
func (inv *Inventory) ItemCount() int {
	count := 0
	for _, items := range inv.Items {
		count += len(items)
	}
	return count
}

// ReadMetadata parses the metadata.yaml in a component directory. It returns
// nil and no error when the file does not exist.
func ReadMetadata(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var md Metadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, err
	}
	return &md, nil
}
