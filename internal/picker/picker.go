// Package picker implements the interactive multi-select used by adk browse.
package picker

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Item represents a selectable item
type Item struct {
	ID       string
	Label    string
	Group    string // heading shown above the first item of each group
	Hint     string // dimmed text after the label
	Selected bool
	Disabled bool // shown but cannot be toggled
}

// Model is the Bubble Tea model for multi-select picker
type Model struct {
	title    string
	items    []Item
	cursor   int
	offset   int
	height   int
	selected map[string]bool
	done     bool
	quitting bool
}

const defaultHeight = 20

// New creates a new picker model
func New(title string, items []Item) Model {
	selected := make(map[string]bool)
	for _, item := range items {
		if item.Selected && !item.Disabled {
			selected[item.ID] = true
		}
	}

	return Model{
		title:    title,
		items:    items,
		height:   defaultHeight,
		selected: selected,
	}
}

// Selected returns the IDs of selected items
func (m Model) Selected() []string {
	var result []string
	for _, item := range m.items {
		if m.selected[item.ID] {
			result = append(result, item.ID)
		}
	}
	return result
}

// IsQuitting returns true if the user quit without confirming
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title, blank line, blank line and help take four rows
		m.height = max(msg.Height-4, 1)
		m.scroll()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}

		case key.Matches(msg, keys.Toggle):
			if len(m.items) > 0 && !m.items[m.cursor].Disabled {
				id := m.items[m.cursor].ID
				m.selected[id] = !m.selected[id]
			}

		case key.Matches(msg, keys.All):
			// Toggle all
			allSelected := true
			for _, item := range m.items {
				if !item.Disabled && !m.selected[item.ID] {
					allSelected = false
					break
				}
			}
			for _, item := range m.items {
				if !item.Disabled {
					m.selected[item.ID] = !allSelected
				}
			}

		case key.Matches(msg, keys.Confirm):
			m.done = true
			return m, tea.Quit
		}
		m.scroll()
	}

	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	groupStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model
func (m Model) View() string {
	if m.done || m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.items))
	for i := m.offset; i < end; i++ {
		item := m.items[i]
		if item.Group != "" && (i == m.offset || m.items[i-1].Group != item.Group) {
			b.WriteString(groupStyle.Render(item.Group))
			b.WriteString("\n")
		}

		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		checked := "[ ]"
		switch {
		case item.Disabled:
			checked = faintStyle.Render("[-]")
		case m.selected[item.ID]:
			checked = selectedStyle.Render("[x]")
		}

		label := item.Label
		if item.Disabled {
			label = faintStyle.Render(label)
		}
		if item.Hint != "" {
			label += " " + faintStyle.Render(item.Hint)
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, checked, label))
	}

	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d selected • space: toggle • a: all/none • enter: confirm • q: quit", len(m.Selected()))))

	return b.String()
}

// KeyMap defines the key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
	),
}

// Run runs the picker and returns selected item IDs. It returns nil when
// the user quits without confirming.
func Run(ctx context.Context, title string, items []Item) ([]string, error) {
	m := New(title, items)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	fm := finalModel.(Model)
	if fm.IsQuitting() {
		return nil, nil
	}

	return fm.Selected(), nil
}
