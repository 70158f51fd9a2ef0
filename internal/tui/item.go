package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoview/internal/model"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	item     model.Item
	expanded bool
}

func (i listItem) text() string {
	if i.item.Title == "" {
		return "(untitled)"
	}
	return i.item.Title
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.text() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	text := it.text()
	if it.item.Title == "" {
		text = mutedStyle.Render(text)
	}
	if it.item.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(it.text())
	}
	mark := mutedStyle.Render(markClosed)
	if it.expanded {
		mark = accentStyle.Render(markOpen)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s", prefix, box, mark, text)
}
