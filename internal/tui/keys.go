package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down      key.Binding
	Toggle        key.Binding
	Detail        key.Binding
	Edit          key.Binding
	Delete        key.Binding
	DeleteAll     key.Binding
	Undo          key.Binding
	Sort          key.Binding
	Search        key.Binding
	Filter        key.Binding
	FilterAll     key.Binding
	FilterPending key.Binding
	FilterDone    key.Binding
	Add           key.Binding
	Refresh       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:        key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
		Detail:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Edit:          key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		DeleteAll:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete all")),
		Undo:          key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo delete")),
		Sort:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:        key.NewBinding(key.WithKeys("f", "tab"), key.WithHelp("f", "cycle filter")),
		FilterAll:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		FilterPending: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "pending")),
		FilterDone:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "done")),
		Add:           key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Detail, k.Add, k.Delete, k.Sort, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Detail, k.Edit},
		{k.Add, k.Delete, k.Undo, k.DeleteAll, k.Refresh},
		{k.Sort, k.Search, k.Filter, k.FilterAll, k.FilterPending, k.FilterDone},
		{k.Help, k.Quit},
	}
}
