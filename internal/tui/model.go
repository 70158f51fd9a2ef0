// Package tui is the interactive list screen.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todoview/internal/listview"
	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/pipeline"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeAdd
	modeEdit
	modeConfirm
)

// Model is the Bubble Tea model for the list screen. All collection and
// view state lives in the holder; the model only keeps input widgets and
// status text.
type Model struct {
	ctx    context.Context
	holder *listview.Holder
	source string

	keys   keyMap
	list   list.Model
	help   help.Model
	search textinput.Model
	ti     textinput.Model // shared text input model (used for add & edit)

	mode     mode
	editID   model.ID
	undo     *model.Item // last single delete, restorable once
	inputErr string // last add/edit validation error
	err      error  // last failed remote operation
	status   string
	inflight int

	width, height int
}

// New builds the model. source names the store in the header.
func New(ctx context.Context, h *listview.Holder, source string) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.Styles.PaginationStyle = helpStyle
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup"))

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search titles..."
	search.CharLimit = 200

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item title..."
	ti.CharLimit = 200

	m := Model{
		ctx:      ctx,
		holder:   h,
		source:   source,
		keys:     defaultKeyMap(),
		list:     l,
		help:     help.New(),
		search:   search,
		ti:       ti,
		inflight: 1, // Init's refresh
	}
	m.search.SetValue(h.Params().Query)
	m.sync()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, h *listview.Holder, source string) error {
	p := tea.NewProgram(New(ctx, h, source), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init fetches the collection once.
func (m Model) Init() tea.Cmd {
	return m.holder.Refresh(m.ctx)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case listview.CollectionMsg:
		m.finish()
		if err := m.holder.Apply(msg); err != nil {
			m.err = err
			m.status = ""
		} else {
			m.err = nil
			m.status = statusFor(msg.Op)
		}
		m.sync()
		return m, nil

	case listview.DeletedMsg:
		m.finish()
		if msg.Err != nil {
			m.err = msg.Err
			m.undo = nil
		} else {
			m.err = nil
			m.status = "deleted"
		}
		// deleting does not refresh on its own
		cmd := m.start(m.holder.Refresh(m.ctx))
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	it, ok := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		if ok {
			cmd := m.start(m.holder.ToggleDone(m.ctx, it))
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		if ok {
			m.holder.ToggleDetail(it.ID)
			m.sync()
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if !ok {
			return m, nil
		}
		if !m.holder.DetailVisible(it.ID) {
			m.status = "open details (enter) to edit"
			return m, nil
		}
		m.mode = modeEdit
		m.editID = it.ID
		m.inputErr = ""
		m.ti.SetValue(it.Title)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit item title..."
		cmd := m.ti.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		if ok {
			m.status = ""
			m.undo = &it
			cmd := m.start(m.holder.DeleteOne(m.ctx, it.ID))
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Undo):
		if m.undo == nil {
			m.status = "nothing to undo"
			return m, nil
		}
		it := *m.undo
		m.undo = nil
		m.status = ""
		cmd := m.start(m.holder.Restore(m.ctx, it))
		return m, cmd

	case key.Matches(msg, m.keys.DeleteAll):
		if len(m.holder.Collection()) > 0 {
			m.mode = modeConfirm
		}
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		m.holder.ToggleSort()
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Filter):
		m.holder.SetFilter(m.holder.Params().Filter.Next())
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.FilterAll):
		return m.filter(pipeline.All), nil
	case key.Matches(msg, m.keys.FilterPending):
		return m.filter(pipeline.OnlyPending), nil
	case key.Matches(msg, m.keys.FilterDone):
		return m.filter(pipeline.OnlyDone), nil

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.inputErr = ""
		m.ti.SetValue("")
		m.ti.Placeholder = "New item title..."
		cmd := m.ti.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.start(m.holder.Refresh(m.ctx))
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case msg.String() == "esc":
		if m.holder.Params().Query != "" {
			m.search.SetValue("")
			m.holder.SetQuery("")
			m.sync()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = modeList
		m.search.Blur()
		m.search.SetValue("")
		m.holder.SetQuery("")
		m.sync()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.holder.SetQuery(m.search.Value())
	m.sync()
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.ti.Value())
		if title == "" {
			m.inputErr = "Title cannot be empty"
			return m, nil
		}
		var cmd tea.Cmd
		if m.mode == modeAdd {
			cmd = m.holder.Add(m.ctx, title)
		} else {
			it, ok := m.holder.Find(m.editID)
			if !ok {
				m.inputErr = "Item no longer exists"
				return m, nil
			}
			it.Title = title
			cmd = m.holder.Save(m.ctx, it)
		}
		m.closeInput()
		cmd = m.start(cmd)
		return m, cmd
	case "esc":
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	switch msg.String() {
	case "y", "Y":
		m.status = ""
		m.undo = nil
		cmd := m.start(m.holder.DeleteAll(m.ctx))
		return m, cmd
	}
	m.status = "delete all cancelled"
	return m, nil
}

func (m Model) filter(f pipeline.CompletionFilter) Model {
	m.holder.SetFilter(f)
	m.sync()
	return m
}

func (m *Model) closeInput() {
	m.mode = modeList
	m.inputErr = ""
	m.editID = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.inflight++
	return cmd
}

func (m *Model) finish() {
	if m.inflight > 0 {
		m.inflight--
	}
}

func (m Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.item, true
}

// sync rebuilds the list rows from the holder's view, keeping the cursor on
// the same item when it survives.
func (m *Model) sync() {
	var keep model.ID
	if it, ok := m.selected(); ok {
		keep = it.ID
	}

	v := m.holder.View()
	rows := make([]list.Item, 0, len(v.Items))
	at := -1
	for i, it := range v.Items {
		rows = append(rows, listItem{item: it, expanded: m.holder.DetailVisible(it.ID)})
		if keep != "" && it.ID == keep {
			at = i
		}
	}
	m.list.SetItems(rows)
	switch {
	case at >= 0:
		m.list.Select(at)
	case len(rows) > 0 && m.list.Index() >= len(rows):
		m.list.Select(len(rows) - 1)
	}
}

func statusFor(op listview.Op) string {
	switch op {
	case listview.OpToggle:
		return "toggled"
	case listview.OpDeleteAll:
		return "deleted all"
	case listview.OpCreate:
		return "added"
	case listview.OpSave:
		return "saved"
	case listview.OpRestore:
		return "restored"
	}
	return ""
}

func (m Model) View() string {
	w, h := m.width, m.height
	if w == 0 || h == 0 {
		w, h = 80, 24
	}

	header := m.headerView()
	footer := m.footerView(w)

	var body string
	if m.holder.View().Empty {
		body = mutedStyle.Render(emptyGuide)
	} else {
		listHeight := h - 2 - lipgloss.Height(header) - lipgloss.Height(footer)
		if listHeight < 3 {
			listHeight = 3
		}
		m.list.SetSize(w-4, listHeight)
		body = m.list.View()
	}

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (m Model) headerView() string {
	collection := m.holder.Collection()
	var done, pending int
	for _, it := range collection {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	p := m.holder.Params()

	title := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(collection),
	)
	params := mutedStyle.Render(fmt.Sprintf("sort: %s · filter: %s · %s", p.Sort, p.Filter, m.source))

	lines := []string{title, params}
	if m.mode == modeSearch || p.Query != "" {
		lines = append(lines, m.search.View())
	}
	return strings.Join(lines, "\n")
}

func (m Model) footerView(width int) string {
	var parts []string

	for _, it := range m.holder.View().Items {
		if d := detailView(it, m.holder.DetailVisible(it.ID), width); d != "" {
			parts = append(parts, d)
		}
	}

	switch m.mode {
	case modeAdd, modeEdit:
		title := "Add new item"
		if m.mode == modeEdit {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += ": " + errorStyle.Render(m.inputErr)
		}
		parts = append(parts, frameStyle.Render(title+"\n"+m.ti.View()))
	case modeConfirm:
		parts = append(parts, errorStyle.Render(
			fmt.Sprintf("Delete all %d items? (y/N)", len(m.holder.Collection()))))
	}

	switch {
	case m.err != nil:
		parts = append(parts, errorStyle.Render("✖ "+m.err.Error()))
	case m.inflight > 0:
		parts = append(parts, mutedStyle.Render("syncing..."))
	case m.status != "":
		parts = append(parts, successStyle.Render("✔ "+m.status))
	}

	parts = append(parts, helpStyle.Render(m.help.View(m.keys)))
	return strings.Join(parts, "\n")
}
