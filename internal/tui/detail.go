package tui

import (
	"strings"
	"time"

	"github.com/idilsaglam/todoview/internal/model"
)

// detailView renders the detail pane for one item, or nothing when hidden.
// Edits made from the pane go through the holder's Save, which re-fetches.
func detailView(it model.Item, visible bool, width int) string {
	if !visible {
		return ""
	}
	status := pendingStyle.Render("pending")
	if it.Done {
		status = successStyle.Render("done")
	}
	updated := "unknown"
	if !it.UpdatedAt.IsZero() {
		updated = it.UpdatedAt.Local().Format(time.DateTime)
	}
	title := it.Title
	if title == "" {
		title = mutedStyle.Render("(untitled)")
	}

	rows := []string{
		labelStyle.Render("title   ") + title,
		labelStyle.Render("status  ") + status,
		labelStyle.Render("updated ") + updated,
		labelStyle.Render("id      ") + mutedStyle.Render(it.ID.String()),
		helpStyle.Render("e edit · enter close"),
	}
	st := detailStyle
	if width > 6 {
		st = st.Width(width - 6)
	}
	return st.Render(strings.Join(rows, "\n"))
}
