package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/pipeline"
)

// EmptyGuide is shown instead of the list when nothing would be rendered.
const EmptyGuide = "Nothing here yet. Add a to-do with `todo add \"Buy milk\"`."

const maxTitle = 72

// ListOptions tune the printed list.
type ListOptions struct {
	Group   bool // split into Pending / Done sections
	ShowIDs bool
}

// Stats counts done and pending items.
func Stats(items []model.Item) (done, pending int) {
	for _, it := range items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// ListLines renders the header, progress bar and rendered items.
// Counts cover the whole collection; the rows are the view.
func ListLines(collection []model.Item, v pipeline.View, p pipeline.Params, opt ListOptions) []string {
	t := Current()
	d, pn := Stats(collection)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "Todos"),
		C(t.Success, t.SymDone), d,
		C(t.Pending, t.SymUnchecked), pn,
		C(t.Accent, "Total"), len(collection),
	)

	lines := []string{
		header,
		C(t.Muted, ProgressBar(d, d+pn, 28)),
		C(t.Muted, fmt.Sprintf("sort: %s  filter: %s", p.Sort, p.Filter)),
		"",
	}
	switch {
	case v.Empty:
		lines = append(lines, C(t.Muted, EmptyGuide))
	case opt.Group:
		lines = append(lines, groupLines(v.Items, opt)...)
	default:
		lines = append(lines, flatLines(v.Items, 1, opt)...)
	}
	return lines
}

func flatLines(items []model.Item, first int, opt ListOptions) []string {
	t := Current()
	out := make([]string, 0, len(items))
	for i, it := range items {
		idx := fmt.Sprintf("%2d.", first+i)
		box, color := t.BoxUnchecked, t.Muted
		if it.Done {
			box, color = t.BoxChecked, t.Success
		}
		title := it.Title
		if title == "" {
			title = C(t.Muted, "(untitled)")
		} else {
			title = runewidth.Truncate(title, maxTitle, "...")
		}
		line := fmt.Sprintf("%s %s %s", C(dim, idx), C(color, box), title)
		if opt.ShowIDs {
			line += "  " + C(t.Muted, it.ID.Short())
		}
		out = append(out, line)
	}
	return out
}

// groupLines keeps the view's numbering so indexes match the flat listing.
func groupLines(items []model.Item, opt ListOptions) []string {
	t := Current()
	var pend, done []string
	for i, it := range items {
		line := flatLines([]model.Item{it}, i+1, opt)[0]
		if it.Done {
			done = append(done, line)
		} else {
			pend = append(pend, line)
		}
	}
	section := func(name string, rows []string) []string {
		out := []string{C(t.Accent, name)}
		if len(rows) == 0 {
			return append(out, C(t.Muted, "(none)"))
		}
		return append(out, rows...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
