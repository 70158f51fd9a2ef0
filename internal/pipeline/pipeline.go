// Package pipeline turns the fetched collection into the sequence the list
// renders. Each step is a Stage so the composition in Run stays visible.
package pipeline

import (
	"slices"
	"strings"

	"github.com/idilsaglam/todoview/internal/model"
)

// SortDirection orders items by UpdatedAt.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "newest first"
	}
	return "oldest first"
}

// Flip returns the other direction.
func (d SortDirection) Flip() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// CompletionFilter selects items by their done flag.
type CompletionFilter int

const (
	All CompletionFilter = iota
	OnlyPending
	OnlyDone
)

func (f CompletionFilter) String() string {
	switch f {
	case OnlyPending:
		return "pending"
	case OnlyDone:
		return "done"
	default:
		return "all"
	}
}

// Next cycles all -> pending -> done -> all.
func (f CompletionFilter) Next() CompletionFilter {
	return (f + 1) % 3
}

// ParseFilter maps a flag value onto a CompletionFilter.
func ParseFilter(s string) (CompletionFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, true
	case "pending", "todo", "open":
		return OnlyPending, true
	case "done", "completed":
		return OnlyDone, true
	}
	return All, false
}

// ParseSort maps a flag value onto a SortDirection.
func ParseSort(s string) (SortDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	}
	return Ascending, false
}

// Stage is one step of the pipeline. Stages never modify their input.
type Stage func([]model.Item) []model.Item

// Sort orders by UpdatedAt. Ties keep their original relative order.
func Sort(dir SortDirection) Stage {
	return func(in []model.Item) []model.Item {
		out := slices.Clone(in)
		slices.SortStableFunc(out, func(a, b model.Item) int {
			if dir == Descending {
				return b.UpdatedAt.Compare(a.UpdatedAt)
			}
			return a.UpdatedAt.Compare(b.UpdatedAt)
		})
		return out
	}
}

// Search keeps items whose title contains query, ignoring case.
// An empty title is matched as the empty string.
func Search(query string) Stage {
	q := strings.ToLower(query)
	return func(in []model.Item) []model.Item {
		out := make([]model.Item, 0, len(in))
		for _, it := range in {
			if strings.Contains(strings.ToLower(it.Title), q) {
				out = append(out, it)
			}
		}
		return out
	}
}

// Completion keeps items matching the filter; All passes everything through.
func Completion(f CompletionFilter) Stage {
	return func(in []model.Item) []model.Item {
		if f == All {
			return slices.Clone(in)
		}
		want := f == OnlyDone
		out := make([]model.Item, 0, len(in))
		for _, it := range in {
			if it.Done == want {
				out = append(out, it)
			}
		}
		return out
	}
}

// Compose applies stages left to right.
func Compose(stages ...Stage) Stage {
	return func(in []model.Item) []model.Item {
		out := in
		for _, s := range stages {
			out = s(out)
		}
		return out
	}
}

// Params are the view parameters held next to the collection.
type Params struct {
	Query  string
	Sort   SortDirection
	Filter CompletionFilter

	// ApplySearch feeds the search stage into the rendered items.
	// Off by default: the search result is computed and reported in
	// View.Searched but the list ignores it.
	ApplySearch bool
}

// View is the derived, render-ready state.
type View struct {
	Items    []model.Item // what the list shows
	Searched []model.Item // search stage output over the raw collection
	Empty    bool
}

// Run derives the view from scratch. Nothing is cached between calls.
func Run(collection []model.Item, p Params) View {
	searched := Search(p.Query)(collection)

	stages := []Stage{Sort(p.Sort)}
	if p.ApplySearch {
		stages = append(stages, Search(p.Query))
	}
	stages = append(stages, Completion(p.Filter))
	items := Compose(stages...)(collection)

	return View{
		Items:    items,
		Searched: searched,
		Empty:    len(items) == 0,
	}
}
