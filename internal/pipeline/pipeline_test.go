package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoview/internal/model"
)

var base = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func at(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

func ids(items []model.Item) []model.ID {
	out := make([]model.ID, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sample() []model.Item {
	return []model.Item{
		{ID: "c", Title: "Walk dog", UpdatedAt: at(30)},
		{ID: "a", Title: "Buy milk", UpdatedAt: at(10), Done: true},
		{ID: "d", UpdatedAt: at(20)},
		{ID: "b", Title: "Call mom", UpdatedAt: at(20), Done: true},
	}
}

func TestSortAscendingDescending(t *testing.T) {
	items := sample()

	asc := Sort(Ascending)(items)
	assert.Equal(t, []model.ID{"a", "d", "b", "c"}, ids(asc))

	desc := Sort(Descending)(items)
	assert.Equal(t, []model.ID{"c", "d", "b", "a"}, ids(desc))

	// input untouched
	assert.Equal(t, []model.ID{"c", "a", "d", "b"}, ids(items))
}

func TestSortIsStableAcrossDirections(t *testing.T) {
	items := []model.Item{
		{ID: "1", UpdatedAt: at(5)},
		{ID: "2", UpdatedAt: at(5)},
		{ID: "3", UpdatedAt: at(5)},
		{ID: "4", UpdatedAt: at(1)},
	}

	got := Sort(Ascending)(Sort(Descending)(Sort(Ascending)(items)))
	assert.Equal(t, []model.ID{"4", "1", "2", "3"}, ids(got))

	got = Sort(Descending)(items)
	assert.Equal(t, []model.ID{"1", "2", "3", "4"}, ids(got))
}

func TestSearchCaseInsensitive(t *testing.T) {
	items := []model.Item{
		{ID: "1", Title: "Buy milk"},
		{ID: "2", Title: "Walk dog"},
	}
	assert.Equal(t, []model.ID{"1"}, ids(Search("MILK")(items)))
	assert.Equal(t, []model.ID{"1", "2"}, ids(Search("")(items)))
	assert.Empty(t, Search("zebra")(items))
}

func TestSearchTreatsMissingTitleAsEmpty(t *testing.T) {
	items := []model.Item{{ID: "1"}, {ID: "2", Title: "x"}}
	assert.Equal(t, []model.ID{"1", "2"}, ids(Search("")(items)))
	assert.Equal(t, []model.ID{"2"}, ids(Search("X")(items)))
}

func TestCompletionFilter(t *testing.T) {
	items := sample()

	assert.Equal(t, ids(items), ids(Completion(All)(items)))
	assert.Equal(t, []model.ID{"a", "b"}, ids(Completion(OnlyDone)(items)))
	assert.Equal(t, []model.ID{"c", "d"}, ids(Completion(OnlyPending)(items)))
}

func TestCompletionFilterIdempotent(t *testing.T) {
	items := sample()
	for _, f := range []CompletionFilter{All, OnlyPending, OnlyDone} {
		once := Completion(f)(items)
		twice := Completion(f)(once)
		assert.Equal(t, once, twice, f.String())
	}
}

func TestRunSortsThenFilters(t *testing.T) {
	v := Run(sample(), Params{Sort: Descending, Filter: OnlyDone})
	assert.Equal(t, []model.ID{"b", "a"}, ids(v.Items))
	assert.False(t, v.Empty)
}

func TestRunIgnoresSearchByDefault(t *testing.T) {
	items := sample()
	plain := Run(items, Params{})
	searched := Run(items, Params{Query: "no such title"})

	assert.Equal(t, plain.Items, searched.Items)
	assert.Empty(t, searched.Searched)
}

func TestRunApplySearch(t *testing.T) {
	v := Run(sample(), Params{Query: "MILK", ApplySearch: true})
	assert.Equal(t, []model.ID{"a"}, ids(v.Items))

	v = Run(sample(), Params{Query: "nothing", ApplySearch: true})
	assert.True(t, v.Empty)
}

func TestRunSearchedUsesRawCollection(t *testing.T) {
	v := Run(sample(), Params{Query: "a", Sort: Descending})
	// collection order, not sorted order
	assert.Equal(t, []model.ID{"c", "b"}, ids(v.Searched))
}

func TestRunEmpty(t *testing.T) {
	v := Run(nil, Params{})
	assert.True(t, v.Empty)
	assert.Empty(t, v.Items)

	v = Run([]model.Item{{ID: "1", Done: false}}, Params{Filter: OnlyDone})
	assert.True(t, v.Empty)
}

func TestParseFlags(t *testing.T) {
	f, ok := ParseFilter("Done")
	require.True(t, ok)
	assert.Equal(t, OnlyDone, f)

	_, ok = ParseFilter("maybe")
	assert.False(t, ok)

	d, ok := ParseSort("desc")
	require.True(t, ok)
	assert.Equal(t, Descending, d)
	assert.Equal(t, Ascending, d.Flip())

	assert.Equal(t, OnlyPending, All.Next())
	assert.Equal(t, All, OnlyDone.Next())
}
