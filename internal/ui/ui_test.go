package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/pipeline"
)

func plain(t *testing.T) {
	t.Helper()
	SetColorForcing(false, true)
	require.NoError(t, SetTheme("classic"))
	t.Cleanup(func() {
		SetColorForcing(false, false)
		_ = SetTheme("classic")
	})
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
	assert.True(t, strings.HasPrefix(ProgressBar(9, 3, 5), "█████ "))
}

func TestPanelPadsToWidestLine(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	Panel(&buf, []string{"ab", C(fgRed, "abcd")})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "┌──────┐", lines[0])
	assert.Equal(t, "│ ab   │", lines[1])
	assert.Equal(t, "│ abcd │", lines[2])
	assert.Equal(t, "└──────┘", lines[3])
}

func TestSetTheme(t *testing.T) {
	plain(t)
	require.NoError(t, SetTheme("NEON"))
	assert.Equal(t, "◼", Current().BoxChecked)
	assert.Error(t, SetTheme("plaid"))
	assert.Equal(t, "neon", Current().Name)
}

func TestColorDisabled(t *testing.T) {
	plain(t)
	assert.Equal(t, "x", C(fgRed, "x"))
	SetColorForcing(true, false)
	assert.Equal(t, fgRed+"x"+reset, C(fgRed, "x"))
}

func TestListLines(t *testing.T) {
	plain(t)
	collection := []model.Item{
		{ID: "1", Title: "Buy milk", Done: true},
		{ID: "2", Title: ""},
	}
	p := pipeline.Params{}
	v := pipeline.Run(collection, p)

	lines := ListLines(collection, v, p, ListOptions{ShowIDs: true})
	out := strings.Join(lines, "\n")
	assert.Contains(t, lines[0], "✔ 1")
	assert.Contains(t, lines[0], "Total 2")
	assert.Contains(t, out, " 1. ☑ Buy milk  #1")
	assert.Contains(t, out, " 2. ☐ (untitled)  #2")
	assert.Contains(t, out, "sort: oldest first  filter: all")
	assert.NotContains(t, out, EmptyGuide)
}

func TestListLinesEmptyGuide(t *testing.T) {
	plain(t)
	collection := []model.Item{{ID: "1", Title: "pending"}}
	p := pipeline.Params{Filter: pipeline.OnlyDone}
	lines := ListLines(collection, pipeline.Run(collection, p), p, ListOptions{})
	assert.Equal(t, EmptyGuide, lines[len(lines)-1])
}

func TestListLinesGrouped(t *testing.T) {
	plain(t)
	collection := []model.Item{
		{ID: "1", Title: "a", Done: true},
		{ID: "2", Title: "b"},
	}
	p := pipeline.Params{}
	lines := ListLines(collection, pipeline.Run(collection, p), p, ListOptions{Group: true})
	out := strings.Join(lines, "\n")

	pend := strings.Index(out, "Pending")
	done := strings.Index(out, "Done")
	require.True(t, pend >= 0 && done > pend)
	assert.Contains(t, out[pend:done], " 2. ☐ b")
	assert.Contains(t, out[done:], " 1. ☑ a")
}

func TestOKAndFail(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	OK(&buf, "toggled")
	Fail(&buf, "boom")
	Hint(&buf, "try again")
	assert.Equal(t, "✔ toggled\n✖ boom\nHint: try again\n", buf.String())
}
