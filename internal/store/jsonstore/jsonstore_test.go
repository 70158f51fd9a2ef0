package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoview/internal/model"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "todos.json"))
	require.NoError(t, err)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestListMissingFile(t *testing.T) {
	s := newStore(t)
	items, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	milk, err := s.Create(ctx, "Buy milk")
	require.NoError(t, err)
	dog, err := s.Create(ctx, "Walk dog")
	require.NoError(t, err)
	assert.NotEqual(t, milk.ID, dog.ID)
	assert.True(t, dog.UpdatedAt.After(milk.UpdatedAt))

	require.NoError(t, s.Update(ctx, milk.ID, milk.Toggled()))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Done)
	assert.True(t, items[0].UpdatedAt.After(dog.UpdatedAt))

	require.NoError(t, s.Delete(ctx, dog.ID))
	items, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, milk.ID, items[0].ID)
}

func TestUnknownID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, "missing", model.Item{}), ErrNotFound)
}

func TestCorruptFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{"), 0o644))

	_, err := s.List(context.Background())
	assert.ErrorContains(t, err, "json unmarshal")
}

func TestCanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Create(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileWithoutIDs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(),
		[]byte(`[{"title":"a","done":false},{"title":"b","done":false},{"_id":"x","title":"c"},{"_id":"x","title":"d"}]`), 0o644))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	seen := map[model.ID]bool{}
	for _, it := range items {
		assert.NotEmpty(t, it.ID)
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
	assert.Equal(t, model.ID("x"), items[2].ID)

	again, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, again, 4)
	for i := range items {
		assert.Equal(t, items[i].ID, again[i].ID, "assigned ids are written back")
	}

	b := items[1]
	require.NoError(t, s.Update(ctx, b.ID, b.Toggled()))

	items, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", items[0].Title)
	assert.False(t, items[0].Done)
	assert.Equal(t, "b", items[1].Title)
	assert.True(t, items[1].Done)
}
