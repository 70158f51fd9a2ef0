package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/idilsaglam/todoview/internal/model"
)

// JSON-backed item store. Single file, human-readable, portable.
// Serves the same list/update/delete/create contract as the remote client
// so the list view can run without a server.

const DefaultFileName = "todos.json"

// ErrNotFound is returned for ids that are not in the file.
var ErrNotFound = errors.New("item not found")

// Store reads and rewrites the whole file on every call.
// The mutex only serializes callers inside this process.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// New returns a store for path; an empty path means todos.json in the
// working directory.
func New(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, DefaultFileName)
	}
	return &Store{path: path, now: time.Now}, nil
}

// Path is the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Update(ctx context.Context, id model.ID, patch model.Item) error {
	return s.mutate(ctx, func(items []model.Item) ([]model.Item, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
		}
		patch.ID = id
		patch.UpdatedAt = s.now().UTC()
		items[i] = patch
		return items, nil
	})
}

func (s *Store) Delete(ctx context.Context, id model.ID) error {
	return s.mutate(ctx, func(items []model.Item) ([]model.Item, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("delete %s: %w", id, ErrNotFound)
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func (s *Store) Create(ctx context.Context, title string) (model.Item, error) {
	it := model.Item{
		ID:        model.ID(ulid.Make().String()),
		Title:     title,
		UpdatedAt: s.now().UTC(),
	}
	err := s.mutate(ctx, func(items []model.Item) ([]model.Item, error) {
		return append(items, it), nil
	})
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (s *Store) mutate(ctx context.Context, fn func([]model.Item) ([]model.Item, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return s.save(items)
}

func indexOf(items []model.Item, id model.ID) int {
	return slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
}

func (s *Store) load() ([]model.Item, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	if assignIDs(items) {
		if err := s.save(items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// assignIDs gives every entry without an id, or with an id already used
// earlier in the file, a fresh one. Reports whether anything changed.
func assignIDs(items []model.Item) bool {
	seen := make(map[model.ID]bool, len(items))
	changed := false
	for i := range items {
		if items[i].ID == "" || seen[items[i].ID] {
			items[i].ID = model.ID(ulid.Make().String())
			changed = true
		}
		seen[items[i].ID] = true
	}
	return changed
}

func (s *Store) save(items []model.Item) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
