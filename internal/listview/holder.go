// Package listview holds the list screen's state: the fetched collection and
// the view parameters. Remote operations are returned as tea.Cmds; their
// results come back as messages and are committed with Apply on the event
// loop, so the collection is only ever replaced from one goroutine.
//
// Every mutation is followed by a full re-fetch. The collection is never
// patched locally.
package listview

import (
	"context"
	"fmt"
	"io"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/pipeline"
)

// Store is the item service the holder talks to.
type Store interface {
	List(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, id model.ID, patch model.Item) error
	Delete(ctx context.Context, id model.ID) error
	Create(ctx context.Context, title string) (model.Item, error)
}

// Op names the action behind a CollectionMsg.
type Op string

const (
	OpRefresh   Op = "refresh"
	OpToggle    Op = "toggle"
	OpDeleteAll Op = "delete-all"
	OpCreate    Op = "create"
	OpSave      Op = "save"
	OpRestore   Op = "restore"
)

// CollectionMsg carries the outcome of an operation that ends in a fetch.
// Items is only meaningful when Fetched is true.
type CollectionMsg struct {
	Op      Op
	Items   []model.Item
	Fetched bool
	Err     error
}

// DeletedMsg reports a single delete. It does not carry a collection;
// callers schedule their own refresh.
type DeletedMsg struct {
	ID  model.ID
	Err error
}

const DefaultDeleteConcurrency = 8

// Options tune a Holder.
type Options struct {
	Logger            *log.Logger
	DeleteConcurrency int
	Params            pipeline.Params
}

// Holder is the single owner of the collection and view parameters.
type Holder struct {
	store       Store
	log         *log.Logger
	deleteLimit int

	collection []model.Item
	params     pipeline.Params
	detail     map[model.ID]bool
}

func New(store Store, opts Options) *Holder {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	limit := opts.DeleteConcurrency
	if limit <= 0 {
		limit = DefaultDeleteConcurrency
	}
	return &Holder{
		store:       store,
		log:         logger.WithPrefix("listview"),
		deleteLimit: limit,
		collection:  []model.Item{},
		params:      opts.Params,
		detail:      map[model.ID]bool{},
	}
}

// Collection returns the last successfully fetched collection.
func (h *Holder) Collection() []model.Item { return h.collection }

func (h *Holder) Params() pipeline.Params { return h.params }

// View recomputes the pipeline from the current state.
func (h *Holder) View() pipeline.View {
	return pipeline.Run(h.collection, h.params)
}

func (h *Holder) SetQuery(q string) { h.params.Query = q }

func (h *Holder) ToggleSort() { h.params.Sort = h.params.Sort.Flip() }

func (h *Holder) SetSort(d pipeline.SortDirection) { h.params.Sort = d }

func (h *Holder) SetFilter(f pipeline.CompletionFilter) { h.params.Filter = f }

// ToggleDetail flips the detail flag for id and returns the new value.
// Unseen ids start hidden. Entries are never removed.
func (h *Holder) ToggleDetail(id model.ID) bool {
	h.detail[id] = !h.detail[id]
	return h.detail[id]
}

func (h *Holder) DetailVisible(id model.ID) bool { return h.detail[id] }

// Find looks an item up in the current collection.
func (h *Holder) Find(id model.ID) (model.Item, bool) {
	i := slices.IndexFunc(h.collection, func(it model.Item) bool { return it.ID == id })
	if i < 0 {
		return model.Item{}, false
	}
	return h.collection[i], true
}

// Apply commits a CollectionMsg. The collection is replaced only when the
// fetch succeeded; the returned error is the operation's failure, if any.
func (h *Holder) Apply(msg CollectionMsg) error {
	if msg.Fetched {
		h.collection = msg.Items
	}
	if msg.Err != nil {
		h.log.Error("operation failed", "op", msg.Op, "err", msg.Err)
	}
	return msg.Err
}

// Refresh fetches the full collection.
func (h *Holder) Refresh(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return h.fetchMsg(ctx, OpRefresh, nil)
	}
}

// ToggleDone sends the item with done negated, then re-fetches.
// The two calls run one after the other inside the command.
func (h *Holder) ToggleDone(ctx context.Context, it model.Item) tea.Cmd {
	patch := it.Toggled()
	return func() tea.Msg {
		if err := h.store.Update(ctx, it.ID, patch); err != nil {
			return CollectionMsg{Op: OpToggle, Err: fmt.Errorf("toggle %s: %w", it.ID, err)}
		}
		return h.fetchMsg(ctx, OpToggle, nil)
	}
}

// Save stores an edited item and re-fetches. It is the refresh callback the
// detail pane invokes after an edit.
func (h *Holder) Save(ctx context.Context, it model.Item) tea.Cmd {
	return func() tea.Msg {
		if err := h.store.Update(ctx, it.ID, it); err != nil {
			return CollectionMsg{Op: OpSave, Err: fmt.Errorf("save %s: %w", it.ID, err)}
		}
		return h.fetchMsg(ctx, OpSave, nil)
	}
}

// DeleteOne removes a single item and does not refresh.
func (h *Holder) DeleteOne(ctx context.Context, id model.ID) tea.Cmd {
	return func() tea.Msg {
		err := h.store.Delete(ctx, id)
		if err != nil {
			err = fmt.Errorf("delete %s: %w", id, err)
			h.log.Error("operation failed", "op", "delete", "err", err)
		}
		return DeletedMsg{ID: id, Err: err}
	}
}

// DeleteAll deletes every item in the current collection concurrently,
// waits for all of them to settle, then re-fetches once. The refresh runs
// even when some deletes fail; the first failure is reported.
func (h *Holder) DeleteAll(ctx context.Context) tea.Cmd {
	ids := make([]model.ID, 0, len(h.collection))
	for _, it := range h.collection {
		ids = append(ids, it.ID)
	}
	limit := h.deleteLimit
	return func() tea.Msg {
		var g errgroup.Group
		g.SetLimit(limit)
		for _, id := range ids {
			g.Go(func() error {
				if err := h.store.Delete(ctx, id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				return nil
			})
		}
		return h.fetchMsg(ctx, OpDeleteAll, g.Wait())
	}
}

// Add creates an item with the given title and re-fetches.
func (h *Holder) Add(ctx context.Context, title string) tea.Cmd {
	return func() tea.Msg {
		if _, err := h.store.Create(ctx, title); err != nil {
			return CollectionMsg{Op: OpCreate, Err: fmt.Errorf("create: %w", err)}
		}
		return h.fetchMsg(ctx, OpCreate, nil)
	}
}

// Restore re-creates a deleted item under a new id, carries its done flag
// over with a follow-up update, then re-fetches.
func (h *Holder) Restore(ctx context.Context, it model.Item) tea.Cmd {
	return func() tea.Msg {
		created, err := h.store.Create(ctx, it.Title)
		if err != nil {
			return CollectionMsg{Op: OpRestore, Err: fmt.Errorf("restore: %w", err)}
		}
		if it.Done && created.ID != "" {
			created.Title, created.Done = it.Title, true
			if err := h.store.Update(ctx, created.ID, created); err != nil {
				return h.fetchMsg(ctx, OpRestore, fmt.Errorf("restore %s: %w", created.ID, err))
			}
		}
		return h.fetchMsg(ctx, OpRestore, nil)
	}
}

// fetchMsg lists the store and reverses the result so the most recently
// returned item comes first. opErr is an earlier failure to report with it.
func (h *Holder) fetchMsg(ctx context.Context, op Op, opErr error) CollectionMsg {
	items, err := h.store.List(ctx)
	if err != nil {
		if opErr == nil {
			opErr = fmt.Errorf("refresh: %w", err)
		}
		return CollectionMsg{Op: op, Err: opErr}
	}
	items = slices.Clone(items)
	if items == nil {
		items = []model.Item{}
	}
	slices.Reverse(items)
	h.log.Debug("fetched", "op", op, "count", len(items))
	return CollectionMsg{Op: op, Items: items, Fetched: true, Err: opErr}
}
