package view

import (
	"context"
	"sync"

	"propmedia/pkg/events"
	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
)

// Source is where a list view reads posts from and deletes them through.
type Source interface {
	List(ctx context.Context, f entity.PostFilter) (entity.PostPage, error)
	Delete(ctx context.Context, id int64) error
}

// Subscriber is the part of the event bus a list view listens on.
type Subscriber interface {
	Subscribe(l events.Listener) func()
}

// ListState is a snapshot of a list view. Items is never shared with the
// view itself.
type ListState struct {
	Filter      entity.PostFilter
	Items       []entity.Post
	Pagination  *entity.Pagination
	Loading     bool
	Err         error
	PendingOnly bool
	Owner       string
}

type ListOption func(*ListView)

// WithPendingOnly re-filters every fetched page to pending posts.
func WithPendingOnly() ListOption {
	return func(lv *ListView) { lv.pendingOnly = true }
}

// WithOwner records the session that mounted the view.
func WithOwner(sessionID string) ListOption {
	return func(lv *ListView) { lv.owner = sessionID }
}

// WithOnChange is called with a fresh snapshot after every state change.
func WithOnChange(fn func(ListState)) ListOption {
	return func(lv *ListView) { lv.onChange = fn }
}

func WithBroadcaster(b events.Broadcaster) ListOption {
	return func(lv *ListView) { lv.broadcaster = b }
}

// ListView keeps one post collection in sync with the server and with post
// change events until it is unmounted.
type ListView struct {
	src         Source
	bus         Subscriber
	broadcaster events.Broadcaster
	log         *logger.Logger
	pendingOnly bool
	owner       string
	onChange    func(ListState)

	// deliver orders onChange calls; each call snapshots the state it sends
	// while holding it, so the last delivery is never older than the state.
	deliver sync.Mutex

	mu          sync.Mutex
	filter      entity.PostFilter
	items       []entity.Post
	pagination  *entity.Pagination
	loading     bool
	err         error
	seq         uint64
	mounted     bool
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

func NewListView(src Source, bus Subscriber, filter entity.PostFilter, log *logger.Logger, opts ...ListOption) *ListView {
	lv := &ListView{
		src:    src,
		bus:    bus,
		log:    log,
		filter: filter,
	}
	for _, opt := range opts {
		opt(lv)
	}
	return lv
}

// Mount subscribes to post changes and performs the first fetch. The view
// stays live until Unmount or until ctx is done.
func (lv *ListView) Mount(ctx context.Context) error {
	lv.mu.Lock()
	if lv.mounted {
		lv.mu.Unlock()
		return nil
	}
	lv.ctx, lv.cancel = context.WithCancel(ctx)
	lv.mounted = true
	lv.mu.Unlock()

	unsubscribe := lv.bus.Subscribe(lv.onEvent)

	lv.mu.Lock()
	if !lv.mounted {
		lv.mu.Unlock()
		unsubscribe()
		return nil
	}
	lv.unsubscribe = unsubscribe
	lv.mu.Unlock()

	return lv.Refresh(lv.ctx)
}

// Unmount stops listening and drops any fetch still in flight.
func (lv *ListView) Unmount() {
	lv.mu.Lock()
	if !lv.mounted {
		lv.mu.Unlock()
		return
	}
	lv.mounted = false
	unsubscribe, cancel := lv.unsubscribe, lv.cancel
	lv.unsubscribe, lv.cancel = nil, nil
	lv.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

// Done is closed when the view is unmounted. It is nil before Mount.
func (lv *ListView) Done() <-chan struct{} {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	if lv.ctx == nil {
		return nil
	}
	return lv.ctx.Done()
}

func (lv *ListView) onEvent(e events.Event) {
	lv.mu.Lock()
	ctx, mounted := lv.ctx, lv.mounted
	lv.mu.Unlock()
	if !mounted {
		return
	}

	lv.log.Debug("[LIST] refetching after %s", e.Kind)
	go func() {
		if err := lv.Refresh(ctx); err != nil && ctx.Err() == nil {
			lv.log.Warn("[LIST] refetch after %s failed: %v", e.Kind, err)
		}
	}()
}

// Refresh fetches the current filter. Only the newest fetch may update the
// state, and nothing is applied after Unmount.
func (lv *ListView) Refresh(ctx context.Context) error {
	lv.mu.Lock()
	lv.seq++
	seq := lv.seq
	filter := lv.filter
	lv.loading = true
	lv.mu.Unlock()
	lv.notify()

	page, err := lv.src.List(ctx, filter)

	lv.mu.Lock()
	if seq != lv.seq || !lv.mounted || ctx.Err() != nil {
		lv.mu.Unlock()
		return err
	}
	lv.loading = false
	lv.err = err
	if err == nil {
		items := page.Items
		if lv.pendingOnly {
			items = entity.PendingOnly(items)
		}
		lv.items = items
		lv.pagination = page.Pagination
	}
	lv.mu.Unlock()
	lv.notify()

	return err
}

// SetFilter refetches only when f differs from the current filter.
func (lv *ListView) SetFilter(ctx context.Context, f entity.PostFilter) error {
	lv.mu.Lock()
	if f == lv.filter {
		lv.mu.Unlock()
		return nil
	}
	lv.filter = f
	lv.mu.Unlock()

	return lv.Refresh(ctx)
}

// Delete removes the post on the server, then from this view, then tells
// every other view.
func (lv *ListView) Delete(ctx context.Context, id int64) error {
	if err := lv.src.Delete(ctx, id); err != nil {
		lv.mu.Lock()
		lv.err = err
		lv.mu.Unlock()
		lv.notify()
		return err
	}

	lv.mu.Lock()
	kept := make([]entity.Post, 0, len(lv.items))
	for _, p := range lv.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	lv.items = kept
	lv.err = nil
	lv.mu.Unlock()
	lv.notify()

	if lv.broadcaster != nil {
		lv.broadcaster.Broadcast(ctx, events.PostDeleted)
	}
	return nil
}

func (lv *ListView) State() ListState {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.stateLocked()
}

func (lv *ListView) Owner() string {
	return lv.owner
}

func (lv *ListView) stateLocked() ListState {
	items := make([]entity.Post, len(lv.items))
	copy(items, lv.items)
	return ListState{
		Filter:      lv.filter,
		Items:       items,
		Pagination:  lv.pagination,
		Loading:     lv.loading,
		Err:         lv.err,
		PendingOnly: lv.pendingOnly,
		Owner:       lv.owner,
	}
}

func (lv *ListView) notify() {
	if lv.onChange == nil {
		return
	}
	lv.deliver.Lock()
	defer lv.deliver.Unlock()

	lv.mu.Lock()
	if !lv.mounted {
		lv.mu.Unlock()
		return
	}
	state := lv.stateLocked()
	lv.mu.Unlock()
	lv.onChange(state)
}
