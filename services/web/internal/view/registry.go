package view

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrViewNotFound = errors.New("list view not found")
	ErrNotViewOwner = errors.New("list view belongs to another session")
)

// Registry tracks the list views currently mounted, one per open tab.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*ListView
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*ListView)}
}

// Add stores lv under a fresh id.
func (r *Registry) Add(lv *ListView) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.views[id] = lv
	r.mu.Unlock()
	return id
}

// Get returns the view only to the session that mounted it.
func (r *Registry) Get(id, owner string) (*ListView, error) {
	r.mu.RLock()
	lv, ok := r.views[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrViewNotFound
	}
	if lv.Owner() != owner {
		return nil, ErrNotViewOwner
	}
	return lv, nil
}

// Remove unmounts and forgets the view.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	lv, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if ok {
		lv.Unmount()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Close unmounts every view.
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*ListView)
	r.mu.Unlock()
	for _, lv := range views {
		lv.Unmount()
	}
}
