package events

import (
	"sync"

	"propmedia/pkg/logger"
)

// Bus is the in-process set of post change listeners.
type Bus struct {
	mu        sync.RWMutex
	next      uint64
	listeners map[uint64]Listener
	log       *logger.Logger
}

func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		listeners: make(map[uint64]Listener),
		log:       log,
	}
}

// Subscribe registers l and returns a func that removes it. Calling the
// returned func more than once is a no-op.
func (b *Bus) Subscribe(l Listener) func() {
	b.mu.Lock()
	b.next++
	id := b.next
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to the listeners registered at the time of the call.
// A panicking listener does not stop delivery to the others.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	snapshot := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		snapshot = append(snapshot, l)
	}
	b.mu.RUnlock()

	for _, l := range snapshot {
		b.deliver(l, e)
	}
}

func (b *Bus) deliver(l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.Error("[EVENTS] listener panicked on %s: %v", e.Kind, r)
		}
	}()
	l(e)
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
