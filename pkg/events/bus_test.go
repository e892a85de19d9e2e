package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"propmedia/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewBus(logger.New())

	var got []Kind
	unsubscribe := bus.Subscribe(func(e Event) { got = append(got, e.Kind) })
	defer unsubscribe()

	bus.Publish(Event{Kind: PostCreated})
	bus.Publish(Event{Kind: PostDeleted})

	assert.Equal(t, []Kind{PostCreated, PostDeleted}, got)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(logger.New())

	calls := 0
	unsubscribe := bus.Subscribe(func(Event) { calls++ })
	assert.Equal(t, 1, bus.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, bus.Len())

	bus.Publish(Event{Kind: PostUpdated})
	assert.Equal(t, 0, calls)
}

func TestBus_LateSubscriberMissesEarlierPublish(t *testing.T) {
	bus := NewBus(logger.New())
	bus.Publish(Event{Kind: PostCreated})

	calls := 0
	defer bus.Subscribe(func(Event) { calls++ })()
	assert.Equal(t, 0, calls)
}

func TestBus_PanickingListenerIsIsolated(t *testing.T) {
	bus := NewBus(logger.New())

	delivered := 0
	defer bus.Subscribe(func(Event) { panic("boom") })()
	defer bus.Subscribe(func(Event) { delivered++ })()

	assert.NotPanics(t, func() { bus.Publish(Event{Kind: PostDeleted}) })
	assert.Equal(t, 1, delivered)
}

func TestBus_ListenerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(logger.New())

	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(Event) { unsubscribe() })

	assert.NotPanics(t, func() { bus.Publish(Event{Kind: PostUpdated}) })
	assert.Equal(t, 0, bus.Len())
}

func TestBus_ConcurrentSubscribePublish(t *testing.T) {
	bus := NewBus(logger.New())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Subscribe(func(Event) {})()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(Event{Kind: PostCreated})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Len())
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, PostCreated.Valid())
	assert.True(t, PostUpdated.Valid())
	assert.True(t, PostDeleted.Valid())
	assert.False(t, Kind("post.liked").Valid())
}

type recordingSink struct {
	name   string
	err    error
	events []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Forward(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return s.err
}

func TestHub_BroadcastPublishesLocallyAndForwards(t *testing.T) {
	bus := NewBus(logger.New())
	failing := &recordingSink{name: "broken", err: errors.New("down")}
	working := &recordingSink{name: "ok"}
	hub := NewHub(bus, "instance-a", logger.New(), failing, working)

	var local []Event
	defer bus.Subscribe(func(e Event) { local = append(local, e) })()

	hub.Broadcast(context.Background(), PostDeleted)

	if assert.Len(t, local, 1) {
		assert.Equal(t, PostDeleted, local[0].Kind)
		assert.Equal(t, "instance-a", local[0].Origin)
		assert.False(t, local[0].At.IsZero())
	}
	assert.Len(t, failing.events, 1)
	assert.Len(t, working.events, 1)
	assert.Equal(t, "instance-a", hub.Origin())
	assert.Same(t, bus, hub.Bus())
}
