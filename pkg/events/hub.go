package events

import (
	"context"
	"time"

	"propmedia/pkg/logger"
	"propmedia/pkg/metrics"
)

// Hub publishes locally first and then hands the event to every sink.
// Sink failures are logged; local listeners are never affected by them.
type Hub struct {
	bus    *Bus
	origin string
	sinks  []Sink
	log    *logger.Logger
}

func NewHub(bus *Bus, origin string, log *logger.Logger, sinks ...Sink) *Hub {
	return &Hub{
		bus:    bus,
		origin: origin,
		sinks:  sinks,
		log:    log,
	}
}

func (h *Hub) Bus() *Bus {
	return h.bus
}

func (h *Hub) Origin() string {
	return h.origin
}

func (h *Hub) Broadcast(ctx context.Context, kind Kind) {
	e := Event{Kind: kind, Origin: h.origin, At: time.Now().UTC()}
	metrics.RecordPostEvent(string(kind), "local")
	h.bus.Publish(e)

	for _, sink := range h.sinks {
		if err := sink.Forward(ctx, e); err != nil {
			h.log.Warn("[EVENTS] failed to forward %s to %s: %v", kind, sink.Name(), err)
		}
	}
}
