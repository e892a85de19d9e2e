package events

import (
	"context"
	"time"
)

// Kind names a post change. Listeners get no payload beyond the kind, they
// refetch whatever they display.
type Kind string

const (
	PostCreated Kind = "post.created"
	PostUpdated Kind = "post.updated"
	PostDeleted Kind = "post.deleted"
)

func (k Kind) Valid() bool {
	switch k {
	case PostCreated, PostUpdated, PostDeleted:
		return true
	}
	return false
}

type Event struct {
	Kind   Kind      `json:"kind"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

type Listener func(Event)

// Broadcaster is what writers of posts depend on.
type Broadcaster interface {
	Broadcast(ctx context.Context, kind Kind)
}

// Sink receives every locally broadcast event, e.g. to reach other
// processes.
type Sink interface {
	Name() string
	Forward(ctx context.Context, e Event) error
}
