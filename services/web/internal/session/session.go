package session

import (
	"context"
	"time"

	"propmedia/services/web/internal/entity"
)

// Phase is where a session sits in its lifecycle:
// unknown -> optimistic -> confirmed | cleared.
type Phase string

const (
	PhaseUnknown    Phase = "unknown"
	PhaseOptimistic Phase = "optimistic"
	PhaseConfirmed  Phase = "confirmed"
	PhaseCleared    Phase = "cleared"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Session struct {
	ID          string       `json:"id"`
	Token       string       `json:"token"`
	User        *entity.User `json:"user"`
	Phase       Phase        `json:"phase"`
	ValidatedAt time.Time    `json:"validated_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil && s.Token != "" && s.Phase != PhaseCleared && s.Phase != PhaseUnknown
}

// Loading is true only while a rehydrated session waits for the server to
// confirm it.
func (s *Session) Loading() bool {
	return s != nil && s.Phase == PhaseOptimistic
}

func (s *Session) CurrentUser() *entity.User {
	if !s.Authenticated() {
		return nil
	}
	return s.User
}

func (s *Session) clone() *Session {
	c := *s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return &c
}

type idKey struct{}

func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}
