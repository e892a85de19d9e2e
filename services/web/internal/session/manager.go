package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"propmedia/pkg/jwt"
	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"

	"github.com/google/uuid"
)

const revalidateTimeout = 10 * time.Second

// Authenticator is the part of the content API the session manager needs.
type Authenticator interface {
	Login(ctx context.Context, creds remote.Credentials) (*remote.AuthResult, error)
	Register(ctx context.Context, reg remote.Registration) (*remote.AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*entity.User, error)
}

type Options struct {
	TTL             time.Duration
	RevalidateAfter time.Duration
}

type Manager struct {
	store   Store
	auth    Authenticator
	tokens  *jwt.Service
	opts    Options
	log     *logger.Logger
	now     func() time.Time
	pending sync.Map
}

func NewManager(store Store, auth Authenticator, tokens *jwt.Service, opts Options, log *logger.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		tokens: tokens,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

// Login persists nothing when the API refuses the credentials; the returned
// error carries the server's message.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	result, err := m.auth.Login(ctx, remote.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return m.start(ctx, result)
}

func (m *Manager) Register(ctx context.Context, reg remote.Registration) (*Session, error) {
	result, err := m.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return m.start(ctx, result)
}

func (m *Manager) start(ctx context.Context, result *remote.AuthResult) (*Session, error) {
	user := result.User
	s := &Session{
		ID:          uuid.NewString(),
		Token:       result.Token,
		User:        &user,
		Phase:       PhaseConfirmed,
		ValidatedAt: m.now(),
	}
	if err := m.store.Save(ctx, s, m.opts.TTL); err != nil {
		return nil, err
	}
	m.log.Info("[SESSION] user %d (%s) signed in", user.ID, user.Role)
	return s, nil
}

// Logout tells the API first but clears the local record whatever the
// API answered.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	if s.Token != "" {
		if err := m.auth.Logout(remote.WithToken(ctx, s.Token)); err != nil {
			m.log.Warn("[SESSION] logout call failed for %s: %v", s.ID, err)
		}
	}
	return m.store.Delete(ctx, s.ID)
}

// Load rehydrates a persisted session. A record not validated within
// RevalidateAfter comes back optimistic and should be revalidated.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch s.Phase {
	case PhaseCleared, PhaseUnknown, "":
		_ = m.store.Delete(ctx, id)
		return nil, ErrNotFound
	case PhaseConfirmed:
		if m.now().Sub(s.ValidatedAt) > m.opts.RevalidateAfter {
			s.Phase = PhaseOptimistic
			if err := m.store.Save(ctx, s, m.opts.TTL); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Revalidate asks the API who owns the token. 401 clears the session; any
// other failure leaves it optimistic for a later attempt.
func (m *Manager) Revalidate(ctx context.Context, s *Session) (*Session, error) {
	user, err := m.auth.CurrentUser(remote.WithToken(ctx, s.Token))
	if err != nil {
		if remote.IsUnauthorized(err) {
			m.log.Info("[SESSION] %s rejected by the API, clearing", s.ID)
			cleared := s.clone()
			cleared.Phase = PhaseCleared
			cleared.User = nil
			cleared.Token = ""
			return cleared, m.store.Delete(ctx, s.ID)
		}
		return s, fmt.Errorf("failed to revalidate session: %w", err)
	}

	current, err := m.store.Get(ctx, s.ID)
	if errors.Is(err, ErrNotFound) {
		// logged out while the call was in flight
		cleared := s.clone()
		cleared.Phase = PhaseCleared
		return cleared, nil
	}
	if err != nil {
		return s, err
	}

	current.User = user
	current.Phase = PhaseConfirmed
	current.ValidatedAt = m.now()
	if err := m.store.Save(ctx, current, m.opts.TTL); err != nil {
		return s, err
	}
	return current, nil
}

// RevalidateAsync runs at most one background revalidation per session.
func (m *Manager) RevalidateAsync(s *Session) {
	if _, running := m.pending.LoadOrStore(s.ID, struct{}{}); running {
		return
	}
	snapshot := s.clone()
	go func() {
		defer m.pending.Delete(snapshot.ID)
		ctx, cancel := context.WithTimeout(context.Background(), revalidateTimeout)
		defer cancel()
		if _, err := m.Revalidate(ctx, snapshot); err != nil {
			m.log.Warn("[SESSION] background revalidation of %s failed: %v", snapshot.ID, err)
		}
	}()
}

// Invalidate drops the session, e.g. after the API answered 401.
func (m *Manager) Invalidate(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// InvalidateFromContext clears whichever session ctx belongs to.
func (m *Manager) InvalidateFromContext(ctx context.Context) {
	id := IDFromContext(ctx)
	if id == "" {
		return
	}
	if err := m.Invalidate(context.WithoutCancel(ctx), id); err != nil {
		m.log.Error("[SESSION] failed to clear %s after 401: %v", id, err)
		return
	}
	m.log.Info("[SESSION] cleared %s after 401", id)
}

// AddFlash queues a one-time message. The session record is left as it is.
func (m *Manager) AddFlash(ctx context.Context, s *Session, kind, message string) error {
	if s == nil {
		return nil
	}
	return m.store.AddFlash(ctx, s.ID, Flash{Kind: kind, Message: message}, m.opts.TTL)
}

// PopFlashes returns pending flashes once.
func (m *Manager) PopFlashes(ctx context.Context, s *Session) []Flash {
	if s == nil {
		return nil
	}
	flashes, err := m.store.TakeFlashes(ctx, s.ID)
	if err != nil {
		m.log.Warn("[SESSION] failed to take flashes for %s: %v", s.ID, err)
		return nil
	}
	return flashes
}

// Cookie returns the signed cookie value for s.
func (m *Manager) Cookie(s *Session) (string, error) {
	return m.tokens.GenerateToken(s.ID)
}

// SessionID verifies a cookie value and returns the id it carries.
func (m *Manager) SessionID(cookie string) (string, error) {
	claims, err := m.tokens.ValidateToken(cookie)
	if err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

func (m *Manager) TTL() time.Duration {
	return m.opts.TTL
}
