package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"propmedia/pkg/events"
	"propmedia/pkg/jwt"
	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"
	"propmedia/services/web/internal/usecase"
	"propmedia/services/web/internal/view"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var registerOnce sync.Once

// testApp wires the real handlers against a fake content API.
type testApp struct {
	router   *gin.Engine
	api      *httptest.Server
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	sessions *session.Manager
	hub      *events.Hub
	views    *view.Registry
	posts    usecase.PostUseCase
}

func newTestApp(t *testing.T, mux *http.ServeMux) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			require.NoError(t, view.RegisterValidations(v))
		}
	})

	log := logger.New()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	client := remote.NewClient(api.URL+"/api", time.Second, log)
	sessions := session.NewManager(
		session.NewRedisStore(rdb),
		client,
		jwt.NewService("test-secret", time.Hour),
		session.Options{TTL: time.Hour, RevalidateAfter: time.Hour},
		log,
	)
	client.OnUnauthorized(sessions.InvalidateFromContext)

	renderer, err := NewRenderer()
	require.NoError(t, err)

	hub := events.NewHub(events.NewBus(log), "test", log)
	views := view.NewRegistry()
	t.Cleanup(views.Close)
	media := view.NewMediaResolver("http://host")

	posts := usecase.NewPostUseCase(client, client, usecase.NewSubmitGuard(rdb), hub, log)
	moderation := usecase.NewModerationUseCase(client, hub, log)
	contacts := usecase.NewContactUseCase(client, log)

	handlers := Handlers{
		Auth:       NewAuthHandler(renderer, sessions, false, log),
		Public:     NewPublicHandler(renderer, sessions, false, posts, media, log),
		Posts:      NewPostHandler(renderer, sessions, false, posts, views, media, log),
		Moderation: NewModerationHandler(renderer, sessions, false, moderation, media, log),
		Contacts:   NewContactHandler(renderer, sessions, false, contacts, log),
		Stream:     NewStreamHandler(renderer, posts, hub.Bus(), hub, views, media, log),
	}

	r := gin.New()
	RegisterRoutes(r, handlers, SessionLoader(sessions, false, log), Limits{})

	return &testApp{
		router:   r,
		api:      api,
		mr:       mr,
		rdb:      rdb,
		sessions: sessions,
		hub:      hub,
		views:    views,
		posts:    posts,
	}
}

// signIn stores a confirmed session for user and returns its cookie.
func (a *testApp) signIn(t *testing.T, user entity.User) (*session.Session, *http.Cookie) {
	t.Helper()
	s := &session.Session{
		ID:          uuid.NewString(),
		Token:       "token-" + user.Email,
		User:        &user,
		Phase:       session.PhaseConfirmed,
		ValidatedAt: time.Now(),
	}
	require.NoError(t, session.NewRedisStore(a.rdb).Save(context.Background(), s, time.Hour))
	value, err := a.sessions.Cookie(s)
	require.NoError(t, err)
	return s, &http.Cookie{Name: SessionCookie, Value: value}
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookies...)
}

// flashes reads the queued flashes of a session without consuming them.
func (a *testApp) flashes(t *testing.T, id string) []session.Flash {
	t.Helper()
	raw, err := a.rdb.LRange(context.Background(), session.FlashKey(id), 0, -1).Result()
	require.NoError(t, err)
	var out []session.Flash
	for _, r := range raw {
		var f session.Flash
		require.NoError(t, json.Unmarshal([]byte(r), &f))
		out = append(out, f)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var (
	adminUser     = entity.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: entity.RoleAdmin}
	moderatorUser = entity.User{ID: 2, Name: "Mo", Email: "mo@example.com", Role: entity.RoleModerator}
)
