package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"propmedia/services/web/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(w interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestLogin_WrongPasswordShowsServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "These credentials do not match our records."})
	})
	app := newTestApp(t, mux)

	w := app.postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "These credentials do not match our records.")
	assert.Contains(t, w.Body.String(), `value="ada@example.com"`)
	assert.Nil(t, sessionCookie(w))
	assert.Empty(t, app.mr.Keys())
}

func TestLogin_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":  map[string]interface{}{"id": 1, "name": "Ada", "email": "ada@example.com", "role": "admin"},
			"token": "api-token",
		})
	})
	app := newTestApp(t, mux)

	w := app.postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/posts", w.Header().Get("Location"))
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	id, err := app.sessions.SessionID(cookie.Value)
	require.NoError(t, err)
	s, err := app.sessions.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseConfirmed, s.Phase)
	assert.Equal(t, "api-token", s.Token)
}

func TestLogin_FollowsSafeNext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":  map[string]interface{}{"id": 2, "role": "moderator"},
			"token": "api-token",
		})
	})
	app := newTestApp(t, mux)

	w := app.postForm("/login", url.Values{"email": {"mo@example.com"}, "password": {"x"}, "next": {"/moderation?page=2"}})
	assert.Equal(t, "/moderation?page=2", w.Header().Get("Location"))

	w = app.postForm("/login", url.Values{"email": {"mo@example.com"}, "password": {"x"}, "next": {"//evil.example.com"}})
	assert.Equal(t, "/moderation", w.Header().Get("Location"))
}

func TestLogin_ValidationErrors(t *testing.T) {
	app := newTestApp(t, http.NewServeMux())

	w := app.postForm("/login", url.Values{"email": {"not-an-email"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Must be a valid email address")
	assert.Contains(t, w.Body.String(), "This field is required")
}

func TestLogout_ClearsSessionEvenWhenAPIFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	app := newTestApp(t, mux)
	s, cookie := app.signIn(t, adminUser)

	w := app.postForm("/logout", nil, cookie)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, app.mr.Exists("session:"+s.ID))
}

func TestGuards(t *testing.T) {
	app := newTestApp(t, http.NewServeMux())
	_, moderator := app.signIn(t, moderatorUser)

	cases := []struct {
		name     string
		path     string
		cookies  []*http.Cookie
		location string
	}{
		{"anonymous admin page", "/admin/posts", nil, "/login?next=%2Fadmin%2Fposts"},
		{"anonymous moderation", "/moderation", nil, "/login?next=%2Fmoderation"},
		{"moderator admin page", "/admin/posts", []*http.Cookie{moderator}, "/moderation"},
		{"moderator contacts", "/admin/contacts", []*http.Cookie{moderator}, "/moderation"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := app.get(tc.path, tc.cookies...)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}

func TestSessionLoader_APIUnauthorizedClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	})
	app := newTestApp(t, mux)
	s, cookie := app.signIn(t, adminUser)

	w := app.get("/admin/posts", cookie)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fadmin%2Fposts", w.Header().Get("Location"))
	assert.False(t, app.mr.Exists("session:"+s.ID))
}

func TestSessionLoader_BadCookieIsAnonymous(t *testing.T) {
	app := newTestApp(t, http.NewServeMux())

	w := app.get("/admin/posts", &http.Cookie{Name: SessionCookie, Value: "garbage"})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fadmin%2Fposts", w.Header().Get("Location"))
}
