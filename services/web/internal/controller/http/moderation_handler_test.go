package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationQueue_ShowsOnlyPending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":1,"title":"Waiting","post_type":"Static","category":"rentals","status":"pending"},
			{"id":2,"title":"Already live","post_type":"Static","category":"rentals","status":"approved"}
		],"current_page":1,"last_page":1,"per_page":10,"total":2}`))
	})
	app := newTestApp(t, mux)
	_, cookie := app.signIn(t, moderatorUser)

	w := app.get("/moderation", cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Waiting")
	assert.NotContains(t, body, "Already live")
	assert.Contains(t, body, `action="/moderation/1/approve"`)
	assert.Contains(t, body, `data-stream="/api/v1/events/posts?scope=moderation"`)
}

func TestReject_EmptyNeverReachesAPI(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	app := newTestApp(t, mux)
	s, cookie := app.signIn(t, moderatorUser)

	w := app.postForm("/moderation/4/reject", url.Values{"note": {"   "}}, cookie)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/moderation", w.Header().Get("Location"))
	assert.Zero(t, atomic.LoadInt32(&calls))
	flashes := app.flashes(t, s.ID)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Please give a reason for rejecting this post.", flashes[0].Message)
}

func TestReject_SendsTrimmedNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/4/reject", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Blurry photos", body["note"])
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 4, "status": "rejected"})
	})
	app := newTestApp(t, mux)
	s, cookie := app.signIn(t, moderatorUser)

	w := app.postForm("/moderation/4/reject", url.Values{"note": {"  Blurry photos "}}, cookie)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "Post rejected", app.flashes(t, s.ID)[0].Message)
}

func TestApprove(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/4/approve", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-mo@example.com", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 4, "status": "approved"})
	})
	app := newTestApp(t, mux)
	s, cookie := app.signIn(t, moderatorUser)

	w := app.postForm("/moderation/4/approve", nil, cookie)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "Post approved", app.flashes(t, s.ID)[0].Message)
}

func TestApprove_AnonymousIsSentToSignIn(t *testing.T) {
	app := newTestApp(t, http.NewServeMux())

	w := app.postForm("/moderation/4/approve", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
