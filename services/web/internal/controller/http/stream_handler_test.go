package http

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"propmedia/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data string
}

// readEvents parses a text/event-stream body until it closes.
func readEvents(r *bufio.Reader, out chan<- sseEvent) {
	defer close(out)
	var ev sseEvent
	var data []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if ev.name != "" {
				ev.data = strings.Join(data, "\n")
				out <- ev
			}
			ev, data = sseEvent{}, nil
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(line, "data:"))
		}
	}
}

func nextEvent(t *testing.T, stream <-chan sseEvent, name string) sseEvent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-stream:
			require.True(t, ok, "stream closed before %q", name)
			if ev.name == name {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %q event", name)
		}
	}
}

func TestStream_PushesGridOnChange(t *testing.T) {
	var mu sync.Mutex
	title := "Plot A"
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts/approved", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 1, "title": title, "post_type": "Static", "category": "lands_and_plots", "status": "approved"},
		})
	})
	app := newTestApp(t, mux)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events/posts?scope=public", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	stream := make(chan sseEvent, 16)
	go readEvents(bufio.NewReader(resp.Body), stream)

	viewID := nextEvent(t, stream, "view").data
	assert.NotEmpty(t, viewID)
	assert.Equal(t, 1, app.views.Len())

	grid := nextEvent(t, stream, "grid")
	assert.Contains(t, grid.data, "Plot A")

	mu.Lock()
	title = "Plot B"
	mu.Unlock()
	app.hub.Broadcast(context.Background(), events.PostUpdated)

	grid = nextEvent(t, stream, "grid")
	assert.Contains(t, grid.data, "Plot B")

	cancel()
	assert.Eventually(t, func() bool { return app.views.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_ScopeGuards(t *testing.T) {
	app := newTestApp(t, http.NewServeMux())
	_, moderator := app.signIn(t, moderatorUser)

	assert.Equal(t, http.StatusUnauthorized, app.get("/api/v1/events/posts?scope=dashboard").Code)
	assert.Equal(t, http.StatusForbidden, app.get("/api/v1/events/posts?scope=dashboard", moderator).Code)
	assert.Equal(t, http.StatusBadRequest, app.get("/api/v1/events/posts?scope=everything").Code)
}
