package http

import (
	"io"
	"net/http"
	"time"

	"propmedia/pkg/events"
	"propmedia/pkg/logger"
	"propmedia/pkg/metrics"
	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/usecase"
	"propmedia/services/web/internal/view"

	"github.com/gin-gonic/gin"
)

const (
	streamPath = "/api/v1/events/posts"

	scopePublic     = "public"
	scopeDashboard  = "dashboard"
	scopeModeration = "moderation"
)

// StreamHandler keeps one list view alive per open tab and pushes the
// re-rendered grid over server-sent events whenever it changes.
type StreamHandler struct {
	renderer     *Renderer
	posts        usecase.PostUseCase
	bus          view.Subscriber
	broadcaster  events.Broadcaster
	views        *view.Registry
	media        view.MediaResolver
	pingInterval time.Duration
	log          *logger.Logger
}

func NewStreamHandler(renderer *Renderer, posts usecase.PostUseCase, bus view.Subscriber, broadcaster events.Broadcaster, views *view.Registry, media view.MediaResolver, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		renderer:     renderer,
		posts:        posts,
		bus:          bus,
		broadcaster:  broadcaster,
		views:        views,
		media:        media,
		pingInterval: 25 * time.Second,
		log:          log,
	}
}

// scopeListing maps the scope query to a listing the caller may see.
func scopeListing(c *gin.Context, user *entity.User) (listing, []view.ListOption, int) {
	page := queryPage(c)
	switch c.DefaultQuery("scope", scopePublic) {
	case scopeDashboard:
		if !access.CanManagePosts(user) {
			return listing{}, nil, forbiddenFor(user)
		}
		return dashboardListing(c), nil, http.StatusOK
	case scopeModeration:
		if !access.CanModerate(user) {
			return listing{}, nil, forbiddenFor(user)
		}
		return moderationListing(page), []view.ListOption{view.WithPendingOnly()}, http.StatusOK
	case scopePublic:
		l := listing{filter: entity.PostFilter{Public: true, Page: page}, path: "/", empty: "No posts yet. Check back soon."}
		if category := entity.Category(c.Query("category")); category.Valid() {
			l.filter.Category = category
			l.path = categoryPath(category)
			l.empty = category.CallToAction()
		}
		return l, nil, http.StatusOK
	}
	return listing{}, nil, http.StatusBadRequest
}

func forbiddenFor(user *entity.User) int {
	if user == nil {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// Posts godoc
// @Summary      Live post grid
// @Description  Server-sent events for one list view. Sends "view" with the view id once, "grid" with rendered HTML after every refetch and "ping" to keep the connection open.
// @Tags         events
// @Produce      text/event-stream
// @Param        scope     query  string  false  "public, dashboard or moderation"
// @Param        category  query  string  false  "Category filter"
// @Param        status    query  string  false  "Status filter (dashboard only)"
// @Param        page      query  int     false  "Page number"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /events/posts [get]
func (h *StreamHandler) Posts(c *gin.Context) {
	user := currentUser(c)
	l, opts, status := scopeListing(c, user)
	if status != http.StatusOK {
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	owner := ""
	if s := currentSession(c); s != nil {
		owner = s.ID
	}

	updates := make(chan view.ListState, 1)
	opts = append(opts,
		view.WithOwner(owner),
		view.WithBroadcaster(h.broadcaster),
		view.WithOnChange(keepLatest(updates)),
	)
	lv := view.NewListView(h.posts.Source(), h.bus, l.filter, h.log, opts...)

	ctx := c.Request.Context()
	if err := lv.Mount(ctx); err != nil {
		h.log.Warn("[STREAM] first fetch for %s failed: %v", l.path, err)
	}
	id := h.views.Add(lv)
	defer h.views.Remove(id)

	metrics.LiveStreams.Inc()
	defer metrics.LiveStreams.Dec()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("view", id)
	c.Writer.Flush()

	done := lv.Done()
	slides := slideParams(c.Request.URL.Query())
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-done:
			return false
		case state := <-updates:
			if state.Loading {
				return true
			}
			html, err := h.renderer.Partial("post_grid", l.grid(h.media, user, state.Items, slides, state.Err))
			if err != nil {
				h.log.Error("[STREAM] %v", err)
				return true
			}
			c.SSEvent("grid", html)
			return true
		case <-ping.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

// keepLatest delivers states without blocking the list view; an unread
// state is replaced by the newer one.
func keepLatest(ch chan view.ListState) func(view.ListState) {
	return func(s view.ListState) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}
