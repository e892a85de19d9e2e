package http

import (
	"errors"
	"net/http"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"
	"propmedia/services/web/internal/usecase"
	"propmedia/services/web/internal/view"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the approved listings to anonymous visitors.
type PublicHandler struct {
	base
	posts usecase.PostUseCase
	media view.MediaResolver
}

func NewPublicHandler(renderer *Renderer, sessions *session.Manager, secure bool, posts usecase.PostUseCase, media view.MediaResolver, log *logger.Logger) *PublicHandler {
	return &PublicHandler{
		base:  newBase(renderer, sessions, secure, log),
		posts: posts,
		media: media,
	}
}

func (h *PublicHandler) Home(c *gin.Context) {
	h.list(c, "Latest listings", listing{
		filter: entity.PostFilter{Public: true, Page: queryPage(c)},
		path:   "/",
		empty:  "No posts yet. Check back soon.",
	})
}

func (h *PublicHandler) Category(c *gin.Context) {
	category := entity.Category(c.Param("category"))
	if !category.Valid() {
		h.renderError(c, http.StatusNotFound, "We could not find that category.")
		return
	}
	h.list(c, category.Label(), listing{
		filter: entity.PostFilter{Public: true, Category: category, Page: queryPage(c)},
		path:   categoryPath(category),
		empty:  category.CallToAction(),
	})
}

func (h *PublicHandler) list(c *gin.Context, heading string, l listing) {
	page, err := h.posts.List(c.Request.Context(), l.filter)
	if err != nil {
		h.log.Warn("[PUBLIC] listing %s failed: %v", l.path, err)
	}

	p := h.page(c, heading, listContent{
		Heading:    heading,
		Grid:       l.grid(h.media, currentUser(c), page.Items, slideParams(c.Request.URL.Query()), err),
		Pagination: page.Pagination,
		PageBase:   l.pageBase(),
		Filter:     l.filter,
	})
	p.Stream = l.stream(scopePublic)
	h.render(c, http.StatusOK, "public_list", p)
}

type detailContent struct {
	Card view.PostView
}

func (h *PublicHandler) Post(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "We could not find that post.")
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id, true)
	if err != nil {
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			h.renderError(c, http.StatusNotFound, "We could not find that post.")
			return
		}
		h.log.Warn("[PUBLIC] loading post %d failed: %v", id, err)
		h.renderError(c, http.StatusBadGateway, remote.Message(err, "We could not load this post."))
		return
	}

	card := view.NewPostViews([]entity.Post{*post}, h.media, currentUser(c), c.Request.URL.Path, slideParams(c.Request.URL.Query()), false)[0]
	h.render(c, http.StatusOK, "post_detail", h.page(c, post.Title, detailContent{Card: card}))
}
