package http

import (
	"errors"
	"net/http"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/session"
	"propmedia/services/web/internal/usecase"
	"propmedia/services/web/internal/view"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	base
	moderation usecase.ModerationUseCase
	media      view.MediaResolver
}

func NewModerationHandler(renderer *Renderer, sessions *session.Manager, secure bool, moderation usecase.ModerationUseCase, media view.MediaResolver, log *logger.Logger) *ModerationHandler {
	return &ModerationHandler{
		base:       newBase(renderer, sessions, secure, log),
		moderation: moderation,
		media:      media,
	}
}

func moderationListing(page int) listing {
	return listing{
		filter:     entity.PostFilter{Status: entity.StatusPending, Page: page},
		path:       access.ModeratorHome,
		moderation: true,
		empty:      "Nothing waiting for review.",
	}
}

func (h *ModerationHandler) Queue(c *gin.Context) {
	l := moderationListing(queryPage(c))
	page, err := h.moderation.Queue(c.Request.Context(), l.filter.Page)
	if err != nil && h.unauthorized(c, err) {
		return
	}

	p := h.page(c, "Moderation", listContent{
		Heading:    "Waiting for review",
		Grid:       l.grid(h.media, currentUser(c), page.Items, slideParams(c.Request.URL.Query()), err),
		Pagination: page.Pagination,
		PageBase:   l.pageBase(),
		Filter:     l.filter,
	})
	p.Stream = l.stream(scopeModeration)
	h.render(c, http.StatusOK, "admin_posts", p)
}

func (h *ModerationHandler) Approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "We could not find that post.")
		return
	}
	if err := h.moderation.Approve(c.Request.Context(), id); err != nil {
		h.failAndRedirect(c, err, "The post could not be approved.", access.ModeratorHome)
		return
	}
	h.succeedAndRedirect(c, "Post approved", access.ModeratorHome)
}

// Reject needs a reason; an empty one never reaches the API.
func (h *ModerationHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "We could not find that post.")
		return
	}
	err := h.moderation.Reject(c.Request.Context(), id, c.PostForm("note"))
	if errors.Is(err, usecase.ErrNoteRequired) {
		h.flash(c, session.FlashError, "Please give a reason for rejecting this post.")
		c.Redirect(http.StatusFound, access.ModeratorHome)
		return
	}
	if err != nil {
		h.failAndRedirect(c, err, "The post could not be rejected.", access.ModeratorHome)
		return
	}
	h.succeedAndRedirect(c, "Post rejected", access.ModeratorHome)
}
