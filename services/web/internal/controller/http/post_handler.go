package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"
	"propmedia/services/web/internal/usecase"
	"propmedia/services/web/internal/view"

	"github.com/gin-gonic/gin"
)

// PostHandler covers the staff side of posts: the dashboard, the create and
// edit forms and deletes.
type PostHandler struct {
	base
	posts usecase.PostUseCase
	views *view.Registry
	media view.MediaResolver
}

func NewPostHandler(renderer *Renderer, sessions *session.Manager, secure bool, posts usecase.PostUseCase, views *view.Registry, media view.MediaResolver, log *logger.Logger) *PostHandler {
	return &PostHandler{
		base:  newBase(renderer, sessions, secure, log),
		posts: posts,
		views: views,
		media: media,
	}
}

var dashboardStatuses = []entity.PostStatus{entity.StatusPending, entity.StatusApproved, entity.StatusRejected}

func dashboardListing(c *gin.Context) listing {
	f := entity.PostFilter{Page: queryPage(c)}
	if category := entity.Category(c.Query("category")); category.Valid() {
		f.Category = category
	}
	if status := entity.PostStatus(c.Query("status")); status.Valid() {
		f.Status = status
	}
	return listing{filter: f, path: access.AdminHome, empty: "No posts match these filters."}
}

func (h *PostHandler) Dashboard(c *gin.Context) {
	l := dashboardListing(c)
	page, err := h.posts.List(c.Request.Context(), l.filter)
	if err != nil && h.unauthorized(c, err) {
		return
	}

	p := h.page(c, "Posts", listContent{
		Heading:    "Posts",
		Grid:       l.grid(h.media, currentUser(c), page.Items, slideParams(c.Request.URL.Query()), err),
		Pagination: page.Pagination,
		PageBase:   l.pageBase(),
		Filter:     l.filter,
		ShowStatus: true,
		Statuses:   dashboardStatuses,
	})
	p.Stream = l.stream(scopeDashboard)
	h.render(c, http.StatusOK, "admin_posts", p)
}

type newPostContent struct {
	Form        view.PostForm
	PostTypes   []entity.PostType
	SubmitToken string
	Error       string
	AssistError string
}

func (h *PostHandler) renderNew(c *gin.Context, status int, content newPostContent) {
	content.PostTypes = entity.PostTypes
	if content.SubmitToken == "" {
		content.SubmitToken = h.posts.IssueSubmitToken()
	}
	h.render(c, status, "post_new", h.page(c, "New post", content))
}

func (h *PostHandler) NewPage(c *gin.Context) {
	h.renderNew(c, http.StatusOK, newPostContent{Form: view.PostForm{
		Category: string(entity.CategoryRentals),
		PostType: string(entity.PostTypeStatic),
	}})
}

// Create submits a new post for review. Each rendered form creates at most
// one post.
func (h *PostHandler) Create(c *gin.Context) {
	var form view.PostForm
	bindErr := c.ShouldBind(&form)
	form.Errors = view.FieldErrors(bindErr)

	images, closeImages, err := formUploads(c, "images[]")
	if err != nil {
		form.AddError("images", "One of the images could not be read")
	}
	defer closeImages()
	videos, closeVideos, err := formUploads(c, "video")
	if err != nil {
		form.AddError("video", "The video could not be read")
	}
	defer closeVideos()

	var video *entity.Upload
	if len(videos) > 0 {
		video = &videos[0]
	}
	for field, message := range view.ValidateMedia(entity.PostType(form.PostType), len(images), video != nil) {
		form.AddError(field, message)
	}

	if form.HasErrors() {
		h.renderNew(c, http.StatusUnprocessableEntity, newPostContent{Form: form, SubmitToken: form.SubmitToken})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), form.SubmitToken, form.NewPost(images, video))
	if err != nil {
		if errors.Is(err, usecase.ErrAlreadySubmitted) {
			h.flash(c, session.FlashError, "This form was already submitted.")
			c.Redirect(http.StatusFound, "/admin/posts/new")
			return
		}
		if h.unauthorized(c, err) {
			return
		}
		h.log.Warn("[POSTS] create failed: %v", err)
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) {
			for _, field := range []string{"title", "description", "category", "post_type", "images", "video"} {
				if msg := apiErr.FieldError(field); msg != "" {
					form.AddError(field, msg)
				}
			}
		}
		h.renderNew(c, http.StatusUnprocessableEntity, newPostContent{
			Form:        form,
			SubmitToken: form.SubmitToken,
			Error:       remote.Message(err, "The post could not be created."),
		})
		return
	}

	h.log.Info("[POSTS] user %d submitted post %d", currentUser(c).ID, post.ID)
	h.succeedAndRedirect(c, "Post submitted for review.", "/admin/posts/new")
}

// Assist fills title and description from the assistant and re-renders the
// form. Whatever the user already typed stays when it fails.
func (h *PostHandler) Assist(c *gin.Context) {
	form := view.PostForm{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		PostType:    c.PostForm("post_type"),
		Location:    c.PostForm("location"),
		Price:       c.PostForm("price"),
		Bedrooms:    c.PostForm("bedrooms"),
		Size:        c.PostForm("size"),
		Features:    c.PostForm("features"),
		SubmitToken: c.PostForm("submit_token"),
	}
	content := newPostContent{Form: form, SubmitToken: form.SubmitToken}

	req := form.AssistRequest()
	if !req.Category.Valid() || !req.PostType.Valid() {
		content.AssistError = "Choose a category and a post type first."
		h.renderNew(c, http.StatusUnprocessableEntity, content)
		return
	}

	suggestion, err := h.posts.Suggest(c.Request.Context(), req)
	if err != nil {
		if h.unauthorized(c, err) {
			return
		}
		h.log.Warn("[ASSIST] suggestion failed: %v", err)
		content.AssistError = remote.Message(err, "The assistant is unavailable right now.")
		h.renderNew(c, http.StatusOK, content)
		return
	}

	content.Form.ApplySuggestion(suggestion)
	h.renderNew(c, http.StatusOK, content)
}

type GenerateRequest struct {
	Category     string            `json:"category" binding:"required,post_category"`
	PostType     string            `json:"post_type" binding:"required,post_type"`
	PropertyData map[string]string `json:"property_data"`
}

type GenerateResponse struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Generate godoc
// @Summary      Suggest post copy
// @Description  Ask the content assistant for a title and description. Fields the assistant did not return are null.
// @Tags         assist
// @Accept       json
// @Produce      json
// @Param        request body GenerateRequest true "Post kind and optional property details"
// @Success      200  {object}  GenerateResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /ai/generate [post]
func (h *PostHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "fields": view.FieldErrors(err)})
		return
	}

	suggestion, err := h.posts.Suggest(c.Request.Context(), entity.AssistRequest{
		Category:     entity.Category(req.Category),
		PostType:     entity.PostType(req.PostType),
		PropertyData: req.PropertyData,
	})
	if err != nil {
		if remote.IsUnauthorized(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": remote.Message(err, "The assistant is unavailable right now.")})
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{Title: suggestion.Title, Description: suggestion.Description})
}

type editContent struct {
	Card  view.PostView
	Form  view.EditForm
	Media []view.MediaItem
	Error string
}

func (h *PostHandler) loadEditable(c *gin.Context) (*entity.Post, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "We could not find that post.")
		return nil, false
	}
	user := currentUser(c)
	post, err := h.posts.Editable(c.Request.Context(), id, user)
	if err != nil {
		if errors.Is(err, usecase.ErrForbidden) {
			h.flash(c, session.FlashError, "You can only edit your own posts.")
			c.Redirect(http.StatusFound, access.DefaultPath(user))
			return nil, false
		}
		if h.unauthorized(c, err) {
			return nil, false
		}
		h.renderError(c, http.StatusBadGateway, remote.Message(err, "We could not load this post."))
		return nil, false
	}
	return post, true
}

func (h *PostHandler) editContent(c *gin.Context, post *entity.Post, form view.EditForm) editContent {
	content := editContent{
		Card: view.NewPostView(*post, h.media, view.RenderOptions{Viewer: currentUser(c), BasePath: c.Request.URL.Path}),
		Form: form,
	}
	for i, m := range post.Media {
		content.Media = append(content.Media, view.MediaItem{ID: m.ID, URL: h.media.Resolve(m), MimeType: m.MimeType, Index: i})
	}
	return content
}

func (h *PostHandler) EditPage(c *gin.Context) {
	post, ok := h.loadEditable(c)
	if !ok {
		return
	}
	form := view.EditForm{Title: post.Title, Description: post.Description}
	h.render(c, http.StatusOK, "post_edit", h.page(c, "Edit post", h.editContent(c, post, form)))
}

// Update saves the text, then uploads new files in the order given.
func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.loadEditable(c)
	if !ok {
		return
	}
	id, _ := pathID(c, "id")
	editURL := fmt.Sprintf("/admin/posts/%d/edit", id)

	var form view.EditForm
	if err := c.ShouldBind(&form); err != nil {
		form.Errors = view.FieldErrors(err)
		h.render(c, http.StatusUnprocessableEntity, "post_edit", h.page(c, "Edit post", h.editContent(c, post, form)))
		return
	}

	uploads, closeUploads, err := formUploads(c, "files[]")
	defer closeUploads()
	if err != nil {
		h.flash(c, session.FlashError, "One of the files could not be read.")
		c.Redirect(http.StatusFound, editURL)
		return
	}

	result, err := h.posts.Update(c.Request.Context(), id, strings.TrimSpace(form.Title), strings.TrimSpace(form.Description), uploads)
	if err != nil {
		if result == nil {
			h.failAndRedirect(c, err, "The post could not be saved.", editURL)
			return
		}
		if h.unauthorized(c, err) {
			return
		}
		h.flash(c, session.FlashError, fmt.Sprintf("Post saved, but only %d of %d files were uploaded: %s",
			result.Uploaded, len(uploads), remote.Message(err, "upload failed")))
		c.Redirect(http.StatusFound, editURL)
		return
	}

	h.succeedAndRedirect(c, "Post updated.", editURL)
}

// Delete removes a post. When the page has a live list view the post also
// disappears from it straight away.
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "We could not find that post.")
		return
	}
	user := currentUser(c)
	back := safeNext(refererPath(c), access.DefaultPath(user))

	if _, err := h.posts.Deletable(c.Request.Context(), id, user); err != nil {
		if errors.Is(err, usecase.ErrForbidden) {
			h.flash(c, session.FlashError, "You can only delete your own posts.")
			c.Redirect(http.StatusFound, access.DefaultPath(user))
			return
		}
		h.failAndRedirect(c, err, "The post could not be deleted.", back)
		return
	}

	var err error
	if lv, lookupErr := h.views.Get(c.PostForm("view_id"), currentSession(c).ID); lookupErr == nil {
		err = lv.Delete(c.Request.Context(), id)
	} else {
		err = h.posts.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.failAndRedirect(c, err, "The post could not be deleted.", back)
		return
	}

	h.succeedAndRedirect(c, "Post deleted.", back)
}

func (h *PostHandler) DeleteMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "We could not find that file.")
		return
	}
	back := safeNext(refererPath(c), access.DefaultPath(currentUser(c)))
	if postID := c.PostForm("post_id"); postID != "" {
		back = "/admin/posts/" + url.PathEscape(postID) + "/edit"
	}

	if err := h.posts.DeleteMedia(c.Request.Context(), id); err != nil {
		h.failAndRedirect(c, err, "The file could not be removed.", back)
		return
	}
	h.succeedAndRedirect(c, "File removed.", back)
}

// refererPath returns the path and query of a same-site Referer.
func refererPath(c *gin.Context) string {
	header := c.GetHeader("Referer")
	if header == "" {
		return ""
	}
	ref, err := url.Parse(header)
	if err != nil || (ref.Host != "" && ref.Host != c.Request.Host) {
		return ""
	}
	return ref.RequestURI()
}
