package http

import (
	"net/http"
	"strings"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"
	"propmedia/services/web/internal/usecase"
	"propmedia/services/web/internal/view"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	base
	contacts usecase.ContactUseCase
}

func NewContactHandler(renderer *Renderer, sessions *session.Manager, secure bool, contacts usecase.ContactUseCase, log *logger.Logger) *ContactHandler {
	return &ContactHandler{
		base:     newBase(renderer, sessions, secure, log),
		contacts: contacts,
	}
}

type ContactForm struct {
	FirstName string `form:"first_name" binding:"required,notblank,max=100"`
	LastName  string `form:"last_name" binding:"required,notblank,max=100"`
	Email     string `form:"email" binding:"required,email"`
	Subject   string `form:"subject" binding:"required,notblank,max=255"`
	Message   string `form:"message" binding:"required,notblank,max=5000"`
}

type contactContent struct {
	Form   ContactForm
	Sent   bool
	Error  string
	Errors map[string]string
}

func (h *ContactHandler) Page(c *gin.Context) {
	h.render(c, http.StatusOK, "contact", h.page(c, "Contact us", contactContent{}))
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var form ContactForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "contact", h.page(c, "Contact us", contactContent{
			Form:   form,
			Errors: view.FieldErrors(err),
		}))
		return
	}

	err := h.contacts.Submit(c.Request.Context(), entity.ContactMessage{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Email:     strings.TrimSpace(form.Email),
		Subject:   strings.TrimSpace(form.Subject),
		Message:   strings.TrimSpace(form.Message),
	})
	if err != nil {
		h.log.Warn("[CONTACT] submit failed: %v", err)
		h.render(c, http.StatusBadGateway, "contact", h.page(c, "Contact us", contactContent{
			Form:  form,
			Error: remote.Message(err, "Your message could not be sent. Please try again."),
		}))
		return
	}

	h.render(c, http.StatusOK, "contact", h.page(c, "Contact us", contactContent{Sent: true}))
}

type contactsContent struct {
	Items      []entity.ContactMessage
	Pagination *entity.Pagination
	PageBase   string
	Err        string
}

func (h *ContactHandler) List(c *gin.Context) {
	page, err := h.contacts.List(c.Request.Context(), queryPage(c))
	content := contactsContent{Items: page.Items, Pagination: page.Pagination, PageBase: "/admin/contacts"}
	if err != nil {
		if h.unauthorized(c, err) {
			return
		}
		content.Err = remote.Message(err, "We could not load the messages.")
	}
	h.render(c, http.StatusOK, "contacts", h.page(c, "Messages", content))
}

