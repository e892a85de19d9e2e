package http

import (
	"errors"
	"net/http"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"
	"propmedia/services/web/internal/view"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	base
}

func NewAuthHandler(renderer *Renderer, sessions *session.Manager, secure bool, log *logger.Logger) *AuthHandler {
	return &AuthHandler{base: newBase(renderer, sessions, secure, log)}
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type RegisterForm struct {
	Name                 string `form:"name" binding:"required,notblank,max=255"`
	Email                string `form:"email" binding:"required,email"`
	Password             string `form:"password" binding:"required,min=8"`
	PasswordConfirmation string `form:"password_confirmation" binding:"required,eqfield=Password"`
}

type loginContent struct {
	Email  string
	Next   string
	Error  string
	Errors map[string]string
}

type registerContent struct {
	Name   string
	Email  string
	Error  string
	Errors map[string]string
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if user := currentUser(c); user != nil {
		c.Redirect(http.StatusFound, access.DefaultPath(user))
		return
	}
	h.render(c, http.StatusOK, "login", h.page(c, "Sign in", loginContent{Next: c.Query("next")}))
}

// Login signs a staff member in. A refused attempt stores nothing and
// shows the API's own message.
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "login", h.page(c, "Sign in", loginContent{
			Email:  form.Email,
			Next:   form.Next,
			Errors: view.FieldErrors(err),
		}))
		return
	}

	s, err := h.sessions.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		h.log.Info("[AUTH] sign in refused for %s: %v", form.Email, err)
		h.render(c, http.StatusUnprocessableEntity, "login", h.page(c, "Sign in", loginContent{
			Email: form.Email,
			Next:  form.Next,
			Error: remote.Message(err, "Sign in failed. Please try again."),
		}))
		return
	}

	if !h.startSession(c, s) {
		return
	}
	c.Redirect(http.StatusFound, safeNext(form.Next, access.DefaultPath(s.User)))
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if user := currentUser(c); user != nil {
		c.Redirect(http.StatusFound, access.DefaultPath(user))
		return
	}
	h.render(c, http.StatusOK, "register", h.page(c, "Create an account", registerContent{}))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		errs := view.FieldErrors(err)
		if _, ok := errs["password_confirmation"]; ok && form.PasswordConfirmation != "" {
			errs["password_confirmation"] = "Passwords do not match"
		}
		h.render(c, http.StatusUnprocessableEntity, "register", h.page(c, "Create an account", registerContent{
			Name:   form.Name,
			Email:  form.Email,
			Errors: errs,
		}))
		return
	}

	s, err := h.sessions.Register(c.Request.Context(), remote.Registration{
		Name:                 form.Name,
		Email:                form.Email,
		Password:             form.Password,
		PasswordConfirmation: form.PasswordConfirmation,
	})
	if err != nil {
		content := registerContent{
			Name:  form.Name,
			Email: form.Email,
			Error: remote.Message(err, "Registration failed. Please try again."),
		}
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) {
			content.Errors = map[string]string{
				"name":     apiErr.FieldError("name"),
				"email":    apiErr.FieldError("email"),
				"password": apiErr.FieldError("password"),
			}
		}
		h.render(c, http.StatusUnprocessableEntity, "register", h.page(c, "Create an account", content))
		return
	}

	if !h.startSession(c, s) {
		return
	}
	h.succeedAndRedirect(c, "Welcome, "+s.User.Name, access.DefaultPath(s.User))
}

// Logout always ends the local session, even if the API call fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), currentSession(c)); err != nil {
		h.log.Error("[AUTH] failed to delete session: %v", err)
	}
	clearSessionCookie(c, h.secure)
	c.Redirect(http.StatusFound, access.LoginPath)
}

func (h *AuthHandler) startSession(c *gin.Context, s *session.Session) bool {
	cookie, err := h.sessions.Cookie(s)
	if err != nil {
		h.log.Error("[AUTH] failed to sign session cookie: %v", err)
		h.renderError(c, http.StatusInternalServerError, remote.DefaultErrorMessage)
		return false
	}
	setSessionCookie(c, cookie, int(h.sessions.TTL().Seconds()), h.secure)
	c.Set(sessionKey, s)
	return true
}
