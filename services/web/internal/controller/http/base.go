package http

import (
	"net/http"
	"strconv"
	"strings"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"

	"github.com/gin-gonic/gin"
)

// base is shared by every page handler.
type base struct {
	renderer *Renderer
	sessions *session.Manager
	secure   bool
	log      *logger.Logger
}

func newBase(renderer *Renderer, sessions *session.Manager, secure bool, log *logger.Logger) base {
	return base{renderer: renderer, sessions: sessions, secure: secure, log: log}
}

func (b base) page(c *gin.Context, title string, content interface{}) Page {
	s := currentSession(c)
	return Page{
		Title:   title,
		User:    s.CurrentUser(),
		Loading: s.Loading(),
		Flashes: b.sessions.PopFlashes(c.Request.Context(), s),
		Content: content,
	}
}

func (b base) render(c *gin.Context, status int, name string, p Page) {
	body, err := b.renderer.Page(name, p)
	if err != nil {
		b.log.Error("[RENDER] %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong while rendering this page.")
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

type errorContent struct {
	Heading  string
	Message  string
	RetryURL string
}

func (b base) renderError(c *gin.Context, status int, message string) {
	heading := http.StatusText(status)
	retry := ""
	if c.Request.Method == http.MethodGet {
		retry = c.Request.URL.RequestURI()
	}
	b.render(c, status, "error", b.page(c, heading, errorContent{Heading: heading, Message: message, RetryURL: retry}))
}

func (b base) flash(c *gin.Context, kind, message string) {
	if err := b.sessions.AddFlash(c.Request.Context(), currentSession(c), kind, message); err != nil {
		b.log.Warn("[SESSION] failed to store flash: %v", err)
	}
}

// unauthorized handles a 401 from the API. The client hook has already
// cleared the stored session; the browser is sent to sign in again.
func (b base) unauthorized(c *gin.Context, err error) bool {
	if !remote.IsUnauthorized(err) {
		return false
	}
	clearSessionCookie(c, b.secure)
	redirectToLogin(c)
	return true
}

// failAndRedirect flashes the API's message and goes back to target.
func (b base) failAndRedirect(c *gin.Context, err error, fallback, target string) {
	if b.unauthorized(c, err) {
		return
	}
	b.log.Warn("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	b.flash(c, session.FlashError, remote.Message(err, fallback))
	c.Redirect(http.StatusFound, target)
}

func (b base) succeedAndRedirect(c *gin.Context, message, target string) {
	b.flash(c, session.FlashSuccess, message)
	c.Redirect(http.StatusFound, target)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// safeNext keeps redirects on this site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || next == access.LoginPath {
		return fallback
	}
	return next
}
