package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "propmedia_session"
	sessionKey    = "session"
)

// SessionLoader resolves the session cookie. Requests without a usable
// session continue anonymously; a bad cookie is removed.
func SessionLoader(sessions *session.Manager, secure bool, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		id, err := sessions.SessionID(cookie)
		if err != nil {
			clearSessionCookie(c, secure)
			c.Next()
			return
		}

		s, err := sessions.Load(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error("[SESSION] failed to load %s: %v", id, err)
			}
			clearSessionCookie(c, secure)
			c.Next()
			return
		}

		ctx := session.ContextWithID(c.Request.Context(), s.ID)
		ctx = remote.WithToken(ctx, s.Token)
		c.Request = c.Request.WithContext(ctx)
		c.Set(sessionKey, s)
		if u := s.CurrentUser(); u != nil {
			c.Set("user_id", strconv.FormatInt(u.ID, 10))
			c.Set("user_role", string(u.Role))
		}
		if s.Loading() {
			sessions.RevalidateAsync(s)
		}

		c.Next()
	}
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			redirectToLogin(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets through users allowed by can. Anyone else who is signed
// in goes to their own default page rather than to the login page.
func RequireRole(can func(*entity.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			redirectToLogin(c)
			c.Abort()
			return
		}
		if !can(user) {
			c.Redirect(http.StatusFound, access.DefaultPath(user))
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRoleJSON(can func(*entity.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		if !can(user) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	target := access.LoginPath
	if c.Request.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusFound, target)
}

func currentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

func currentUser(c *gin.Context) *entity.User {
	return currentSession(c).CurrentUser()
}

func setSessionCookie(c *gin.Context, value string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, maxAge, "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	setSessionCookie(c, "", -1, secure)
}
