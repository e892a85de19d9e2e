package http

import (
	"time"

	"propmedia/pkg/middleware"
	"propmedia/services/web/internal/access"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Auth       *AuthHandler
	Public     *PublicHandler
	Posts      *PostHandler
	Moderation *ModerationHandler
	Contacts   *ContactHandler
	Stream     *StreamHandler
}

type Limits struct {
	Redis  *redis.Client
	Login  int
	Assist int
}

// limit is a no-op without redis or with a non-positive limit.
func (l Limits) limit(n int) gin.HandlerFunc {
	if l.Redis == nil || n <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimitMiddleware(l.Redis, n, time.Minute)
}

// RegisterRoutes mounts every page and JSON endpoint. loader must be the
// session loading middleware.
func RegisterRoutes(r *gin.Engine, h Handlers, loader gin.HandlerFunc, limits Limits) {
	r.Use(loader)

	r.GET("/", h.Public.Home)
	r.GET("/category/:category", h.Public.Category)
	r.GET("/p/:id", h.Public.Post)
	r.GET("/contact", h.Contacts.Page)
	r.POST("/contact", limits.limit(limits.Login), h.Contacts.Submit)

	r.GET("/login", h.Auth.LoginPage)
	r.POST("/login", limits.limit(limits.Login), h.Auth.Login)
	r.GET("/register", h.Auth.RegisterPage)
	r.POST("/register", limits.limit(limits.Login), h.Auth.Register)
	r.POST("/logout", h.Auth.Logout)

	staff := r.Group("")
	staff.Use(RequireAuth(), RequireRole(access.CanCreatePost))
	{
		staff.GET("/admin/posts/new", h.Posts.NewPage)
		staff.POST("/admin/posts", h.Posts.Create)
		staff.POST("/admin/posts/assist", limits.limit(limits.Assist), h.Posts.Assist)
		staff.GET("/admin/posts/:id/edit", h.Posts.EditPage)
		staff.POST("/admin/posts/:id", h.Posts.Update)
		staff.POST("/admin/posts/:id/delete", h.Posts.Delete)
		staff.POST("/admin/media/:id/delete", h.Posts.DeleteMedia)
	}

	admin := r.Group("/admin")
	admin.Use(RequireRole(access.CanManagePosts))
	{
		admin.GET("/posts", h.Posts.Dashboard)
	}
	r.GET("/admin/contacts", RequireRole(access.CanViewContacts), h.Contacts.List)

	moderation := r.Group("/moderation")
	moderation.Use(RequireRole(access.CanModerate))
	{
		moderation.GET("", h.Moderation.Queue)
		moderation.POST("/:id/approve", h.Moderation.Approve)
		moderation.POST("/:id/reject", h.Moderation.Reject)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/events/posts", h.Stream.Posts)
		api.POST("/ai/generate", RequireRoleJSON(access.CanCreatePost), limits.limit(limits.Assist), h.Posts.Generate)
	}
}
