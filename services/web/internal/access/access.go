// Package access holds every role and ownership rule of the web front end.
// Views and handlers ask these functions instead of comparing roles.
package access

import "propmedia/services/web/internal/entity"

const (
	LoginPath     = "/login"
	AdminHome     = "/admin/posts"
	ModeratorHome = "/moderation"
)

func HasRole(u *entity.User, roles ...entity.Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func CanModerate(u *entity.User) bool {
	return HasRole(u, entity.RoleAdmin, entity.RoleModerator)
}

// CanCreatePost is true for any signed-in staff member.
func CanCreatePost(u *entity.User) bool {
	return CanModerate(u)
}

func CanEditPost(u *entity.User, p *entity.Post) bool {
	if u == nil || p == nil {
		return false
	}
	return u.Role == entity.RoleAdmin || u.ID == p.UserID
}

// CanDeletePost is owner only.
func CanDeletePost(u *entity.User, p *entity.Post) bool {
	return u != nil && p != nil && u.ID == p.UserID
}

func CanManagePosts(u *entity.User) bool {
	return HasRole(u, entity.RoleAdmin)
}

func CanViewContacts(u *entity.User) bool {
	return HasRole(u, entity.RoleAdmin)
}

// DefaultPath is where a user lands after sign-in or when refused a page.
func DefaultPath(u *entity.User) string {
	switch {
	case u == nil:
		return LoginPath
	case u.Role == entity.RoleAdmin:
		return AdminHome
	case u.Role == entity.RoleModerator:
		return ModeratorHome
	}
	return "/"
}
