package auth

import (
	"github.com/frahmantamala/employee-portal/internal"
)

// Permission tags stored on roles.
const (
	PermissionBroadcastManage = "broadcast.manage"
	PermissionSessionManage   = "session.manage"
	PermissionUserManage      = "user.manage"
)

type PermissionChecker interface {
	IsAdmin(user *internal.User) bool
	HasPermission(user *internal.User, permission string) bool
	HasAnyPermission(user *internal.User, permissions []string) bool
}

// DefaultPermissionChecker lets admins through everything and everyone else by role tag.
type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) IsAdmin(user *internal.User) bool {
	return user.IsAdmin()
}

func (c *DefaultPermissionChecker) HasPermission(user *internal.User, permission string) bool {
	return c.HasAnyPermission(user, []string{permission})
}

func (c *DefaultPermissionChecker) HasAnyPermission(user *internal.User, permissions []string) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	for _, p := range permissions {
		if user.HasPermission(p) {
			return true
		}
	}
	return false
}
