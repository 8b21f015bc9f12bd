package internal

import (
	"context"
	"strings"
	"time"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// AdminRole is the role name that bypasses department and privilege checks.
const AdminRole = "admin"

// User is the authenticated principal attached to a request context.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Department  string   `json:"department"`
	Position    string   `json:"position"`
	SessionID   int64    `json:"session_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && IsAdminRole(u.Role)
}

// CanActOn reports whether the principal may act on records owned by userID.
func (u *User) CanActOn(userID int64) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.ID == userID
}

func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdminRole compares a role name or code against the admin role, ignoring case.
func IsAdminRole(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), AdminRole)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
