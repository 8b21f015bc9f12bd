package user

import (
	"strings"
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	DefaultRole = "USER"
)

type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	Department        string     `json:"department"`
	Position          string     `json:"position"`
	Status            string     `json:"status"`
	Avatar            *string    `json:"avatar,omitempty"`
	HasPrivilege      bool       `json:"has_privilege"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return !strings.EqualFold(strings.TrimSpace(u.Status), StatusInactive)
}

func (u *User) IsAdmin() bool {
	return internal.IsAdminRole(u.Role)
}

// Profile is a user plus the password cooldown hint shown on the profile page.
type Profile struct {
	*User
	PasswordChange PasswordChangeStatus `json:"password_change"`
}

var (
	ErrUserNotFound   = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrEmailTaken     = internal.NewConflictError("email is already registered", internal.ErrCodeEmailTaken)
	ErrWrongPassword  = internal.NewValidationError("current password is incorrect", internal.ErrCodeWrongPassword)
	ErrPasswordReused = internal.NewValidationError("new password must differ from the current password", internal.ErrCodePasswordReused)
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Role:              u.Role,
		Department:        u.Department,
		Position:          u.Position,
		Status:            u.Status,
		Avatar:            u.Avatar,
		HasPrivilege:      u.HasPrivilege,
		PasswordChangedAt: u.PasswordChangedAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Role:              u.Role,
		Department:        u.Department,
		Position:          u.Position,
		Status:            u.Status,
		Avatar:            u.Avatar,
		HasPrivilege:      u.HasPrivilege,
		PasswordChangedAt: u.PasswordChangedAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
