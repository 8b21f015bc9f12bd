package user

import (
	"strings"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/core/common/validation"
)

type ListFilter struct {
	Query      string
	Department string
	Status     string
}

type CreateUserDTO struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	Position   string  `json:"position"`
	Status     string  `json:"status"`
	Avatar     *string `json:"avatar,omitempty"`
}

func (d *CreateUserDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = validation.NormalizeEmail(d.Email)
	d.Role = strings.TrimSpace(d.Role)
	if d.Role == "" {
		d.Role = DefaultRole
	}
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	if d.Status == "" {
		d.Status = StatusActive
	}

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(8).MaxLength(72)
	v.Field("status", d.Status).OneOf(internal.ErrCodeInvalidStatus, StatusActive, StatusInactive)
	return v.Validate()
}

// UpdateUserDTO is a partial update; nil fields are left alone.
type UpdateUserDTO struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Password   *string `json:"password,omitempty"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Status     *string `json:"status,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
}

func (d *UpdateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		*d.Name = strings.TrimSpace(*d.Name)
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Email != nil {
		*d.Email = validation.NormalizeEmail(*d.Email)
		v.Field("email", *d.Email).Required().Email()
	}
	if d.Password != nil && *d.Password != "" {
		v.Field("password", *d.Password).MinLength(8).MaxLength(72)
	}
	if d.Status != nil {
		*d.Status = strings.ToLower(strings.TrimSpace(*d.Status))
		v.Field("status", *d.Status).OneOf(internal.ErrCodeInvalidStatus, StatusActive, StatusInactive)
	}
	return v.Validate()
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (d *ChangePasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("currentPassword", d.CurrentPassword).Required()
	v.Field("newPassword", d.NewPassword).Required().MinLength(8).MaxLength(72)
	return v.Validate()
}
