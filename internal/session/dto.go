package session

import (
	"strings"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/core/common/validation"
)

type CreateSessionDTO struct {
	UserID     int64  `json:"user_id"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
	Department string `json:"department"`
	Role       string `json:"role"`
	IPAddress  string `json:"ip_address"`
	AppName    string `json:"app_name"`
}

func (d *CreateSessionDTO) Validate() *internal.AppError {
	d.UserEmail = validation.NormalizeEmail(d.UserEmail)
	d.UserName = strings.TrimSpace(d.UserName)

	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required()
	v.Field("user_email", d.UserEmail).Email()
	v.Field("app_name", d.AppName).MaxLength(100)
	return v.Validate()
}

type ListResponse struct {
	Sessions   []*Session `json:"sessions"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
