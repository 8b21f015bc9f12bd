package auth

import (
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	AppName  string `json:"app_name,omitempty"`
}

func (d *LoginDTO) Validate() *internal.AppError {
	d.Email = validation.NormalizeEmail(d.Email)

	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

// LoginMeta is request context the handler adds to a login.
type LoginMeta struct {
	IPAddress string
	AppName   string
}

type LoginResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Avatar     *string   `json:"avatar"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	UserType   string    `json:"user_type"`
	SessionID  int64     `json:"session_id,omitempty"`
}
