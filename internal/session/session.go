package session

import (
	"time"

	sessionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/session"
)

type Session struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	IPAddress  string    `json:"ip_address"`
	AppName    string    `json:"app_name"`
	LoginAt    time.Time `json:"login_at"`
}

// Filter narrows the admin session list. Query matches name or email.
type Filter struct {
	Query      string
	Department string
	Page       int
	PageSize   int
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

const maxPageSize = 100

func (f Filter) normalize(defaultPageSize int) Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	return f
}

// SessionExpired tells the client to lock the UI.
type SessionExpired struct {
	Reason string `json:"reason"`
}

const (
	ReasonForceLogout    = "force_logout"
	ReasonSessionTimeout = "session_timeout"
)

type TerminateResult struct {
	SessionID         int64           `json:"session_id"`
	UserID            int64           `json:"user_id,omitempty"`
	Deleted           bool            `json:"deleted"`
	AlreadyGone       bool            `json:"already_gone"`
	RemainingSessions int             `json:"remaining_sessions"`
	SessionExpired    *SessionExpired `json:"session_expired,omitempty"`
}

type TerminateAllResult struct {
	UserID         int64           `json:"user_id"`
	Deleted        int64           `json:"deleted"`
	SessionExpired *SessionExpired `json:"session_expired,omitempty"`
}

// ActivityEntry is one row of a user's login activity, live or historical.
type ActivityEntry struct {
	SessionID    int64      `json:"session_id"`
	IPAddress    string     `json:"ip_address"`
	AppName      string     `json:"app_name"`
	LoginAt      time.Time  `json:"login_at"`
	LogoutAt     *time.Time `json:"logout_at,omitempty"`
	LogoutReason string     `json:"logout_reason,omitempty"`
	Active       bool       `json:"active"`
	Current      bool       `json:"is_current"`
}

func FromDataModel(s *sessionDatamodel.Session) *Session {
	return &Session{
		ID:         s.ID,
		UserID:     s.UserID,
		UserName:   s.UserName,
		UserEmail:  s.UserEmail,
		Department: s.Department,
		Role:       s.Role,
		IPAddress:  s.IPAddress,
		AppName:    s.AppName,
		LoginAt:    s.LoginAt,
	}
}

func ToDataModel(s *Session) *sessionDatamodel.Session {
	return &sessionDatamodel.Session{
		ID:         s.ID,
		UserID:     s.UserID,
		UserName:   s.UserName,
		UserEmail:  s.UserEmail,
		Department: s.Department,
		Role:       s.Role,
		IPAddress:  s.IPAddress,
		AppName:    s.AppName,
		LoginAt:    s.LoginAt,
	}
}
