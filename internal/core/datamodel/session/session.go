package session

import "time"

// Session is one active login. The row is removed on logout or force logout.
type Session struct {
	ID         int64     `gorm:"primaryKey" db:"id"`
	UserID     int64     `gorm:"column:user_id;not null;index" db:"user_id"`
	UserName   string    `gorm:"column:user_name" db:"user_name"`
	UserEmail  string    `gorm:"column:user_email" db:"user_email"`
	Department string    `gorm:"column:department" db:"department"`
	Role       string    `gorm:"column:role" db:"role"`
	IPAddress  string    `gorm:"column:ip_address" db:"ip_address"`
	AppName    string    `gorm:"column:app_name" db:"app_name"`
	LoginAt    time.Time `gorm:"column:login_at;not null" db:"login_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// LoginHistory outlives the session row it was recorded for.
type LoginHistory struct {
	ID           int64      `gorm:"primaryKey"`
	UserID       int64      `gorm:"column:user_id;not null;index"`
	SessionID    int64      `gorm:"column:session_id;index"`
	IPAddress    string     `gorm:"column:ip_address"`
	AppName      string     `gorm:"column:app_name"`
	LoginAt      time.Time  `gorm:"column:login_at;not null"`
	LogoutAt     *time.Time `gorm:"column:logout_at"`
	LogoutReason string     `gorm:"column:logout_reason"`
}

func (LoginHistory) TableName() string {
	return "login_history"
}
