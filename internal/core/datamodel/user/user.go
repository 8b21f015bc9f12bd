package user

import "time"

type User struct {
	ID                int64      `gorm:"primaryKey"`
	Name              string     `gorm:"column:name;not null"`
	Email             string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash      string     `gorm:"column:password_hash;not null"`
	Role              string     `gorm:"column:role;not null"`
	Department        string     `gorm:"column:department"`
	Position          string     `gorm:"column:position"`
	Status            string     `gorm:"column:status;not null;default:active"`
	Avatar            *string    `gorm:"column:avatar"`
	HasPrivilege      bool       `gorm:"column:has_privilege;not null;default:false"`
	PasswordChangedAt *time.Time `gorm:"column:password_changed_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserPrivilege is an explicit per-user application grant.
type UserPrivilege struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_privileges_user_app"`
	ApplicationID int64     `gorm:"column:application_id;not null;uniqueIndex:idx_user_privileges_user_app"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (UserPrivilege) TableName() string {
	return "user_privileges"
}
