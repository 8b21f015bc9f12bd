package broadcast

import "time"

// Broadcast uses a plain nullable deleted_at so soft-deleted rows stay visible to history queries.
type Broadcast struct {
	ID             int64      `gorm:"primaryKey"`
	Title          string     `gorm:"column:title;not null"`
	Message        string     `gorm:"column:message;type:text;not null"`
	Priority       string     `gorm:"column:priority;not null;default:normal"`
	TargetAudience string     `gorm:"column:target_audience;not null;default:all"`
	ExpiresAt      *time.Time `gorm:"column:expires_at"`
	CreatedBy      *int64     `gorm:"column:created_by"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at"`
}

func (Broadcast) TableName() string {
	return "broadcasts"
}
