package department

import "time"

type Department struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Code        string    `gorm:"column:code"`
	Color       string    `gorm:"column:color"`
	AllowedApps string    `gorm:"column:allowed_apps;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Department) TableName() string {
	return "departments"
}
