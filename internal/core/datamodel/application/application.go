package application

import "time"

type Application struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	URL         string    `gorm:"column:url"`
	Icon        string    `gorm:"column:icon"`
	Category    string    `gorm:"column:category"`
	Status      string    `gorm:"column:status;not null;default:active"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
