package menu

import "time"

type Menu struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Path      string    `gorm:"column:path;not null"`
	Icon      string    `gorm:"column:icon"`
	ParentID  *int64    `gorm:"column:parent_id"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	AdminOnly bool      `gorm:"column:admin_only;not null;default:false"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Menu) TableName() string {
	return "menus"
}
