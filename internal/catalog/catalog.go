package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/access"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	menuDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/menu"
	positionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/position"
	roleDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/role"
)

// System roles keep their name and code and can never be deactivated or deleted.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

var (
	ErrDepartmentNotFound  = internal.NewNotFoundError("department not found", internal.ErrCodeNotFound)
	ErrApplicationNotFound = internal.NewNotFoundError("application not found", internal.ErrCodeNotFound)
	ErrRoleNotFound        = internal.NewNotFoundError("role not found", internal.ErrCodeNotFound)
	ErrPositionNotFound    = internal.NewNotFoundError("position not found", internal.ErrCodeNotFound)
	ErrMenuNotFound        = internal.NewNotFoundError("menu not found", internal.ErrCodeNotFound)
	ErrSystemRole          = internal.NewForbiddenError("system roles cannot be renamed, deactivated or deleted", internal.ErrCodeSystemRole)
)

func IsSystemRole(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	return code == RoleAdmin || code == RoleUser
}

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Color       string    `json:"color"`
	AllowedApps []string  `json:"allowed_apps"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Application struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Icon        string    `json:"icon"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Position struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Menu struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Icon      string    `json:"icon"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	SortOrder int       `json:"sort_order"`
	AdminOnly bool      `json:"admin_only"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisibleMenus drops inactive entries, and admin-only entries for everyone but admins.
func VisibleMenus(menus []*Menu, isAdmin bool) []*Menu {
	visible := make([]*Menu, 0, len(menus))
	for _, m := range menus {
		if !m.IsActive {
			continue
		}
		if m.AdminOnly && !isAdmin {
			continue
		}
		visible = append(visible, m)
	}
	return visible
}

// ParsePermissions reads the JSON array stored on roles. Anything else yields no tags.
func ParsePermissions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var perms []string
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return []string{}
	}
	return perms
}

func FormatPermissions(perms []string) string {
	cleaned := make([]string, 0, len(perms))
	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		cleaned = append(cleaned, p)
	}
	b, err := json.Marshal(cleaned)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func DepartmentFromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Color:       d.Color,
		AllowedApps: access.ParseAllowedApps(d.AllowedApps),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ApplicationFromDataModel(a *applicationDatamodel.Application) *Application {
	return &Application{
		ID:          a.ID,
		Name:        a.Name,
		Code:        a.Code,
		Description: a.Description,
		URL:         a.URL,
		Icon:        a.Icon,
		Category:    a.Category,
		Status:      a.Status,
		SortOrder:   a.SortOrder,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func RoleFromDataModel(r *roleDatamodel.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		Permissions: ParsePermissions(r.Permissions),
		IsActive:    r.IsActive,
		IsSystem:    IsSystemRole(r.Code),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func PositionFromDataModel(p *positionDatamodel.Position) *Position {
	return &Position{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func MenuFromDataModel(m *menuDatamodel.Menu) *Menu {
	return &Menu{
		ID:        m.ID,
		Name:      m.Name,
		Path:      m.Path,
		Icon:      m.Icon,
		ParentID:  m.ParentID,
		SortOrder: m.SortOrder,
		AdminOnly: m.AdminOnly,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
