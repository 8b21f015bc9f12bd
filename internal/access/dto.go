package access

type DashboardResponse struct {
	UserID       int64                 `json:"user_id"`
	UserType     string                `json:"user_type"`
	Sections     []Section             `json:"sections"`
	Applications []ResolvedApplication `json:"applications"`
}

type PrivilegesResponse struct {
	UserID         int64   `json:"user_id"`
	HasPrivilege   bool    `json:"has_privilege"`
	ApplicationIDs []int64 `json:"application_ids"`
}

type ReplacePrivilegesDTO struct {
	ApplicationIDs []int64 `json:"application_ids"`
	HasPrivilege   *bool   `json:"has_privilege"`
}

type TogglePermissionDTO struct {
	Enabled *bool `json:"enabled"`
}

type ApplicationRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

type DepartmentPermissions struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	AllowedApps []string        `json:"allowed_apps"`
	Permissions map[string]bool `json:"permissions"`
}

type PermissionMatrix struct {
	Applications []ApplicationRef        `json:"applications"`
	Departments  []DepartmentPermissions `json:"departments"`
}
