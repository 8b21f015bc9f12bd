package catalog

import (
	"regexp"
	"strings"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/access"
	"github.com/frahmantamala/employee-portal/internal/core/common/validation"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeCodes(codes []string) []string {
	if codes == nil {
		return nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if c = normalizeCode(c); c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func codeFormat(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		v, _ := value.(string)
		if v == "" || codePattern.MatchString(v) {
			return nil
		}
		return internal.NewValidationFieldError(field, field+" may only contain A-Z, 0-9 and _", internal.ErrCodeValidationFailed)
	}
}

type DepartmentDTO struct {
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Color       string   `json:"color"`
	AllowedApps []string `json:"allowed_apps"`
}

func (d *DepartmentDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = normalizeCode(d.Code)
	d.Color = strings.TrimSpace(d.Color)
	d.AllowedApps = normalizeCodes(d.AllowedApps)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("code", d.Code).MaxLength(20).Custom(codeFormat("code"))
	v.Field("color", d.Color).HexColor()
	return v.Validate()
}

type ApplicationDTO struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	SortOrder   int    `json:"sort_order"`
}

func (d *ApplicationDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = normalizeCode(d.Code)
	d.Category = strings.ToLower(strings.TrimSpace(d.Category))
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	if d.Status == "" {
		d.Status = access.StatusActive
	}

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("code", d.Code).Required().MaxLength(50).Custom(codeFormat("code"))
	v.Field("url", d.URL).MaxLength(500)
	v.Field("status", d.Status).OneOf(internal.ErrCodeInvalidStatus, access.StatusActive, access.StatusInactive)
	return v.Validate()
}

type RoleDTO struct {
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

func (d *RoleDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = normalizeCode(d.Code)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("code", d.Code).Required().MaxLength(50).Custom(codeFormat("code"))
	return v.Validate()
}

type PositionDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (d *PositionDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	return v.Validate()
}

type MenuDTO struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Icon      string `json:"icon"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	SortOrder int    `json:"sort_order"`
	AdminOnly bool   `json:"admin_only"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

func (d *MenuDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Path = strings.TrimSpace(d.Path)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("path", d.Path).Required().Custom(func(value interface{}) *internal.AppError {
		if p, _ := value.(string); p != "" && !strings.HasPrefix(p, "/") {
			return internal.NewValidationFieldError("path", "path must start with /", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	return v.Validate()
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
