package access

import (
	"encoding/json"
	"strings"

	"github.com/frahmantamala/employee-portal/internal"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Source records why an application is visible to a user.
type Source string

const (
	SourceAdmin      Source = "admin"
	SourceDepartment Source = "department"
	SourcePrivilege  Source = "privilege"
)

// Subject is the part of a user the resolver looks at.
type Subject struct {
	ID         int64
	Role       string
	Department string
	Position   string
	Status     string
}

func (s Subject) IsAdmin() bool {
	return internal.IsAdminRole(s.Role)
}

func (s Subject) IsInactive() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), StatusInactive)
}

type Department struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Color       string   `json:"color"`
	AllowedApps []string `json:"allowed_apps"`
}

type Application struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

func (a Application) IsActive() bool {
	return strings.EqualFold(a.Status, StatusActive)
}

type Grant struct {
	UserID        int64
	ApplicationID int64
}

type ResolvedApplication struct {
	Application
	Launchable bool   `json:"launchable"`
	Source     Source `json:"source"`
}

// Section is one category block of the dashboard.
type Section struct {
	Category     string                `json:"category"`
	Label        string                `json:"label"`
	Applications []ResolvedApplication `json:"applications"`
}

// ParseAllowedApps accepts a JSON array or a comma separated list.
// Malformed JSON falls back to splitting on commas.
func ParseAllowedApps(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return cleanCodes(items)
		}
		raw = strings.Trim(raw, "[]")
	}

	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"'`)
	}
	return cleanCodes(parts)
}

func cleanCodes(items []string) []string {
	codes := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			codes = append(codes, item)
		}
	}
	return codes
}

// FormatAllowedApps is the canonical storage encoding.
func FormatAllowedApps(codes []string) string {
	b, err := json.Marshal(cleanCodes(codes))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Resolve returns the applications the subject may see, in catalog order.
func Resolve(subject Subject, departments []Department, applications []Application, grants []Grant) []ResolvedApplication {
	resolved := make([]ResolvedApplication, 0)
	if subject.IsInactive() {
		return resolved
	}

	if subject.IsAdmin() {
		for _, app := range applications {
			resolved = append(resolved, ResolvedApplication{
				Application: app,
				Launchable:  app.IsActive(),
				Source:      SourceAdmin,
			})
		}
		return resolved
	}

	defaults := make(map[string]struct{})
	if dept, ok := FindDepartment(departments, subject.Department); ok {
		for _, code := range dept.AllowedApps {
			defaults[strings.ToUpper(code)] = struct{}{}
		}
	}

	granted := make(map[int64]struct{})
	for _, g := range grants {
		if g.UserID == subject.ID {
			granted[g.ApplicationID] = struct{}{}
		}
	}

	for _, app := range applications {
		source := SourceDepartment
		if _, ok := defaults[strings.ToUpper(app.Code)]; !ok {
			if _, ok := granted[app.ID]; !ok {
				continue
			}
			source = SourcePrivilege
		}
		resolved = append(resolved, ResolvedApplication{
			Application: app,
			Launchable:  app.IsActive(),
			Source:      source,
		})
	}
	return resolved
}

// IsLaunchable checks a single application against the subject's access.
func IsLaunchable(subject Subject, app Application, departments []Department, grants []Grant) bool {
	resolved := Resolve(subject, departments, []Application{app}, grants)
	return len(resolved) == 1 && resolved[0].Launchable
}

// FindDepartment matches by name, then by code, ignoring case.
func FindDepartment(departments []Department, name string) (Department, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Department{}, false
	}
	for _, d := range departments {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	for _, d := range departments {
		if d.Code != "" && strings.EqualFold(d.Code, name) {
			return d, true
		}
	}
	return Department{}, false
}

// GroupByCategory keeps the first-seen category order and relabels the catch-all category.
func GroupByCategory(resolved []ResolvedApplication, departmentOrPosition string) []Section {
	sections := make([]Section, 0)
	index := make(map[string]int)

	for _, app := range resolved {
		key := strings.ToLower(strings.TrimSpace(app.Category))
		if isCatchAll(key) {
			key = "other"
		}
		i, ok := index[key]
		if !ok {
			i = len(sections)
			index[key] = i
			sections = append(sections, Section{
				Category: app.Category,
				Label:    CategoryLabel(app.Category, departmentOrPosition),
			})
		}
		sections[i].Applications = append(sections[i].Applications, app)
	}
	return sections
}

func isCatchAll(category string) bool {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "", "other", "others":
		return true
	}
	return false
}

func CategoryLabel(category, departmentOrPosition string) string {
	if isCatchAll(category) {
		if departmentOrPosition = strings.TrimSpace(departmentOrPosition); departmentOrPosition != "" {
			return departmentOrPosition + " Department"
		}
		return "Other"
	}
	return category
}

func SubjectFromDataModel(u *userDatamodel.User) Subject {
	return Subject{
		ID:         u.ID,
		Role:       u.Role,
		Department: u.Department,
		Position:   u.Position,
		Status:     u.Status,
	}
}

func DepartmentFromDataModel(d *departmentDatamodel.Department) Department {
	return Department{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Color:       d.Color,
		AllowedApps: ParseAllowedApps(d.AllowedApps),
	}
}

func ApplicationFromDataModel(a *applicationDatamodel.Application) Application {
	return Application{
		ID:          a.ID,
		Name:        a.Name,
		Code:        a.Code,
		Description: a.Description,
		URL:         a.URL,
		Icon:        a.Icon,
		Category:    a.Category,
		Status:      a.Status,
	}
}

func GrantFromDataModel(p *userDatamodel.UserPrivilege) Grant {
	return Grant{UserID: p.UserID, ApplicationID: p.ApplicationID}
}
