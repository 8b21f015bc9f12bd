package access

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/frahmantamala/employee-portal/internal"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

var (
	ErrUserNotFound        = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrDepartmentNotFound  = internal.NewNotFoundError("department not found", internal.ErrCodeNotFound)
	ErrApplicationNotFound = internal.NewNotFoundError("application not found", internal.ErrCodeNotFound)
)

type RepositoryAPI interface {
	GetUser(ctx context.Context, userID int64) (*userDatamodel.User, error)
	ListDepartments(ctx context.Context) ([]*departmentDatamodel.Department, error)
	GetDepartment(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	UpdateDepartmentApps(ctx context.Context, id int64, allowedApps string) error
	ListApplications(ctx context.Context) ([]*applicationDatamodel.Application, error)
	ListGrants(ctx context.Context, userID int64) ([]*userDatamodel.UserPrivilege, error)
	ReplaceGrants(ctx context.Context, userID int64, applicationIDs []int64, hasPrivilege bool) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// UserApplications resolves the dashboard for userID.
func (s *Service) UserApplications(ctx context.Context, actor *internal.User, userID int64) (*DashboardResponse, error) {
	if !actor.CanActOn(userID) {
		return nil, internal.ErrNotOwner
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	departments, applications, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	var grants []Grant
	if !internal.IsAdminRole(u.Role) {
		rows, err := s.repo.ListGrants(ctx, userID)
		if err != nil {
			s.logger.Error("failed to load privileges", "user_id", userID, "error", err)
			return nil, fmt.Errorf("load privileges: %w", err)
		}
		for _, row := range rows {
			grants = append(grants, GrantFromDataModel(row))
		}
	}

	subject := SubjectFromDataModel(u)
	resolved := Resolve(subject, departments, applications, grants)

	label := u.Department
	if label == "" {
		label = u.Position
	}

	s.logger.Info("resolved applications", "user_id", userID, "count", len(resolved))
	return &DashboardResponse{
		UserID:       userID,
		UserType:     UserType(u.Role),
		Sections:     GroupByCategory(resolved, label),
		Applications: resolved,
	}, nil
}

// UserType is the client-facing role bucket.
func UserType(role string) string {
	if internal.IsAdminRole(role) {
		return "admin"
	}
	return "user"
}

func (s *Service) Privileges(ctx context.Context, actor *internal.User, userID int64) (*PrivilegesResponse, error) {
	if !actor.CanActOn(userID) {
		return nil, internal.ErrNotOwner
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	rows, err := s.repo.ListGrants(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load privileges", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load privileges: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ApplicationID)
	}
	return &PrivilegesResponse{UserID: userID, HasPrivilege: u.HasPrivilege, ApplicationIDs: ids}, nil
}

// ReplacePrivileges swaps the user's grant set in one transaction.
func (s *Service) ReplacePrivileges(ctx context.Context, actor *internal.User, userID int64, dto ReplacePrivilegesDTO) (*PrivilegesResponse, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	_, applications, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]struct{}, len(applications))
	for _, app := range applications {
		known[app.ID] = struct{}{}
	}

	ids := make([]int64, 0, len(dto.ApplicationIDs))
	seen := make(map[int64]struct{})
	for _, id := range dto.ApplicationIDs {
		if _, ok := known[id]; !ok {
			return nil, internal.NewValidationFieldError("application_ids", fmt.Sprintf("unknown application id %d", id), internal.ErrCodeInvalidID)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	hasPrivilege := len(ids) > 0
	if dto.HasPrivilege != nil {
		hasPrivilege = *dto.HasPrivilege
	}

	if err := s.repo.ReplaceGrants(ctx, userID, ids, hasPrivilege); err != nil {
		s.logger.Error("failed to replace privileges", "user_id", userID, "error", err)
		return nil, fmt.Errorf("replace privileges: %w", err)
	}

	s.logger.Info("privileges replaced", "user_id", userID, "count", len(ids), "actor_id", actor.ID)
	return &PrivilegesResponse{UserID: userID, HasPrivilege: hasPrivilege, ApplicationIDs: ids}, nil
}

// DepartmentPermissions builds the department x application enable map.
func (s *Service) DepartmentPermissions(ctx context.Context, actor *internal.User) (*PermissionMatrix, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	departments, applications, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	matrix := &PermissionMatrix{
		Applications: make([]ApplicationRef, 0, len(applications)),
		Departments:  make([]DepartmentPermissions, 0, len(departments)),
	}
	for _, app := range applications {
		matrix.Applications = append(matrix.Applications, ApplicationRef{ID: app.ID, Name: app.Name, Code: app.Code, Status: app.Status})
	}
	for _, dept := range departments {
		matrix.Departments = append(matrix.Departments, departmentPermissions(dept, applications))
	}
	return matrix, nil
}

// SetDepartmentPermission adds or removes appCode from the department defaults.
func (s *Service) SetDepartmentPermission(ctx context.Context, actor *internal.User, departmentID int64, appCode string, enabled bool) (*DepartmentPermissions, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	row, err := s.repo.GetDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("load department: %w", err)
	}
	if row == nil {
		return nil, ErrDepartmentNotFound
	}

	_, applications, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	var app *Application
	for i := range applications {
		if strings.EqualFold(applications[i].Code, strings.TrimSpace(appCode)) {
			app = &applications[i]
			break
		}
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	dept := DepartmentFromDataModel(row)
	codes := make([]string, 0, len(dept.AllowedApps)+1)
	present := false
	for _, code := range dept.AllowedApps {
		if strings.EqualFold(code, app.Code) {
			present = true
			if !enabled {
				continue
			}
		}
		codes = append(codes, code)
	}
	if enabled && !present {
		codes = append(codes, app.Code)
	}

	if err := s.repo.UpdateDepartmentApps(ctx, departmentID, FormatAllowedApps(codes)); err != nil {
		s.logger.Error("failed to update department permissions", "department_id", departmentID, "app_code", app.Code, "error", err)
		return nil, fmt.Errorf("update department permissions: %w", err)
	}

	s.logger.Info("department permission updated", "department_id", departmentID, "app_code", app.Code, "enabled", enabled)
	dept.AllowedApps = codes
	result := departmentPermissions(dept, applications)
	return &result, nil
}

func (s *Service) catalog(ctx context.Context) ([]Department, []Application, error) {
	deptRows, err := s.repo.ListDepartments(ctx)
	if err != nil {
		s.logger.Error("failed to load departments", "error", err)
		return nil, nil, fmt.Errorf("load departments: %w", err)
	}
	appRows, err := s.repo.ListApplications(ctx)
	if err != nil {
		s.logger.Error("failed to load applications", "error", err)
		return nil, nil, fmt.Errorf("load applications: %w", err)
	}

	departments := make([]Department, 0, len(deptRows))
	for _, row := range deptRows {
		departments = append(departments, DepartmentFromDataModel(row))
	}
	applications := make([]Application, 0, len(appRows))
	for _, row := range appRows {
		applications = append(applications, ApplicationFromDataModel(row))
	}
	return departments, applications, nil
}

func departmentPermissions(dept Department, applications []Application) DepartmentPermissions {
	enabled := make(map[string]struct{}, len(dept.AllowedApps))
	for _, code := range dept.AllowedApps {
		enabled[strings.ToUpper(code)] = struct{}{}
	}
	perms := make(map[string]bool, len(applications))
	for _, app := range applications {
		_, ok := enabled[strings.ToUpper(app.Code)]
		perms[app.Code] = ok
	}
	return DepartmentPermissions{
		ID:          dept.ID,
		Name:        dept.Name,
		Code:        dept.Code,
		AllowedApps: dept.AllowedApps,
		Permissions: perms,
	}
}
