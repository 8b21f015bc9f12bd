package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/access"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	menuDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/menu"
	positionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/position"
	roleDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/role"
)

// Store is the row-level CRUD every catalog table supports.
// Get and FindBy return nil without error for missing rows; FindBy compares case-insensitively.
type Store[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	FindBy(ctx context.Context, column, value string) (*T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type Stores struct {
	Departments  Store[departmentDatamodel.Department]
	Applications Store[applicationDatamodel.Application]
	Roles        Store[roleDatamodel.Role]
	Positions    Store[positionDatamodel.Position]
	Menus        Store[menuDatamodel.Menu]
}

type Service struct {
	stores Stores
	logger *slog.Logger
}

func NewService(stores Stores, logger *slog.Logger) *Service {
	return &Service{
		stores: stores,
		logger: logger,
	}
}

func requireAdmin(actor *internal.User) error {
	if !actor.IsAdmin() {
		return internal.ErrAdminRequired
	}
	return nil
}

func listAll[T any, D any](ctx context.Context, store Store[T], convert func(*T) *D) ([]*D, error) {
	rows, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*D, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert(row))
	}
	return out, nil
}

func loadRow[T any](ctx context.Context, store Store[T], id int64, notFound error) (*T, error) {
	row, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, notFound
	}
	return row, nil
}

// ensureUnique fails when another row already holds value in column.
func ensureUnique[T any](ctx context.Context, store Store[T], column, value string, selfID int64, idOf func(*T) int64) error {
	if value == "" {
		return nil
	}
	existing, err := store.FindBy(ctx, column, value)
	if err != nil {
		return err
	}
	if existing != nil && idOf(existing) != selfID {
		return internal.NewConflictError(fmt.Sprintf("%s %q is already in use", column, value), internal.ErrCodeDuplicate)
	}
	return nil
}

// ----------------- DEPARTMENTS -----------------

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	departments, err := listAll(ctx, s.stores.Departments, DepartmentFromDataModel)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

func (s *Service) CreateDepartment(ctx context.Context, actor *internal.User, dto DepartmentDTO) (*Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	if err := ensureUnique(ctx, s.stores.Departments, "name", dto.Name, 0, departmentID); err != nil {
		return nil, err
	}

	row := &departmentDatamodel.Department{
		Name:        dto.Name,
		Code:        dto.Code,
		Color:       dto.Color,
		AllowedApps: access.FormatAllowedApps(dto.AllowedApps),
	}
	if err := s.stores.Departments.Create(ctx, row); err != nil {
		s.logger.Error("failed to create department", "name", dto.Name, "error", err)
		return nil, fmt.Errorf("create department: %w", err)
	}
	return DepartmentFromDataModel(row), nil
}

func (s *Service) UpdateDepartment(ctx context.Context, actor *internal.User, id int64, dto DepartmentDTO) (*Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	row, err := loadRow(ctx, s.stores.Departments, id, ErrDepartmentNotFound)
	if err != nil {
		return nil, err
	}
	if err := ensureUnique(ctx, s.stores.Departments, "name", dto.Name, id, departmentID); err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Code = dto.Code
	row.Color = dto.Color
	if dto.AllowedApps != nil {
		row.AllowedApps = access.FormatAllowedApps(dto.AllowedApps)
	}
	if err := s.stores.Departments.Update(ctx, row); err != nil {
		s.logger.Error("failed to update department", "department_id", id, "error", err)
		return nil, fmt.Errorf("update department: %w", err)
	}
	return DepartmentFromDataModel(row), nil
}

func (s *Service) DeleteDepartment(ctx context.Context, actor *internal.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.delete(ctx, "department", id, s.stores.Departments.Delete, ErrDepartmentNotFound)
}

// ----------------- APPLICATIONS -----------------

func (s *Service) ListApplications(ctx context.Context) ([]*Application, error) {
	apps, err := listAll(ctx, s.stores.Applications, ApplicationFromDataModel)
	if err != nil {
		s.logger.Error("failed to list applications", "error", err)
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (s *Service) CreateApplication(ctx context.Context, actor *internal.User, dto ApplicationDTO) (*Application, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	if err := ensureUnique(ctx, s.stores.Applications, "code", dto.Code, 0, applicationID); err != nil {
		return nil, err
	}

	row := &applicationDatamodel.Application{}
	applyApplication(row, dto)
	if err := s.stores.Applications.Create(ctx, row); err != nil {
		s.logger.Error("failed to create application", "code", dto.Code, "error", err)
		return nil, fmt.Errorf("create application: %w", err)
	}
	return ApplicationFromDataModel(row), nil
}

func (s *Service) UpdateApplication(ctx context.Context, actor *internal.User, id int64, dto ApplicationDTO) (*Application, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	row, err := loadRow(ctx, s.stores.Applications, id, ErrApplicationNotFound)
	if err != nil {
		return nil, err
	}
	if err := ensureUnique(ctx, s.stores.Applications, "code", dto.Code, id, applicationID); err != nil {
		return nil, err
	}

	applyApplication(row, dto)
	if err := s.stores.Applications.Update(ctx, row); err != nil {
		s.logger.Error("failed to update application", "application_id", id, "error", err)
		return nil, fmt.Errorf("update application: %w", err)
	}
	return ApplicationFromDataModel(row), nil
}

func (s *Service) DeleteApplication(ctx context.Context, actor *internal.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.delete(ctx, "application", id, s.stores.Applications.Delete, ErrApplicationNotFound)
}

func applyApplication(row *applicationDatamodel.Application, dto ApplicationDTO) {
	row.Name = dto.Name
	row.Code = dto.Code
	row.Description = dto.Description
	row.URL = dto.URL
	row.Icon = dto.Icon
	row.Category = dto.Category
	row.Status = dto.Status
	row.SortOrder = dto.SortOrder
}

// ----------------- ROLES -----------------

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	roles, err := listAll(ctx, s.stores.Roles, RoleFromDataModel)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *Service) CreateRole(ctx context.Context, actor *internal.User, dto RoleDTO) (*Role, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	if err := ensureUnique(ctx, s.stores.Roles, "code", dto.Code, 0, roleID); err != nil {
		return nil, err
	}

	row := &roleDatamodel.Role{
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
		Permissions: FormatPermissions(dto.Permissions),
		IsActive:    boolOr(dto.IsActive, true),
	}
	if err := s.stores.Roles.Create(ctx, row); err != nil {
		s.logger.Error("failed to create role", "code", dto.Code, "error", err)
		return nil, fmt.Errorf("create role: %w", err)
	}
	return RoleFromDataModel(row), nil
}

// UpdateRole keeps system roles' name, code and active flag fixed.
func (s *Service) UpdateRole(ctx context.Context, actor *internal.User, id int64, dto RoleDTO) (*Role, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	row, err := loadRow(ctx, s.stores.Roles, id, ErrRoleNotFound)
	if err != nil {
		return nil, err
	}

	if IsSystemRole(row.Code) {
		renamed := dto.Code != normalizeCode(row.Code) || !strings.EqualFold(dto.Name, row.Name)
		deactivated := dto.IsActive != nil && !*dto.IsActive
		if renamed || deactivated {
			s.logger.Warn("system role change rejected", "role", row.Code, "actor_id", actor.ID)
			return nil, ErrSystemRole
		}
	}
	if err := ensureUnique(ctx, s.stores.Roles, "code", dto.Code, id, roleID); err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Code = dto.Code
	row.Description = dto.Description
	if dto.Permissions != nil {
		row.Permissions = FormatPermissions(dto.Permissions)
	}
	row.IsActive = boolOr(dto.IsActive, row.IsActive)
	if err := s.stores.Roles.Update(ctx, row); err != nil {
		s.logger.Error("failed to update role", "role_id", id, "error", err)
		return nil, fmt.Errorf("update role: %w", err)
	}
	return RoleFromDataModel(row), nil
}

func (s *Service) DeleteRole(ctx context.Context, actor *internal.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	row, err := loadRow(ctx, s.stores.Roles, id, ErrRoleNotFound)
	if err != nil {
		return err
	}
	if IsSystemRole(row.Code) {
		return ErrSystemRole
	}
	return s.delete(ctx, "role", id, s.stores.Roles.Delete, ErrRoleNotFound)
}

// ----------------- POSITIONS -----------------

func (s *Service) ListPositions(ctx context.Context) ([]*Position, error) {
	positions, err := listAll(ctx, s.stores.Positions, PositionFromDataModel)
	if err != nil {
		s.logger.Error("failed to list positions", "error", err)
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}

func (s *Service) CreatePosition(ctx context.Context, actor *internal.User, dto PositionDTO) (*Position, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	if err := ensureUnique(ctx, s.stores.Positions, "name", dto.Name, 0, positionID); err != nil {
		return nil, err
	}

	row := &positionDatamodel.Position{
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    boolOr(dto.IsActive, true),
	}
	if err := s.stores.Positions.Create(ctx, row); err != nil {
		s.logger.Error("failed to create position", "name", dto.Name, "error", err)
		return nil, fmt.Errorf("create position: %w", err)
	}
	return PositionFromDataModel(row), nil
}

func (s *Service) UpdatePosition(ctx context.Context, actor *internal.User, id int64, dto PositionDTO) (*Position, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	row, err := loadRow(ctx, s.stores.Positions, id, ErrPositionNotFound)
	if err != nil {
		return nil, err
	}
	if err := ensureUnique(ctx, s.stores.Positions, "name", dto.Name, id, positionID); err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Description = dto.Description
	row.IsActive = boolOr(dto.IsActive, row.IsActive)
	if err := s.stores.Positions.Update(ctx, row); err != nil {
		s.logger.Error("failed to update position", "position_id", id, "error", err)
		return nil, fmt.Errorf("update position: %w", err)
	}
	return PositionFromDataModel(row), nil
}

func (s *Service) DeletePosition(ctx context.Context, actor *internal.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.delete(ctx, "position", id, s.stores.Positions.Delete, ErrPositionNotFound)
}

// ----------------- MENUS -----------------

// ListMenus returns the navigation entries the actor may see.
func (s *Service) ListMenus(ctx context.Context, actor *internal.User) ([]*Menu, error) {
	menus, err := listAll(ctx, s.stores.Menus, MenuFromDataModel)
	if err != nil {
		s.logger.Error("failed to list menus", "error", err)
		return nil, fmt.Errorf("list menus: %w", err)
	}
	if actor.IsAdmin() {
		return menus, nil
	}
	return VisibleMenus(menus, false), nil
}

func (s *Service) CreateMenu(ctx context.Context, actor *internal.User, dto MenuDTO) (*Menu, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	if err := s.checkParent(ctx, dto.ParentID, 0); err != nil {
		return nil, err
	}

	row := &menuDatamodel.Menu{IsActive: true}
	applyMenu(row, dto)
	if err := s.stores.Menus.Create(ctx, row); err != nil {
		s.logger.Error("failed to create menu", "name", dto.Name, "error", err)
		return nil, fmt.Errorf("create menu: %w", err)
	}
	return MenuFromDataModel(row), nil
}

func (s *Service) UpdateMenu(ctx context.Context, actor *internal.User, id int64, dto MenuDTO) (*Menu, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	row, err := loadRow(ctx, s.stores.Menus, id, ErrMenuNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, dto.ParentID, id); err != nil {
		return nil, err
	}

	applyMenu(row, dto)
	if err := s.stores.Menus.Update(ctx, row); err != nil {
		s.logger.Error("failed to update menu", "menu_id", id, "error", err)
		return nil, fmt.Errorf("update menu: %w", err)
	}
	return MenuFromDataModel(row), nil
}

func (s *Service) DeleteMenu(ctx context.Context, actor *internal.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.delete(ctx, "menu", id, s.stores.Menus.Delete, ErrMenuNotFound)
}

func (s *Service) checkParent(ctx context.Context, parentID *int64, selfID int64) error {
	if parentID == nil {
		return nil
	}
	if *parentID == selfID {
		return internal.NewValidationFieldError("parent_id", "a menu cannot be its own parent", internal.ErrCodeInvalidID)
	}
	_, err := loadRow(ctx, s.stores.Menus, *parentID, ErrMenuNotFound)
	return err
}

func applyMenu(row *menuDatamodel.Menu, dto MenuDTO) {
	row.Name = dto.Name
	row.Path = dto.Path
	row.Icon = dto.Icon
	row.ParentID = dto.ParentID
	row.SortOrder = dto.SortOrder
	row.AdminOnly = dto.AdminOnly
	row.IsActive = boolOr(dto.IsActive, row.IsActive)
}

func (s *Service) delete(ctx context.Context, kind string, id int64, del func(context.Context, int64) (bool, error), notFound error) error {
	deleted, err := del(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete "+kind, "id", id, "error", err)
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if !deleted {
		return notFound
	}
	s.logger.Info(kind+" deleted", "id", id)
	return nil
}

func departmentID(d *departmentDatamodel.Department) int64    { return d.ID }
func applicationID(a *applicationDatamodel.Application) int64 { return a.ID }
func roleID(r *roleDatamodel.Role) int64                      { return r.ID }
func positionID(p *positionDatamodel.Position) int64          { return p.ID }
