package catalog

import (
	"context"
	"net/http"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

type ServiceAPI interface {
	ListDepartments(ctx context.Context) ([]*Department, error)
	CreateDepartment(ctx context.Context, actor *internal.User, dto DepartmentDTO) (*Department, error)
	UpdateDepartment(ctx context.Context, actor *internal.User, id int64, dto DepartmentDTO) (*Department, error)
	DeleteDepartment(ctx context.Context, actor *internal.User, id int64) error

	ListApplications(ctx context.Context) ([]*Application, error)
	CreateApplication(ctx context.Context, actor *internal.User, dto ApplicationDTO) (*Application, error)
	UpdateApplication(ctx context.Context, actor *internal.User, id int64, dto ApplicationDTO) (*Application, error)
	DeleteApplication(ctx context.Context, actor *internal.User, id int64) error

	ListRoles(ctx context.Context) ([]*Role, error)
	CreateRole(ctx context.Context, actor *internal.User, dto RoleDTO) (*Role, error)
	UpdateRole(ctx context.Context, actor *internal.User, id int64, dto RoleDTO) (*Role, error)
	DeleteRole(ctx context.Context, actor *internal.User, id int64) error

	ListPositions(ctx context.Context) ([]*Position, error)
	CreatePosition(ctx context.Context, actor *internal.User, dto PositionDTO) (*Position, error)
	UpdatePosition(ctx context.Context, actor *internal.User, id int64, dto PositionDTO) (*Position, error)
	DeletePosition(ctx context.Context, actor *internal.User, id int64) error

	ListMenus(ctx context.Context, actor *internal.User) ([]*Menu, error)
	CreateMenu(ctx context.Context, actor *internal.User, dto MenuDTO) (*Menu, error)
	UpdateMenu(ctx context.Context, actor *internal.User, id int64, dto MenuDTO) (*Menu, error)
	DeleteMenu(ctx context.Context, actor *internal.User, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) respond(w http.ResponseWriter, op string, status int, message string, data interface{}, err error) {
	if err != nil {
		h.Logger.Warn(op+": service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, status, message, data)
}

// create decodes dto and runs fn for the authenticated actor.
func create[D any, R any](h *Handler, w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *internal.User, D) (R, error)) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	var dto D
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	result, err := fn(r.Context(), actor, dto)
	h.respond(w, op, http.StatusCreated, "created", result, err)
}

func update[D any, R any](h *Handler, w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *internal.User, int64, D) (R, error)) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}
	var dto D
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	result, err := fn(r.Context(), actor, id, dto)
	h.respond(w, op, http.StatusOK, "updated", result, err)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *internal.User, int64) error) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, op, http.StatusOK, "deleted", nil, fn(r.Context(), actor, id))
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.ListDepartments(r.Context())
	h.respond(w, "ListDepartments", http.StatusOK, "", departments, err)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "CreateDepartment", h.Service.CreateDepartment)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "UpdateDepartment", h.Service.UpdateDepartment)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "DeleteDepartment", h.Service.DeleteDepartment)
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Service.ListApplications(r.Context())
	h.respond(w, "ListApplications", http.StatusOK, "", apps, err)
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "CreateApplication", h.Service.CreateApplication)
}

func (h *Handler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "UpdateApplication", h.Service.UpdateApplication)
}

func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "DeleteApplication", h.Service.DeleteApplication)
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	h.respond(w, "ListRoles", http.StatusOK, "", roles, err)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "CreateRole", h.Service.CreateRole)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "UpdateRole", h.Service.UpdateRole)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "DeleteRole", h.Service.DeleteRole)
}

func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Service.ListPositions(r.Context())
	h.respond(w, "ListPositions", http.StatusOK, "", positions, err)
}

func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "CreatePosition", h.Service.CreatePosition)
}

func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "UpdatePosition", h.Service.UpdatePosition)
}

func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "DeletePosition", h.Service.DeletePosition)
}

func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	menus, err := h.Service.ListMenus(r.Context(), actor)
	h.respond(w, "ListMenus", http.StatusOK, "", menus, err)
}

func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "CreateMenu", h.Service.CreateMenu)
}

func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "UpdateMenu", h.Service.UpdateMenu)
}

func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "DeleteMenu", h.Service.DeleteMenu)
}
