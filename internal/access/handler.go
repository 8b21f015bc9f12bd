package access

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

type ServiceAPI interface {
	UserApplications(ctx context.Context, actor *internal.User, userID int64) (*DashboardResponse, error)
	Privileges(ctx context.Context, actor *internal.User, userID int64) (*PrivilegesResponse, error)
	ReplacePrivileges(ctx context.Context, actor *internal.User, userID int64, dto ReplacePrivilegesDTO) (*PrivilegesResponse, error)
	DepartmentPermissions(ctx context.Context, actor *internal.User) (*PermissionMatrix, error)
	SetDepartmentPermission(ctx context.Context, actor *internal.User, departmentID int64, appCode string, enabled bool) (*DepartmentPermissions, error)
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

func (h *Handler) GetUserApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	userID, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	dashboard, err := h.Service.UserApplications(r.Context(), actor, userID)
	if err != nil {
		h.Logger.Error("GetUserApplications: service error", "error", err, "user_id", userID, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", dashboard)
}

func (h *Handler) GetPrivileges(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	userID, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	privileges, err := h.Service.Privileges(r.Context(), actor, userID)
	if err != nil {
		h.Logger.Error("GetPrivileges: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", privileges)
}

func (h *Handler) ReplacePrivileges(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	userID, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	var dto ReplacePrivilegesDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	privileges, err := h.Service.ReplacePrivileges(r.Context(), actor, userID, dto)
	if err != nil {
		h.Logger.Error("ReplacePrivileges: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "privileges updated", privileges)
}

func (h *Handler) GetDepartmentPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	matrix, err := h.Service.DepartmentPermissions(r.Context(), actor)
	if err != nil {
		h.Logger.Error("GetDepartmentPermissions: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", matrix)
}

func (h *Handler) ToggleDepartmentPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	departmentID, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}
	appCode := chi.URLParam(r, "appCode")

	var dto TogglePermissionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if dto.Enabled == nil {
		h.HandleError(w, internal.NewValidationFieldError("enabled", "enabled is required", internal.ErrCodeValidationFailed))
		return
	}

	perms, err := h.Service.SetDepartmentPermission(r.Context(), actor, departmentID, appCode, *dto.Enabled)
	if err != nil {
		h.Logger.Error("ToggleDepartmentPermission: service error", "error", err, "department_id", departmentID, "app_code", appCode)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "permission updated", perms)
}
