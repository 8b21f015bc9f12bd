package auth

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

// RBACAuthorization gates routes before handlers run. Services repeat the check.
type RBACAuthorization struct {
	*transport.BaseHandler
	checker PermissionChecker
}

func NewRBACAuthorization(baseHandler *transport.BaseHandler, checker PermissionChecker) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: baseHandler,
		checker:     checker,
	}
}

// Middleware requires admin or any of the given role permissions.
func (ra *RBACAuthorization) Middleware(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := ra.CurrentUser(w, r)
			if !ok {
				return
			}

			if !ra.checker.HasAnyPermission(user, permissions) {
				ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				ra.HandleError(w, internal.NewForbiddenError("insufficient permissions", internal.ErrCodeForbidden))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := ra.CurrentUser(w, r)
			if !ok {
				return
			}

			if !ra.checker.IsAdmin(user) {
				ra.Logger.WarnContext(r.Context(), "access denied: admin required", "user_id", user.ID, "path", r.URL.Path)
				ra.HandleError(w, internal.ErrAdminRequired)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrAdmin compares the URL user id parameter with the caller.
func (ra *RBACAuthorization) RequireSelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := ra.CurrentUser(w, r)
			if !ok {
				return
			}

			ownerID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil {
				ra.HandleError(w, internal.NewValidationError("invalid "+param, internal.ErrCodeInvalidID))
				return
			}

			if !user.CanActOn(ownerID) {
				ra.Logger.WarnContext(r.Context(), "access denied: not owner", "user_id", user.ID, "owner_id", ownerID)
				ra.HandleError(w, internal.ErrNotOwner)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
