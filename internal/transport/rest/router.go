package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/employee-portal/api"
	"github.com/frahmantamala/employee-portal/internal/access"
	"github.com/frahmantamala/employee-portal/internal/auth"
	"github.com/frahmantamala/employee-portal/internal/broadcast"
	"github.com/frahmantamala/employee-portal/internal/catalog"
	"github.com/frahmantamala/employee-portal/internal/session"
	"github.com/frahmantamala/employee-portal/internal/transport/middleware"
	"github.com/frahmantamala/employee-portal/internal/transport/swagger"
	"github.com/frahmantamala/employee-portal/internal/user"
)

// Handlers groups the domain handlers mounted under the API base path.
type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	Access    *access.Handler
	Session   *session.Handler
	Catalog   *catalog.Handler
	Broadcast *broadcast.Handler
}

type Options struct {
	BasePath       string
	AllowedOrigins []string
	ExposeErrors   bool

	Redis            *redis.Client
	LoginRateLimit   int
	LoginRateWindow  time.Duration
	LoginBlockPeriod time.Duration
}

func RegisterAllRoutes(router chi.Router, db *sql.DB, h Handlers, rbac *auth.RBACAuthorization, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, opts.Redis)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.ContextLogger(logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(logger, opts.ExposeErrors))
	router.Use(middleware.CORS(opts.AllowedOrigins))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Document)
	})
	router.Handle("/swagger/*", swagger.Handler())

	basePath := opts.BasePath
	if basePath == "" {
		basePath = "/api"
	}

	router.Route(basePath, func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.With(middleware.RateLimiter(opts.Redis, opts.LoginRateLimit, opts.LoginRateWindow, opts.LoginBlockPeriod, "login", logger)).
			Post("/users/login", h.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			pr.Route("/users", func(ur chi.Router) {
				ur.With(rbac.RequireAdmin()).Get("/", h.User.ListUsers)
				ur.With(rbac.RequireAdmin()).Post("/", h.User.CreateUser)
				ur.Post("/logout", h.Auth.Logout)

				ur.Route("/{id}", func(ir chi.Router) {
					ir.With(rbac.RequireSelfOrAdmin("id")).Get("/", h.User.GetUser)
					ir.With(rbac.RequireAdmin()).Put("/", h.User.UpdateUser)
					ir.Put("/change-password", h.User.ChangePassword)
					ir.With(rbac.RequireSelfOrAdmin("id")).Get("/applications", h.Access.GetUserApplications)
					ir.With(rbac.RequireSelfOrAdmin("id")).Get("/privileges", h.Access.GetPrivileges)
					ir.With(rbac.RequireAdmin()).Put("/privileges", h.Access.ReplacePrivileges)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Catalog.ListDepartments)
				dr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", h.Catalog.CreateDepartment)
					ar.Get("/permissions", h.Access.GetDepartmentPermissions)
					ar.Put("/{id}", h.Catalog.UpdateDepartment)
					ar.Delete("/{id}", h.Catalog.DeleteDepartment)
					ar.Patch("/{id}/permissions/{appCode}", h.Access.ToggleDepartmentPermission)
				})
			})

			mountCatalog(pr, rbac, "/applications", h.Catalog.ListApplications, h.Catalog.CreateApplication, h.Catalog.UpdateApplication, h.Catalog.DeleteApplication)
			mountCatalog(pr, rbac, "/positions", h.Catalog.ListPositions, h.Catalog.CreatePosition, h.Catalog.UpdatePosition, h.Catalog.DeletePosition)
			mountCatalog(pr, rbac, "/roles", h.Catalog.ListRoles, h.Catalog.CreateRole, h.Catalog.UpdateRole, h.Catalog.DeleteRole)
			mountCatalog(pr, rbac, "/menus", h.Catalog.ListMenus, h.Catalog.CreateMenu, h.Catalog.UpdateMenu, h.Catalog.DeleteMenu)

			pr.Route("/sessions", func(sr chi.Router) {
				sr.Post("/", h.Session.CreateSession)
				sr.With(rbac.RequireAdmin()).Get("/", h.Session.ListSessions)
				sr.With(rbac.RequireSelfOrAdmin("id")).Get("/user/{id}", h.Session.ListUserSessions)
				sr.With(rbac.RequireSelfOrAdmin("id")).Delete("/user/{id}", h.Session.DeleteUserSessions)
				sr.Delete("/{id}", h.Session.DeleteSession)
			})
			pr.With(rbac.RequireSelfOrAdmin("id")).Get("/login-history/user/{id}", h.Session.LoginHistory)

			pr.Route("/broadcasts", func(br chi.Router) {
				br.With(rbac.RequireAdmin()).Get("/", h.Broadcast.ListBroadcasts)
				br.Get("/active", h.Broadcast.ActiveBroadcasts)
				br.Get("/history", h.Broadcast.BroadcastHistory)
				br.Group(func(mr chi.Router) {
					mr.Use(rbac.Middleware(auth.PermissionBroadcastManage))
					mr.Post("/", h.Broadcast.CreateBroadcast)
					mr.Delete("/{id}", h.Broadcast.DeleteBroadcast)
				})
			})
		})
	})
}

// mountCatalog wires the list-for-everyone, write-for-admins shape shared by reference data.
func mountCatalog(r chi.Router, rbac *auth.RBACAuthorization, path string, list, create, update, remove http.HandlerFunc) {
	r.Route(path, func(cr chi.Router) {
		cr.Get("/", list)
		cr.Group(func(ar chi.Router) {
			ar.Use(rbac.RequireAdmin())
			ar.Post("/", create)
			ar.Put("/{id}", update)
			ar.Delete("/{id}", remove)
		})
	})
}
