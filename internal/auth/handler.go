package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, meta LoginMeta) (*LoginResponse, error)
	Logout(ctx context.Context, actor *internal.User)
	Authenticate(ctx context.Context, tokenString string) (*internal.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	meta := LoginMeta{
		IPAddress: transport.ClientIP(r),
		AppName:   r.Header.Get("X-App-Name"),
	}

	resp, err := h.Service.Login(r.Context(), dto, meta)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "login successful", resp)
}

// Logout always answers 200; the client clears its caches regardless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if user, ok := internal.UserFromContext(r.Context()); ok {
		h.Service.Logout(r.Context(), user)
	}
	h.WriteSuccess(w, http.StatusOK, "logged out", nil)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.HandleError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		user, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			appErr, ok := internal.IsAppError(err)
			if !ok {
				// only token and session sentinels mean the session is gone
				appErr = internal.NewInternalError("unable to authenticate request", err)
			}
			if appErr.Type == internal.ErrorTypeUnauthorized {
				h.Logger.Warn("auth middleware: rejected token", "path", r.URL.Path, "code", appErr.Code)
			}
			h.HandleError(w, appErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), user)))
	})
}
