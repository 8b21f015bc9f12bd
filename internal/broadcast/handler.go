package broadcast

import (
	"context"
	"net/http"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *internal.User, dto CreateBroadcastDTO) (*Broadcast, error)
	List(ctx context.Context, actor *internal.User) ([]*Broadcast, error)
	Active(ctx context.Context, actor *internal.User) ([]*Broadcast, error)
	History(ctx context.Context, actor *internal.User) ([]*Broadcast, error)
	Delete(ctx context.Context, actor *internal.User, id int64) error
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

func (h *Handler) CreateBroadcast(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto CreateBroadcastDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	created, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Warn("CreateBroadcast: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "broadcast created", created)
}

func (h *Handler) ListBroadcasts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "ListBroadcasts", h.Service.List)
}

func (h *Handler) ActiveBroadcasts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "ActiveBroadcasts", h.Service.Active)
}

func (h *Handler) BroadcastHistory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "BroadcastHistory", h.Service.History)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *internal.User) ([]*Broadcast, error)) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	broadcasts, err := fn(r.Context(), actor)
	if err != nil {
		h.Logger.Error(op+": service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", broadcasts)
}

func (h *Handler) DeleteBroadcast(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.Logger.Warn("DeleteBroadcast: service error", "error", err, "broadcast_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "broadcast deleted", nil)
}
