package session

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

type ServiceAPI interface {
	CreateFor(ctx context.Context, actor *internal.User, dto CreateSessionDTO) (*Session, error)
	List(ctx context.Context, actor *internal.User, filter Filter) (*ListResponse, error)
	ListForUser(ctx context.Context, actor *internal.User, userID int64) ([]*Session, error)
	Activity(ctx context.Context, actor *internal.User, userID int64) ([]ActivityEntry, error)
	Terminate(ctx context.Context, actor *internal.User, id int64) (*TerminateResult, error)
	TerminateAllForUser(ctx context.Context, actor *internal.User, userID int64) (*TerminateAllResult, error)
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

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto CreateSessionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if dto.IPAddress == "" {
		dto.IPAddress = transport.ClientIP(r)
	}

	created, err := h.Service.CreateFor(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateSession: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "session created", created)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := Filter{
		Query:      query.Get("q"),
		Department: query.Get("department"),
	}
	if p, err := strconv.Atoi(query.Get("page")); err == nil {
		filter.Page = p
	}
	if ps, err := strconv.Atoi(query.Get("page_size")); err == nil {
		filter.PageSize = ps
	}

	list, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.Logger.Error("ListSessions: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", list)
}

func (h *Handler) ListUserSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	userID, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	sessions, err := h.Service.ListForUser(r.Context(), actor, userID)
	if err != nil {
		h.Logger.Error("ListUserSessions: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", sessions)
}

func (h *Handler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	userID, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.Service.Activity(r.Context(), actor, userID)
	if err != nil {
		h.Logger.Error("LoginHistory: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", entries)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.Service.Terminate(r.Context(), actor, id)
	if err != nil {
		h.Logger.Error("DeleteSession: service error", "error", err, "session_id", id, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	message := "session terminated"
	if result.AlreadyGone {
		message = "session already terminated"
	}
	h.WriteSuccess(w, http.StatusOK, message, result)
}

func (h *Handler) DeleteUserSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	userID, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.Service.TerminateAllForUser(r.Context(), actor, userID)
	if err != nil {
		h.Logger.Error("DeleteUserSessions: service error", "error", err, "user_id", userID, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "sessions terminated", result)
}
