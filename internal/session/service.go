package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	sessionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/employee-portal/internal/core/events"
)

const historyLimit = 50

type RepositoryAPI interface {
	Create(ctx context.Context, s *sessionDatamodel.Session) error
	GetByID(ctx context.Context, id int64) (*sessionDatamodel.Session, error)
	List(ctx context.Context, filter Filter) ([]*sessionDatamodel.Session, int, error)
	ListByUser(ctx context.Context, userID int64) ([]*sessionDatamodel.Session, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type HistoryRepositoryAPI interface {
	Record(ctx context.Context, h *sessionDatamodel.LoginHistory) error
	MarkLoggedOut(ctx context.Context, sessionID int64, at time.Time, reason string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*sessionDatamodel.LoginHistory, error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	history  HistoryRepositoryAPI
	bus      EventPublisher
	pageSize int
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, history HistoryRepositoryAPI, bus EventPublisher, pageSize int, logger *slog.Logger) *Service {
	if pageSize <= 0 {
		pageSize = internal.DefaultSessionPageSize
	}
	return &Service{
		repo:     repo,
		history:  history,
		bus:      bus,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
	}
}

// Create inserts a session row and records the login.
func (s *Service) Create(ctx context.Context, dto CreateSessionDTO) (*Session, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row := &sessionDatamodel.Session{
		UserID:     dto.UserID,
		UserName:   dto.UserName,
		UserEmail:  dto.UserEmail,
		Department: dto.Department,
		Role:       dto.Role,
		IPAddress:  dto.IPAddress,
		AppName:    dto.AppName,
		LoginAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create session", "user_id", dto.UserID, "error", err)
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.publish(ctx, events.NewSessionCreatedEvent(row.ID, row.UserID, row.IPAddress, row.AppName, row.LoginAt))

	s.logger.Info("session created", "session_id", row.ID, "user_id", row.UserID)
	return FromDataModel(row), nil
}

// CreateFor creates a session on behalf of actor; admins may create one for anyone.
func (s *Service) CreateFor(ctx context.Context, actor *internal.User, dto CreateSessionDTO) (*Session, error) {
	if dto.UserID == 0 && actor != nil {
		dto.UserID = actor.ID
	}
	if !actor.CanActOn(dto.UserID) {
		return nil, internal.ErrNotOwner
	}
	if actor.ID == dto.UserID {
		if dto.UserName == "" {
			dto.UserName = actor.Name
		}
		if dto.UserEmail == "" {
			dto.UserEmail = actor.Email
		}
		if dto.Department == "" {
			dto.Department = actor.Department
		}
		if dto.Role == "" {
			dto.Role = actor.Role
		}
	}
	return s.Create(ctx, dto)
}

func (s *Service) List(ctx context.Context, actor *internal.User, filter Filter) (*ListResponse, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	filter = filter.normalize(s.pageSize)
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list sessions", "error", err)
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]*Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, FromDataModel(row))
	}

	totalPages := (total + filter.PageSize - 1) / filter.PageSize
	return &ListResponse{
		Sessions:   sessions,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) ListForUser(ctx context.Context, actor *internal.User, userID int64) ([]*Session, error) {
	if !actor.CanActOn(userID) {
		return nil, internal.ErrNotOwner
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user sessions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list user sessions: %w", err)
	}

	sessions := make([]*Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, FromDataModel(row))
	}
	return sessions, nil
}

// Activity merges live sessions with login history, newest first.
func (s *Service) Activity(ctx context.Context, actor *internal.User, userID int64) ([]ActivityEntry, error) {
	if !actor.CanActOn(userID) {
		return nil, internal.ErrNotOwner
	}

	live, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user sessions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	past, err := s.history.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		s.logger.Error("failed to list login history", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list login history: %w", err)
	}

	entries := make([]ActivityEntry, 0, len(live)+len(past))
	active := make(map[int64]struct{}, len(live))
	for _, row := range live {
		active[row.ID] = struct{}{}
		entries = append(entries, ActivityEntry{
			SessionID: row.ID,
			IPAddress: row.IPAddress,
			AppName:   row.AppName,
			LoginAt:   row.LoginAt,
			Active:    true,
			Current:   actor.ID == userID && actor.SessionID == row.ID,
		})
	}
	for _, h := range past {
		if _, ok := active[h.SessionID]; ok {
			continue
		}
		entries = append(entries, ActivityEntry{
			SessionID:    h.SessionID,
			IPAddress:    h.IPAddress,
			AppName:      h.AppName,
			LoginAt:      h.LoginAt,
			LogoutAt:     h.LogoutAt,
			LogoutReason: h.LogoutReason,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LoginAt.After(entries[j].LoginAt)
	})
	return entries, nil
}

// Terminate deletes one session. A missing id reports AlreadyGone instead of failing.
func (s *Service) Terminate(ctx context.Context, actor *internal.User, id int64) (*TerminateResult, error) {
	if actor == nil {
		return nil, internal.ErrNotOwner
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("load session: %w", err)
	}

	if row == nil {
		remaining, err := s.repo.CountByUser(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("count sessions: %w", err)
		}
		s.logger.Info("session already gone", "session_id", id, "actor_id", actor.ID)
		return &TerminateResult{SessionID: id, AlreadyGone: true, RemainingSessions: remaining}, nil
	}

	if !actor.CanActOn(row.UserID) {
		s.logger.Warn("session termination denied", "session_id", id, "owner_id", row.UserID, "actor_id", actor.ID)
		return nil, internal.ErrNotOwner
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete session", "session_id", id, "error", err)
		return nil, fmt.Errorf("delete session: %w", err)
	}

	// Read after the delete; a cached list could miss a concurrent login or logout.
	remaining, err := s.repo.CountByUser(ctx, row.UserID)
	if err != nil {
		s.logger.Error("failed to count sessions", "user_id", row.UserID, "error", err)
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	if deleted {
		s.publish(ctx, events.NewSessionTerminatedEvent(id, row.UserID, actor.ID, terminationReason(actor, row)))
	}

	result := &TerminateResult{
		SessionID:         id,
		UserID:            row.UserID,
		Deleted:           deleted,
		AlreadyGone:       !deleted,
		RemainingSessions: remaining,
	}
	if actor.ID == row.UserID && remaining == 0 {
		result.SessionExpired = &SessionExpired{Reason: ReasonForceLogout}
	}

	s.logger.Info("session terminated",
		"session_id", id,
		"owner_id", row.UserID,
		"actor_id", actor.ID,
		"remaining", remaining)
	return result, nil
}

// TerminateAllForUser removes every session of userID.
func (s *Service) TerminateAllForUser(ctx context.Context, actor *internal.User, userID int64) (*TerminateAllResult, error) {
	if !actor.CanActOn(userID) {
		return nil, internal.ErrNotOwner
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}

	deleted, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to delete user sessions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("delete user sessions: %w", err)
	}

	for _, row := range rows {
		s.publish(ctx, events.NewSessionTerminatedEvent(row.ID, userID, actor.ID, terminationReason(actor, row)))
	}

	result := &TerminateAllResult{UserID: userID, Deleted: deleted}
	if actor.ID == userID {
		result.SessionExpired = &SessionExpired{Reason: ReasonForceLogout}
	}

	s.logger.Info("user sessions terminated", "user_id", userID, "actor_id", actor.ID, "deleted", deleted)
	return result, nil
}

// Logout removes the caller's own session. A missing row is not an error.
func (s *Service) Logout(ctx context.Context, actor *internal.User) error {
	if actor == nil || actor.SessionID == 0 {
		return nil
	}

	deleted, err := s.repo.Delete(ctx, actor.SessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted {
		s.publish(ctx, events.NewSessionTerminatedEvent(actor.SessionID, actor.ID, actor.ID, events.ReasonLogout))
	}
	return nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Warn("session event handler failed", "event_type", event.EventType(), "error", err)
	}
}

func terminationReason(actor *internal.User, row *sessionDatamodel.Session) string {
	switch {
	case actor.ID != row.UserID:
		return events.ReasonForceLogout
	case actor.SessionID == row.ID:
		return events.ReasonLogout
	default:
		return events.ReasonSelfTerminated
	}
}
