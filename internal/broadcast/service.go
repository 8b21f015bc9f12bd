package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/auth"
	broadcastDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/broadcast"
)

type RepositoryAPI interface {
	Create(ctx context.Context, b *broadcastDatamodel.Broadcast) error
	GetByID(ctx context.Context, id int64) (*broadcastDatamodel.Broadcast, error)
	// ListAll includes soft-deleted rows, newest first.
	ListAll(ctx context.Context) ([]*broadcastDatamodel.Broadcast, error)
	ListLive(ctx context.Context, now time.Time) ([]*broadcastDatamodel.Broadcast, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
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

func canManage(actor *internal.User) bool {
	return actor.IsAdmin() || actor.HasPermission(auth.PermissionBroadcastManage)
}

func (s *Service) Create(ctx context.Context, actor *internal.User, dto CreateBroadcastDTO) (*Broadcast, error) {
	if !canManage(actor) {
		return nil, internal.NewForbiddenError("broadcast management requires admin or broadcast.manage", internal.ErrCodeForbidden)
	}
	if appErr := dto.Validate(time.Now()); appErr != nil {
		return nil, appErr
	}

	createdBy := actor.ID
	row := &broadcastDatamodel.Broadcast{
		Title:          dto.Title,
		Message:        dto.Message,
		Priority:       dto.Priority,
		TargetAudience: dto.TargetAudience,
		ExpiresAt:      dto.ExpiresAt,
		CreatedBy:      &createdBy,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create broadcast", "error", err, "actor_id", actor.ID)
		return nil, fmt.Errorf("create broadcast: %w", err)
	}

	s.logger.Info("broadcast created", "broadcast_id", row.ID, "audience", row.TargetAudience, "priority", row.Priority)
	b := FromDataModel(row)
	b.Status = b.HistoryStatus(time.Now())
	return b, nil
}

// List is the admin view of every broadcast, deleted ones included.
func (s *Service) List(ctx context.Context, actor *internal.User) ([]*Broadcast, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}
	return s.history(ctx, func(*Broadcast) bool { return true })
}

// Active returns what the actor should see in the banner right now.
func (s *Service) Active(ctx context.Context, actor *internal.User) ([]*Broadcast, error) {
	if actor == nil {
		return nil, internal.ErrNotOwner
	}

	now := time.Now()
	rows, err := s.repo.ListLive(ctx, now)
	if err != nil {
		s.logger.Error("failed to list active broadcasts", "error", err)
		return nil, fmt.Errorf("list active broadcasts: %w", err)
	}

	active := make([]*Broadcast, 0, len(rows))
	for _, row := range rows {
		b := FromDataModel(row)
		if b.IsActiveAt(now, actor.Role) {
			b.Status = StatusActive
			active = append(active, b)
		}
	}
	return active, nil
}

// History returns every broadcast aimed at the actor, labelled Active, Expired or Deleted.
func (s *Service) History(ctx context.Context, actor *internal.User) ([]*Broadcast, error) {
	if actor == nil {
		return nil, internal.ErrNotOwner
	}
	return s.history(ctx, func(b *Broadcast) bool {
		return actor.IsAdmin() || MatchesAudience(b.TargetAudience, actor.Role)
	})
}

func (s *Service) history(ctx context.Context, keep func(*Broadcast) bool) ([]*Broadcast, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list broadcasts", "error", err)
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}

	now := time.Now()
	out := make([]*Broadcast, 0, len(rows))
	for _, row := range rows {
		b := FromDataModel(row)
		if !keep(b) {
			continue
		}
		b.Status = b.HistoryStatus(now)
		out = append(out, b)
	}
	return out, nil
}

// Delete soft-deletes; deleting an already deleted broadcast is a no-op.
func (s *Service) Delete(ctx context.Context, actor *internal.User, id int64) error {
	if !canManage(actor) {
		return internal.NewForbiddenError("broadcast management requires admin or broadcast.manage", internal.ErrCodeForbidden)
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load broadcast", "broadcast_id", id, "error", err)
		return fmt.Errorf("load broadcast: %w", err)
	}
	if row == nil {
		return ErrBroadcastNotFound
	}
	if row.DeletedAt != nil {
		return nil
	}

	if err := s.repo.SoftDelete(ctx, id, time.Now()); err != nil {
		s.logger.Error("failed to delete broadcast", "broadcast_id", id, "error", err)
		return fmt.Errorf("delete broadcast: %w", err)
	}
	s.logger.Info("broadcast deleted", "broadcast_id", id, "actor_id", actor.ID)
	return nil
}
