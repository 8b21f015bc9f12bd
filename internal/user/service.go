package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/auth"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

// RepositoryAPI returns nil rows without error for missing users.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	List(ctx context.Context, filter ListFilter) ([]*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	UpdatePassword(ctx context.Context, id int64, hash string, changedAt time.Time) error
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) load(ctx context.Context, id int64) (*userDatamodel.User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		return nil, fmt.Errorf("load user: %w", err)
	}
	if row == nil {
		return nil, ErrUserNotFound
	}
	return row, nil
}

// GetProfile is available to the user themself and to admins.
func (s *Service) GetProfile(ctx context.Context, actor *internal.User, id int64) (*Profile, error) {
	if !actor.CanActOn(id) {
		return nil, internal.ErrNotOwner
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	u := FromDataModel(row)
	return &Profile{
		User:           u,
		PasswordChange: PasswordChangeStatusAt(u.PasswordChangedAt, time.Now()),
	}, nil
}

func (s *Service) List(ctx context.Context, actor *internal.User, filter ListFilter) ([]*User, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, actor *internal.User, dto CreateUserDTO) (*User, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if err := s.ensureEmailFree(ctx, dto.Email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         dto.Role,
		Department:   dto.Department,
		Position:     dto.Position,
		Status:       dto.Status,
		Avatar:       dto.Avatar,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "actor_id", actor.ID)
	return FromDataModel(row), nil
}

// Update applies the non-nil fields. An admin password reset does not start the cooldown.
func (s *Service) Update(ctx context.Context, actor *internal.User, id int64, dto UpdateUserDTO) (*User, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil && *dto.Email != row.Email {
		if err := s.ensureEmailFree(ctx, *dto.Email, id); err != nil {
			return nil, err
		}
		row.Email = *dto.Email
	}
	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Role != nil && *dto.Role != "" {
		row.Role = *dto.Role
	}
	if dto.Department != nil {
		row.Department = *dto.Department
	}
	if dto.Position != nil {
		row.Position = *dto.Position
	}
	if dto.Status != nil && *dto.Status != "" {
		row.Status = *dto.Status
	}
	if dto.Avatar != nil {
		row.Avatar = dto.Avatar
	}
	if dto.Password != nil && *dto.Password != "" {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		row.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, fmt.Errorf("update user: %w", err)
	}
	return FromDataModel(row), nil
}

// ChangePassword is self-service only; admins reset passwords through Update.
func (s *Service) ChangePassword(ctx context.Context, actor *internal.User, id int64, dto ChangePasswordDTO) (*PasswordChangeStatus, error) {
	if actor == nil || actor.ID != id {
		return nil, internal.ErrNotOwner
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.VerifyPassword(row.PasswordHash, dto.CurrentPassword); err != nil {
		s.logger.Warn("password change rejected: wrong current password", "user_id", id)
		return nil, ErrWrongPassword
	}
	if dto.NewPassword == dto.CurrentPassword {
		return nil, ErrPasswordReused
	}

	now := time.Now()
	status := PasswordChangeStatusAt(row.PasswordChangedAt, now)
	if !status.CanChange {
		return nil, internal.NewConflictError(
			fmt.Sprintf("password can be changed again in %d day(s)", status.RemainingDays),
			internal.ErrCodeCooldown,
		).WithDetails(map[string]int{"remaining_days": status.RemainingDays})
	}

	hash, err := auth.HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash, now); err != nil {
		s.logger.Error("failed to update password", "user_id", id, "error", err)
		return nil, fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", "user_id", id)
	next := PasswordChangeStatusAt(&now, now)
	return &next, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}
