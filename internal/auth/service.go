package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/access"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/employee-portal/internal/session"
)

const defaultAppName = "Employee Portal"

type RepositoryAPI interface {
	GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetRolePermissions(ctx context.Context, role string) ([]string, error)
}

// SessionStore is the slice of the session registry the login flow needs.
type SessionStore interface {
	Create(ctx context.Context, dto session.CreateSessionDTO) (*session.Session, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Logout(ctx context.Context, actor *internal.User) error
}

type Service struct {
	repo     RepositoryAPI
	sessions SessionStore
	tokens   TokenGenerator
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, sessions SessionStore, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login verifies credentials, opens a session and issues a token.
// A failed session insert is logged and the login still succeeds.
func (s *Service) Login(ctx context.Context, dto LoginDTO, meta LoginMeta) (*LoginResponse, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	u, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err)
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidCredentials
	}
	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login rejected: wrong password", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}
	if strings.EqualFold(u.Status, access.StatusInactive) {
		s.logger.Warn("login rejected: inactive user", "user_id", u.ID)
		return nil, internal.ErrUserInactive
	}

	appName := meta.AppName
	if appName == "" {
		appName = dto.AppName
	}
	if appName == "" {
		appName = defaultAppName
	}

	var sessionID int64
	if s.sessions != nil {
		created, err := s.sessions.Create(ctx, session.CreateSessionDTO{
			UserID:     u.ID,
			UserName:   u.Name,
			UserEmail:  u.Email,
			Department: u.Department,
			Role:       u.Role,
			IPAddress:  meta.IPAddress,
			AppName:    appName,
		})
		if err != nil {
			s.logger.Warn("session creation failed during login", "user_id", u.ID, "error", err)
		} else {
			sessionID = created.ID
		}
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.Role, sessionID)
	if err != nil {
		s.logger.Error("failed to sign token", "user_id", u.ID, "error", err)
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID, "session_id", sessionID)
	return &LoginResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		Position:   u.Position,
		Avatar:     u.Avatar,
		Token:      token,
		ExpiresAt:  expiresAt,
		UserType:   access.UserType(u.Role),
		SessionID:  sessionID,
	}, nil
}

// Logout drops the caller's session. Failures are logged only.
func (s *Service) Logout(ctx context.Context, actor *internal.User) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Logout(ctx, actor); err != nil {
		s.logger.Warn("logout cleanup failed", "user_id", actor.ID, "session_id", actor.SessionID, "error", err)
	}
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// Authenticate turns a token into the request principal.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*internal.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.SessionID != 0 && s.sessions != nil {
		alive, err := s.sessions.Exists(ctx, claims.SessionID)
		if err != nil {
			s.logger.Error("failed to check session", "session_id", claims.SessionID, "error", err)
			return nil, internal.NewInternalError("unable to authenticate request", fmt.Errorf("check session: %w", err))
		}
		if !alive {
			return nil, internal.ErrSessionTerminated
		}
	}

	u, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Error("failed to load token user", "user_id", claims.UserID, "error", err)
		return nil, internal.NewInternalError("unable to authenticate request", fmt.Errorf("load user: %w", err))
	}
	if u == nil {
		return nil, internal.ErrInvalidToken
	}
	if strings.EqualFold(u.Status, access.StatusInactive) {
		return nil, internal.ErrUserInactive
	}

	permissions, err := s.repo.GetRolePermissions(ctx, u.Role)
	if err != nil {
		s.logger.Warn("failed to load role permissions", "role", u.Role, "error", err)
	}

	return &internal.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Department:  u.Department,
		Position:    u.Position,
		SessionID:   claims.SessionID,
		Permissions: permissions,
	}, nil
}
