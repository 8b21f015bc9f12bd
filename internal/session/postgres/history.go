package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	sessionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/employee-portal/internal/session"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) session.HistoryRepositoryAPI {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Record(ctx context.Context, h *sessionDatamodel.LoginHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// MarkLoggedOut only touches open rows so the first recorded reason wins.
func (r *HistoryRepository) MarkLoggedOut(ctx context.Context, sessionID int64, at time.Time, reason string) error {
	return r.db.WithContext(ctx).
		Model(&sessionDatamodel.LoginHistory{}).
		Where("session_id = ? AND logout_at IS NULL", sessionID).
		Updates(map[string]interface{}{"logout_at": at, "logout_reason": reason}).Error
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*sessionDatamodel.LoginHistory, error) {
	var rows []*sessionDatamodel.LoginHistory
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("login_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
