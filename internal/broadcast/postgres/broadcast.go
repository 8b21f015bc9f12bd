package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal/broadcast"
	broadcastDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/broadcast"
)

type BroadcastRepository struct {
	db *gorm.DB
}

func NewBroadcastRepository(db *gorm.DB) broadcast.RepositoryAPI {
	return &BroadcastRepository{db: db}
}

func (r *BroadcastRepository) Create(ctx context.Context, b *broadcastDatamodel.Broadcast) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BroadcastRepository) GetByID(ctx context.Context, id int64) (*broadcastDatamodel.Broadcast, error) {
	var b broadcastDatamodel.Broadcast
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BroadcastRepository) ListAll(ctx context.Context) ([]*broadcastDatamodel.Broadcast, error) {
	var rows []*broadcastDatamodel.Broadcast
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLive returns undeleted, unexpired rows; audience filtering happens in the service.
func (r *BroadcastRepository) ListLive(ctx context.Context, now time.Time) ([]*broadcastDatamodel.Broadcast, error) {
	var rows []*broadcastDatamodel.Broadcast
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", now.UTC()).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BroadcastRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&broadcastDatamodel.Broadcast{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at).Error
}
