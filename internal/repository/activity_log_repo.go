package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chibuike2003/palgunn/internal/model"
)

// ActivityLogRepository audit trail data access.
type ActivityLogRepository interface {
	Create(ctx context.Context, log *model.ActivityLog) error
	List(ctx context.Context, actorID string, offset, limit int) ([]model.ActivityLog, int64, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

// NewActivityLogRepo creates an ActivityLogRepository.
func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, log *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List pages through the log, newest first; an empty actorID lists everyone.
func (r *activityLogRepo) List(ctx context.Context, actorID string, offset, limit int) ([]model.ActivityLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ActivityLog{})
	if actorID != "" {
		q = q.Where("actor_id = ?", actorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.ActivityLog
	err := q.Preload("Actor").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}
