package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/chibuike2003/palgunn/internal/model"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// PublicationFilter listing criteria; zero values are ignored.
type PublicationFilter struct {
	CourseID string
	Active   *bool
}

// PublicationRepository publication schedule data access.
type PublicationRepository interface {
	Create(ctx context.Context, schedule *model.PublicationSchedule) error
	GetByID(ctx context.Context, id string) (*model.PublicationSchedule, error)
	GetByCourseAndSession(ctx context.Context, courseID, session string) (*model.PublicationSchedule, error)
	Update(ctx context.Context, schedule *model.PublicationSchedule) error
	List(ctx context.Context, filter PublicationFilter) ([]model.PublicationSchedule, error)
	// ListOpenAt returns active schedules whose window contains now.
	ListOpenAt(ctx context.Context, now time.Time) ([]model.PublicationSchedule, error)
}

type publicationRepo struct {
	db *gorm.DB
}

// NewPublicationRepo creates a PublicationRepository.
func NewPublicationRepo(db *gorm.DB) PublicationRepository {
	return &publicationRepo{db: db}
}

func (r *publicationRepo) Create(ctx context.Context, schedule *model.PublicationSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *publicationRepo) GetByID(ctx context.Context, id string) (*model.PublicationSchedule, error) {
	var schedule model.PublicationSchedule
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *publicationRepo) GetByCourseAndSession(ctx context.Context, courseID, session string) (*model.PublicationSchedule, error) {
	var schedule model.PublicationSchedule
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id = ? AND session_written = ?", courseID, session).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Update writes the window under the optimistic lock.
func (r *publicationRepo) Update(ctx context.Context, schedule *model.PublicationSchedule) error {
	oldVersion := schedule.Version
	res := r.db.WithContext(ctx).
		Model(&model.PublicationSchedule{}).
		Where("schedule_id = ? AND version = ?", schedule.ScheduleID, oldVersion).
		Updates(map[string]interface{}{
			"course_id":       schedule.CourseID,
			"session_written": schedule.SessionWritten,
			"publish_start":   schedule.PublishStart,
			"publish_end":     schedule.PublishEnd,
			"is_active":       schedule.IsActive,
			"updated_by":      schedule.UpdatedBy,
			"updated_at":      gorm.Expr("NOW()"),
			"version":         oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	schedule.Version = oldVersion + 1
	return nil
}

func (r *publicationRepo) List(ctx context.Context, filter PublicationFilter) ([]model.PublicationSchedule, error) {
	var schedules []model.PublicationSchedule
	q := r.db.WithContext(ctx).Preload("Course")
	if filter.CourseID != "" {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	err := q.Order("publish_start DESC").Find(&schedules).Error
	return schedules, err
}

func (r *publicationRepo) ListOpenAt(ctx context.Context, now time.Time) ([]model.PublicationSchedule, error) {
	var schedules []model.PublicationSchedule
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("is_active = ? AND publish_start <= ? AND publish_end >= ?", true, now, now).
		Find(&schedules).Error
	return schedules, err
}
