package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chibuike2003/palgunn/internal/model"
)

// CourseRepository course data access.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	// List returns courses ordered by code; an empty session lists all.
	List(ctx context.Context, session string) ([]model.Course, error)
	// ListSessions returns the distinct academic session labels, newest first.
	ListSessions(ctx context.Context) ([]string, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo creates a CourseRepository.
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_code = ?", code).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).
		Model(course).
		Where("course_id = ?", course.CourseID).
		Updates(map[string]interface{}{
			"course_title":    course.CourseTitle,
			"session_written": course.SessionWritten,
			"year":            course.Year,
			"semester":        course.Semester,
			"updated_by":      course.UpdatedBy,
			"updated_at":      gorm.Expr("NOW()"),
		}).Error
}

func (r *courseRepo) List(ctx context.Context, session string) ([]model.Course, error) {
	var courses []model.Course
	q := r.db.WithContext(ctx).Model(&model.Course{})
	if session != "" {
		q = q.Where("session_written = ?", session)
	}
	err := q.Order("course_code ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListSessions(ctx context.Context) ([]string, error) {
	var sessions []string
	err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Distinct("session_written").
		Order("session_written DESC").
		Pluck("session_written", &sessions).Error
	return sessions, err
}
