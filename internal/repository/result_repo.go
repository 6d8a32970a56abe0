package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/chibuike2003/palgunn/internal/model"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// ResultFilter search criteria; empty fields are ignored.
type ResultFilter struct {
	Query      string // substring of reg number OR course code, case-insensitive
	CourseCode string
	Session    string
	Year       string
	Semester   string
	RegPrefix  string
}

// ResultRepository student result data access.
type ResultRepository interface {
	Create(ctx context.Context, result *model.StudentResult) error
	GetByID(ctx context.Context, id string) (*model.StudentResult, error)
	GetByCourseAndReg(ctx context.Context, courseID, regNumber string) (*model.StudentResult, error)
	Update(ctx context.Context, result *model.StudentResult) error
	Delete(ctx context.Context, id string, deletedBy string) error
	Search(ctx context.Context, filter ResultFilter, offset, limit int) ([]model.StudentResult, int64, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.StudentResult, error)
	ListByRegAndCourse(ctx context.Context, regNumber, courseID string) ([]model.StudentResult, error)
}

type resultRepo struct {
	db *gorm.DB
}

// NewResultRepo creates a ResultRepository.
func NewResultRepo(db *gorm.DB) ResultRepository {
	return &resultRepo{db: db}
}

func (r *resultRepo) Create(ctx context.Context, result *model.StudentResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepo) GetByID(ctx context.Context, id string) (*model.StudentResult, error) {
	var result model.StudentResult
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("result_id = ?", id).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepo) GetByCourseAndReg(ctx context.Context, courseID, regNumber string) (*model.StudentResult, error) {
	var result model.StudentResult
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND reg_number = ?", courseID, regNumber).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Update writes scores under the optimistic lock.
func (r *resultRepo) Update(ctx context.Context, result *model.StudentResult) error {
	oldVersion := result.Version
	res := r.db.WithContext(ctx).
		Model(&model.StudentResult{}).
		Where("result_id = ? AND version = ?", result.ResultID, oldVersion).
		Updates(map[string]interface{}{
			"student_name": result.StudentName,
			"ca_score":     result.CAScore,
			"exam_score":   result.ExamScore,
			"total_score":  result.TotalScore,
			"grade":        result.Grade,
			"updated_by":   result.UpdatedBy,
			"updated_at":   gorm.Expr("NOW()"),
			"version":      oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	result.Version = oldVersion + 1
	return nil
}

func (r *resultRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.StudentResult{}).
		Where("result_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *resultRepo) Search(ctx context.Context, filter ResultFilter, offset, limit int) ([]model.StudentResult, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.StudentResult{}).
		Joins("JOIN courses ON courses.course_id = student_results.course_id")

	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + escapeLike(s) + "%"
		q = q.Where("(student_results.reg_number ILIKE ? OR courses.course_code ILIKE ?)", like, like)
	}
	if filter.CourseCode != "" {
		q = q.Where("courses.course_code = ?", filter.CourseCode)
	}
	if filter.Session != "" {
		q = q.Where("courses.session_written = ?", filter.Session)
	}
	if filter.Year != "" {
		q = q.Where("courses.year = ?", filter.Year)
	}
	if filter.Semester != "" {
		q = q.Where("courses.semester = ?", filter.Semester)
	}
	if filter.RegPrefix != "" {
		q = q.Where("student_results.reg_number LIKE ?", escapeLike(filter.RegPrefix)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []model.StudentResult
	err := q.Preload("Course").
		Order("courses.session_written DESC, courses.course_code ASC, student_results.reg_number ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error
	return results, total, err
}

func (r *resultRepo) ListByCourse(ctx context.Context, courseID string) ([]model.StudentResult, error) {
	var results []model.StudentResult
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id = ?", courseID).
		Order("reg_number ASC").
		Find(&results).Error
	return results, err
}

func (r *resultRepo) ListByRegAndCourse(ctx context.Context, regNumber, courseID string) ([]model.StudentResult, error) {
	var results []model.StudentResult
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("reg_number = ? AND course_id = ?", regNumber, courseID).
		Find(&results).Error
	return results, err
}
