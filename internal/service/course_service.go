package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

var ErrCourseNotFound = fmt.Errorf("%w: course not found", apperrors.ErrNotFound)

// CourseService course catalogue.
type CourseService interface {
	List(ctx context.Context, session string) ([]dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService creates a CourseService.
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) List(ctx context.Context, session string) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, session)
	if err != nil {
		s.logger.Error("list courses", zap.Error(err))
		return nil, err
	}
	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, *toCourseResponse(&courses[i]))
	}
	return list, nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("get course", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	if c == nil {
		return nil
	}
	return &dto.CourseResponse{
		ID:             c.CourseID,
		CourseCode:     c.CourseCode,
		CourseTitle:    c.CourseTitle,
		SessionWritten: c.SessionWritten,
		Year:           c.Year,
		Semester:       c.Semester,
	}
}
