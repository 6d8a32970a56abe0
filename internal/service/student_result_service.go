package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	"github.com/chibuike2003/palgunn/pkg/clock"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

var ErrNoRegNumber = fmt.Errorf("%w: the account has no registration number", apperrors.ErrValidation)

// StudentResultService the student's view of published results.
type StudentResultService interface {
	// Published returns the student's results whose publication window is
	// open now, sorted by session then course code. Results are matched to a
	// window only when the course's session equals the window's session.
	Published(ctx context.Context, regNumber string) ([]dto.PublishedResultResponse, error)
}

type studentResultService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewStudentResultService creates a StudentResultService.
func NewStudentResultService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) StudentResultService {
	return &studentResultService{repo: repo, clock: clk, logger: logger}
}

func (s *studentResultService) Published(ctx context.Context, regNumber string) ([]dto.PublishedResultResponse, error) {
	regNumber = strings.TrimSpace(regNumber)
	if regNumber == "" {
		return nil, ErrNoRegNumber
	}

	now := s.clock.Now()
	schedules, err := s.repo.Publication.ListOpenAt(ctx, now)
	if err != nil {
		s.logger.Error("list open publication windows", zap.Error(err))
		return nil, err
	}

	list := make([]dto.PublishedResultResponse, 0)
	for i := range schedules {
		sc := &schedules[i]
		if !sc.VisibleAt(now) {
			continue
		}

		course := sc.Course
		if course == nil {
			if course, err = s.repo.Course.GetByID(ctx, sc.CourseID); err != nil {
				if repository.IsNotFound(err) {
					continue
				}
				s.logger.Error("get course", zap.String("course_id", sc.CourseID), zap.Error(err))
				return nil, err
			}
		}
		// the course session may have been edited after the window was set
		if course.SessionWritten != sc.SessionWritten {
			continue
		}

		results, err := s.repo.Result.ListByRegAndCourse(ctx, regNumber, course.CourseID)
		if err != nil {
			s.logger.Error("list student results",
				zap.String("reg_number", regNumber),
				zap.String("course_id", course.CourseID),
				zap.Error(err),
			)
			return nil, err
		}
		for j := range results {
			list = append(list, s.toPublished(course, sc, &results[j]))
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].SessionWritten != list[j].SessionWritten {
			return list[i].SessionWritten < list[j].SessionWritten
		}
		return list[i].CourseCode < list[j].CourseCode
	})
	return list, nil
}

func (s *studentResultService) toPublished(c *model.Course, sc *model.PublicationSchedule, r *model.StudentResult) dto.PublishedResultResponse {
	loc := s.clock.Location()
	return dto.PublishedResultResponse{
		CourseCode:     c.CourseCode,
		CourseTitle:    c.CourseTitle,
		SessionWritten: sc.SessionWritten,
		Year:           c.Year,
		Semester:       c.Semester,
		CAScore:        r.CAScore,
		ExamScore:      r.ExamScore,
		TotalScore:     r.TotalScore,
		Grade:          r.Grade,
		PublishStart:   sc.PublishStart.In(loc).Format(PublishLayout),
		PublishEnd:     sc.PublishEnd.In(loc).Format(PublishLayout),
	}
}
