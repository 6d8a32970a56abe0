package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	"github.com/chibuike2003/palgunn/pkg/clock"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// PublishLayout datetime-local form layout; values carry no zone.
const PublishLayout = "2006-01-02T15:04"

// ── publication errors ──

var (
	ErrScheduleNotFound = fmt.Errorf("%w: publication schedule not found", apperrors.ErrNotFound)
	ErrScheduleExists   = fmt.Errorf("%w: a publication schedule already exists for this course and session, edit it instead", apperrors.ErrConflict)
)

// PublicationService schedules the windows in which students see results.
type PublicationService interface {
	Create(ctx context.Context, req *dto.CreatePublicationRequest, actorID string) (*dto.PublicationResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePublicationRequest, actorID string) (*dto.PublicationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PublicationResponse, error)
	List(ctx context.Context, req *dto.PublicationListRequest) ([]dto.PublicationResponse, error)
	// ListSessions distinct academic sessions known from courses, newest first.
	ListSessions(ctx context.Context) ([]string, error)
	// Calendar renders every active window as an iCalendar feed.
	Calendar(ctx context.Context) ([]byte, error)
}

type publicationService struct {
	repo     *repository.Repository
	clock    clock.Clock
	activity ActivityService
	logger   *zap.Logger
}

// NewPublicationService creates a PublicationService.
func NewPublicationService(repo *repository.Repository, clk clock.Clock, activity ActivityService, logger *zap.Logger) PublicationService {
	return &publicationService{repo: repo, clock: clk, activity: activity, logger: logger}
}

// publicationWindow validated form input.
type publicationWindow struct {
	courseID string
	session  string
	start    time.Time
	end      time.Time
}

// parseWindow checks presence of every field and interprets the timestamps
// in the portal zone.
func (s *publicationService) parseWindow(req *dto.CreatePublicationRequest) (publicationWindow, error) {
	w := publicationWindow{
		courseID: strings.TrimSpace(req.CourseID),
		session:  strings.TrimSpace(req.SessionWritten),
	}

	var errs apperrors.FieldErrors
	if w.courseID == "" {
		errs = append(errs, apperrors.NewFieldError("course_id", "is required"))
	} else if id, err := uuid.Parse(w.courseID); err != nil {
		errs = append(errs, apperrors.NewFieldError("course_id", "must be a valid id"))
	} else {
		w.courseID = id.String()
	}
	if w.session == "" {
		errs = append(errs, apperrors.NewFieldError("session_written", "is required"))
	}

	parse := func(field, raw string) (time.Time, bool) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			errs = append(errs, apperrors.NewFieldError(field, "is required"))
			return time.Time{}, false
		}
		t, err := time.ParseInLocation(PublishLayout, raw, s.clock.Location())
		if err != nil {
			errs = append(errs, apperrors.NewFieldError(field, "must use the format YYYY-MM-DDTHH:MM"))
			return time.Time{}, false
		}
		return t, true
	}
	start, okStart := parse("publish_start", req.PublishStart)
	end, okEnd := parse("publish_end", req.PublishEnd)
	if okStart && okEnd && !end.After(start) {
		errs = append(errs, apperrors.NewFieldError("publish_end", "must be after publish_start"))
	}
	w.start, w.end = start, end

	if len(errs) > 0 {
		return w, errs
	}
	return w, nil
}

// ────────────────────── Create ──────────────────────

func (s *publicationService) Create(ctx context.Context, req *dto.CreatePublicationRequest, actorID string) (*dto.PublicationResponse, error) {
	w, err := s.parseWindow(req)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, w.courseID)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.Publication.GetByCourseAndSession(ctx, w.courseID, w.session)
	if err == nil {
		return nil, ErrScheduleExists
	}
	if !repository.IsNotFound(err) {
		s.logger.Error("get publication schedule", zap.String("course_id", w.courseID), zap.Error(err))
		return nil, err
	}

	schedule := &model.PublicationSchedule{
		CourseID:       w.courseID,
		SessionWritten: w.session,
		PublishStart:   w.start,
		PublishEnd:     w.end,
		IsActive:       true,
		Version:        1,
	}
	schedule.CreatedBy = &actorID
	schedule.UpdatedBy = &actorID

	if err := s.repo.Publication.Create(ctx, schedule); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrScheduleExists
		}
		s.logger.Error("create publication schedule", zap.String("course_id", w.courseID), zap.Error(err))
		return nil, err
	}
	schedule.Course = course

	s.activity.Record(ctx, actorID, model.ActionScheduleCreated, "publication_schedule", schedule.ScheduleID, map[string]interface{}{
		"course_code":   course.CourseCode,
		"session":       w.session,
		"publish_start": s.format(w.start),
		"publish_end":   s.format(w.end),
	})
	return s.toResponse(schedule), nil
}

// ────────────────────── Update ──────────────────────

func (s *publicationService) Update(ctx context.Context, id string, req *dto.UpdatePublicationRequest, actorID string) (*dto.PublicationResponse, error) {
	schedule, err := s.repo.Publication.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("get publication schedule", zap.String("schedule_id", id), zap.Error(err))
		return nil, err
	}

	w, err := s.parseWindow(&req.CreatePublicationRequest)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != schedule.Version {
		return nil, apperrors.ErrOptimisticLock
	}

	course := schedule.Course
	if w.courseID != schedule.CourseID || w.session != schedule.SessionWritten {
		if course, err = s.getCourse(ctx, w.courseID); err != nil {
			return nil, err
		}
		other, err := s.repo.Publication.GetByCourseAndSession(ctx, w.courseID, w.session)
		switch {
		case err == nil && other.ScheduleID != schedule.ScheduleID:
			return nil, ErrScheduleExists
		case err != nil && !repository.IsNotFound(err):
			s.logger.Error("get publication schedule", zap.String("course_id", w.courseID), zap.Error(err))
			return nil, err
		}
	}

	schedule.CourseID = w.courseID
	schedule.SessionWritten = w.session
	schedule.PublishStart = w.start
	schedule.PublishEnd = w.end
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	schedule.UpdatedBy = &actorID

	if err := s.repo.Publication.Update(ctx, schedule); err != nil {
		switch {
		case repository.IsUniqueViolation(err):
			return nil, ErrScheduleExists
		case errors.Is(err, apperrors.ErrOptimisticLock):
			return nil, err
		}
		s.logger.Error("update publication schedule", zap.String("schedule_id", id), zap.Error(err))
		return nil, err
	}
	schedule.Course = course

	s.activity.Record(ctx, actorID, model.ActionScheduleUpdated, "publication_schedule", id, map[string]interface{}{
		"session":       w.session,
		"publish_start": s.format(w.start),
		"publish_end":   s.format(w.end),
		"is_active":     schedule.IsActive,
	})
	return s.toResponse(schedule), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *publicationService) GetByID(ctx context.Context, id string) (*dto.PublicationResponse, error) {
	schedule, err := s.repo.Publication.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("get publication schedule", zap.String("schedule_id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(schedule), nil
}

// ────────────────────── List ──────────────────────

func (s *publicationService) List(ctx context.Context, req *dto.PublicationListRequest) ([]dto.PublicationResponse, error) {
	schedules, err := s.repo.Publication.List(ctx, repository.PublicationFilter{
		CourseID: strings.TrimSpace(req.CourseID),
		Active:   req.Active,
	})
	if err != nil {
		s.logger.Error("list publication schedules", zap.Error(err))
		return nil, err
	}

	list := make([]dto.PublicationResponse, 0, len(schedules))
	for i := range schedules {
		list = append(list, *s.toResponse(&schedules[i]))
	}
	return list, nil
}

func (s *publicationService) ListSessions(ctx context.Context) ([]string, error) {
	sessions, err := s.repo.Course.ListSessions(ctx)
	if err != nil {
		s.logger.Error("list sessions", zap.Error(err))
		return nil, err
	}
	if sessions == nil {
		sessions = []string{}
	}
	return sessions, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *publicationService) Calendar(ctx context.Context) ([]byte, error) {
	active := true
	schedules, err := s.repo.Publication.List(ctx, repository.PublicationFilter{Active: &active})
	if err != nil {
		s.logger.Error("list publication schedules", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//palgunn//result publication//EN")
	cal.SetXWRCalName("Result publication windows")

	stamp := s.clock.Now()
	for _, sc := range schedules {
		code := sc.CourseID
		if sc.Course != nil {
			code = sc.Course.CourseCode
		}

		event := cal.AddEvent(sc.ScheduleID + "@palgunn")
		event.SetDtStampTime(stamp)
		event.SetModifiedAt(sc.UpdatedAt)
		event.SetStartAt(sc.PublishStart)
		event.SetEndAt(sc.PublishEnd)
		event.SetSummary(fmt.Sprintf("%s results (%s)", code, sc.SessionWritten))
		if sc.Course != nil {
			event.SetDescription(fmt.Sprintf("%s %s, %s semester %s", sc.Course.CourseCode, sc.Course.CourseTitle, sc.Course.Semester, sc.SessionWritten))
		}
	}
	return []byte(cal.Serialize()), nil
}

// ── helpers ──

func (s *publicationService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("get course", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func (s *publicationService) format(t time.Time) string {
	return t.In(s.clock.Location()).Format(PublishLayout)
}

func (s *publicationService) toResponse(p *model.PublicationSchedule) *dto.PublicationResponse {
	resp := &dto.PublicationResponse{
		ID:             p.ScheduleID,
		CourseID:       p.CourseID,
		Course:         toCourseResponse(p.Course),
		SessionWritten: p.SessionWritten,
		PublishStart:   s.format(p.PublishStart),
		PublishEnd:     s.format(p.PublishEnd),
		IsActive:       p.IsActive,
		OpenNow:        p.VisibleAt(s.clock.Now()),
		Version:        p.Version,
	}
	if p.CreatedBy != nil {
		resp.CreatedBy = *p.CreatedBy
	}
	return resp
}
