package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/service"
	"github.com/chibuike2003/palgunn/pkg/response"
)

// PublicationHandler publication schedule endpoints.
type PublicationHandler struct {
	publicationSvc service.PublicationService
}

// NewPublicationHandler creates a PublicationHandler.
func NewPublicationHandler(publicationSvc service.PublicationService) *PublicationHandler {
	return &PublicationHandler{publicationSvc: publicationSvc}
}

// CreateSchedule opens a publication window for a course session.
// POST /api/v1/publications
func (h *PublicationHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreatePublicationRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schedule, err := h.publicationSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePublicationError(c, err)
		return
	}

	response.Created(c, schedule)
}

// UpdateSchedule edits a publication window.
// PUT /api/v1/publications/:id
func (h *PublicationHandler) UpdateSchedule(c *gin.Context) {
	id, ok := parseID(c, 15001, service.ErrScheduleNotFound)
	if !ok {
		return
	}

	var req dto.UpdatePublicationRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schedule, err := h.publicationSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePublicationError(c, err)
		return
	}

	response.OK(c, schedule)
}

// GetSchedule returns one publication window.
// GET /api/v1/publications/:id
func (h *PublicationHandler) GetSchedule(c *gin.Context) {
	id, ok := parseID(c, 15001, service.ErrScheduleNotFound)
	if !ok {
		return
	}

	schedule, err := h.publicationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePublicationError(c, err)
		return
	}

	response.OK(c, schedule)
}

// ListSchedules lists publication windows.
// GET /api/v1/publications?course_id=&active=
func (h *PublicationHandler) ListSchedules(c *gin.Context) {
	var req dto.PublicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if req.CourseID != "" {
		if _, err := uuid.Parse(req.CourseID); err != nil {
			response.BadRequest(c, codeInvalidParams, "course_id must be a valid id")
			return
		}
	}

	schedules, err := h.publicationSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handlePublicationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// ListSessions lists the academic sessions offered by the schedule form.
// GET /api/v1/publications/sessions
func (h *PublicationHandler) ListSessions(c *gin.Context) {
	sessions, err := h.publicationSvc.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// Calendar serves the active windows as an iCalendar feed.
// GET /api/v1/publications/calendar.ics
func (h *PublicationHandler) Calendar(c *gin.Context) {
	feed, err := h.publicationSvc.Calendar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="publications.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", feed)
}

func (h *PublicationHandler) handlePublicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 15001, message(err))
	case errors.Is(err, service.ErrScheduleExists):
		response.Conflict(c, 15002, message(err))
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15003, message(err))
	default:
		respondError(c, err)
	}
}
