package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chibuike2003/palgunn/internal/service"
	"github.com/chibuike2003/palgunn/pkg/response"
)

// CourseHandler course catalogue endpoints.
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses lists courses, optionally of one session.
// GET /api/v1/courses?session=2023/2024
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseSvc.List(c.Request.Context(), c.Query("session"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GetCourse returns one course.
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := parseID(c, 12001, service.ErrCourseNotFound)
	if !ok {
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFound(c, 12001, message(err))
			return
		}
		respondError(c, err)
		return
	}

	response.OK(c, course)
}
