package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chibuike2003/palgunn/internal/service"
	"github.com/chibuike2003/palgunn/pkg/response"
)

// StudentHandler student facing endpoints.
type StudentHandler struct {
	studentResultSvc service.StudentResultService
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(studentResultSvc service.StudentResultService) *StudentHandler {
	return &StudentHandler{studentResultSvc: studentResultSvc}
}

// MyResults lists the caller's results whose publication window is open.
// GET /api/v1/student/results
func (h *StudentHandler) MyResults(c *gin.Context) {
	regNumber, ok := MustGetRegNumber(c)
	if !ok {
		return
	}

	results, err := h.studentResultSvc.Published(c.Request.Context(), regNumber)
	if err != nil {
		if errors.Is(err, service.ErrNoRegNumber) {
			response.BadRequest(c, 16001, message(err))
			return
		}
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": results})
}
