package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/service"
	"github.com/chibuike2003/palgunn/pkg/response"
)

// ExportHandler result sheet downloads.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportResults downloads the results of one course.
// GET /api/v1/results/export?course_code=CSC101&format=xlsx|csv
func (h *ExportHandler) ExportResults(c *gin.Context) {
	var req dto.ResultExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	file, err := h.exportSvc.ExportCourse(c.Request.Context(), req.CourseCode, req.Format)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(file.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, file.ContentType, file.Content.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoResults):
		response.NotFound(c, 14001, message(err))
	case errors.Is(err, service.ErrExportFormat):
		response.BadRequest(c, 14002, message(err))
	default:
		respondError(c, err)
	}
}
