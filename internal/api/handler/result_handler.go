package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/service"
	"github.com/chibuike2003/palgunn/pkg/response"
)

// ResultHandler results administration endpoints.
type ResultHandler struct {
	resultSvc      service.ResultService
	importMaxBytes int64
}

// NewResultHandler creates a ResultHandler.
func NewResultHandler(resultSvc service.ResultService, importMaxBytes int64) *ResultHandler {
	return &ResultHandler{resultSvc: resultSvc, importMaxBytes: importMaxBytes}
}

// UpsertBatch stores the results of one course from the bulk upload form.
// Accepts application/x-www-form-urlencoded, multipart/form-data or JSON.
// POST /api/v1/results/batch
func (h *ResultHandler) UpsertBatch(c *gin.Context) {
	var req dto.ResultBatchRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.resultSvc.UpsertBatch(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	h.writeBatch(c, result)
}

// ImportResults stores the rows of an uploaded xlsx workbook. The course is
// given by form fields; the workbook goes in the "file" part.
// POST /api/v1/results/import
func (h *ResultHandler) ImportResults(c *gin.Context) {
	var req dto.ResultImportRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 13006, "upload the results workbook in the \"file\" field")
		return
	}
	if h.importMaxBytes > 0 && fileHeader.Size > h.importMaxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 13007,
			fmt.Sprintf("workbook exceeds %d bytes", h.importMaxBytes))
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		response.BadRequest(c, 13006, "only .xlsx workbooks can be imported")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	defer file.Close()

	result, err := h.resultSvc.Import(c.Request.Context(), &req.CourseInput, req.AllOrNothing, file, callerID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	h.writeBatch(c, result)
}

// ListResults searches stored results.
// GET /api/v1/results?q=&course_code=&session=&year=&semester=&reg_prefix=&page=&page_size=
func (h *ResultHandler) ListResults(c *gin.Context) {
	var req dto.ResultListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.resultSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetResult returns one result.
// GET /api/v1/results/:id
func (h *ResultHandler) GetResult(c *gin.Context) {
	id, ok := parseID(c, 13002, service.ErrResultNotFound)
	if !ok {
		return
	}

	result, err := h.resultSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateResult edits the scores of one result.
// PUT /api/v1/results/:id
func (h *ResultHandler) UpdateResult(c *gin.Context) {
	id, ok := parseID(c, 13002, service.ErrResultNotFound)
	if !ok {
		return
	}

	var req dto.UpdateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.resultSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteResult removes one result.
// DELETE /api/v1/results/:id
func (h *ResultHandler) DeleteResult(c *gin.Context) {
	id, ok := parseID(c, 13002, service.ErrResultNotFound)
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.resultSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleResultError(c, err)
		return
	}

	response.OK(c, nil)
}

// writeBatch 201 when anything was stored. A batch that stored nothing is
// 409 when rows conflicted and 500 when storage failed; both carry the
// per-row outcome.
func (h *ResultHandler) writeBatch(c *gin.Context, result *dto.ResultBatchResponse) {
	switch {
	case result.Status == dto.BatchFailed && result.Failed > 0:
		response.ErrorWithData(c, http.StatusInternalServerError, 13008, "results could not be stored", result)
	case result.Status == dto.BatchFailed:
		response.ErrorWithData(c, http.StatusConflict, 13003, "no results were stored", result)
	default:
		response.Created(c, result)
	}
}

func (h *ResultHandler) handleResultError(c *gin.Context, err error) {
	var rejected *service.BatchRejectedError
	switch {
	case errors.As(err, &rejected):
		response.ErrorWithData(c, http.StatusBadRequest, 13001, message(err), gin.H{
			"fields": rejected.Fields,
			"batch":  rejected.Response,
		})
	case errors.Is(err, service.ErrResultNotFound):
		response.NotFound(c, 13002, message(err))
	case errors.Is(err, service.ErrResultConflict):
		response.Conflict(c, 13003, message(err))
	case errors.Is(err, service.ErrCourseConflict):
		response.Conflict(c, 13004, message(err))
	case errors.Is(err, service.ErrImportUnreadable),
		errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 13005, message(err))
	default:
		respondError(c, err)
	}
}
