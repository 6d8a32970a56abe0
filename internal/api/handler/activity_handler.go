package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/service"
	"github.com/chibuike2003/palgunn/pkg/response"
)

// ActivityHandler admin activity log.
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// ListActivity pages through recorded admin actions, newest first.
// GET /api/v1/activity-logs?actor_id=&page=&page_size=
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	var req dto.ActivityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.activitySvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
