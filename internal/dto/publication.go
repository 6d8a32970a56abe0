package dto

// ── publication schedule DTOs ──

// CreatePublicationRequest schedule creation form. Times use the
// datetime-local layout YYYY-MM-DDTHH:MM without zone.
type CreatePublicationRequest struct {
	CourseID       string `form:"course_id"       json:"course_id"`
	SessionWritten string `form:"session_written" json:"session_written"`
	PublishStart   string `form:"publish_start"   json:"publish_start"`
	PublishEnd     string `form:"publish_end"     json:"publish_end"`
}

// UpdatePublicationRequest schedule edit form. An absent is_active keeps the
// current state; forms send an explicit false to deactivate.
type UpdatePublicationRequest struct {
	CreatePublicationRequest
	IsActive *bool `form:"is_active" json:"is_active"`
	Version  *int  `form:"version"   json:"version"`
}

// PublicationListRequest listing filter.
type PublicationListRequest struct {
	CourseID string `form:"course_id"`
	Active   *bool  `form:"active"`
}

// PublicationResponse schedule view. Times are rendered in the portal zone.
type PublicationResponse struct {
	ID             string          `json:"id"`
	CourseID       string          `json:"course_id"`
	Course         *CourseResponse `json:"course,omitempty"`
	SessionWritten string          `json:"session_written"`
	PublishStart   string          `json:"publish_start"`
	PublishEnd     string          `json:"publish_end"`
	IsActive       bool            `json:"is_active"`
	OpenNow        bool            `json:"open_now"`
	CreatedBy      string          `json:"created_by,omitempty"`
	Version        int             `json:"version"`
}
