package model

import "time"

// PublicationSchedule result_publication_schedules
//
// Results of CourseID whose course session equals SessionWritten are visible
// to students while IsActive and PublishStart <= now <= PublishEnd.
// At most one row per (course_id, session_written).
type PublicationSchedule struct {
	ScheduleID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	CourseID       string    `gorm:"type:uuid;not null"                             json:"course_id"`
	SessionWritten string    `gorm:"type:varchar(50);not null"                      json:"session_written"`
	PublishStart   time.Time `gorm:"type:timestamptz;not null"                      json:"publish_start"`
	PublishEnd     time.Time `gorm:"type:timestamptz;not null"                      json:"publish_end"`
	IsActive       bool      `gorm:"not null;default:true"                          json:"is_active"`
	Version        int       `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

func (PublicationSchedule) TableName() string { return "result_publication_schedules" }

// VisibleAt reports whether the window is open at now.
func (p *PublicationSchedule) VisibleAt(now time.Time) bool {
	return p.IsActive && !now.Before(p.PublishStart) && !now.After(p.PublishEnd)
}
