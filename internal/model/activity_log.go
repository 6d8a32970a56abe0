package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity actions.
const (
	ActionResultsUploaded = "results.uploaded"
	ActionResultsImported = "results.imported"
	ActionResultUpdated   = "result.updated"
	ActionResultDeleted   = "result.deleted"
	ActionScheduleCreated = "schedule.created"
	ActionScheduleUpdated = "schedule.updated"
)

// ActivityLog append-only audit trail of staff actions (activity_logs).
type ActivityLog struct {
	LogID      string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	ActorID    string         `gorm:"type:uuid;not null;index"                       json:"actor_id"`
	Action     string         `gorm:"type:varchar(50);not null"                      json:"action"`
	TargetType string         `gorm:"type:varchar(50)"                               json:"target_type,omitempty"`
	TargetID   string         `gorm:"type:varchar(64)"                               json:"target_id,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb"                                     json:"details,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Actor *Account `gorm:"foreignKey:ActorID;references:AccountID" json:"actor,omitempty"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
