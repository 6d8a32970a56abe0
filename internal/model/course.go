package model

// Course one row per unique course code (courses).
type Course struct {
	CourseID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	CourseCode     string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"course_code"`
	CourseTitle    string `gorm:"type:varchar(255);not null"                     json:"course_title"`
	SessionWritten string `gorm:"type:varchar(50);not null;index"                json:"session_written"` // e.g. 2023/2024
	Year           string `gorm:"type:varchar(50);not null"                      json:"year"`
	Semester       string `gorm:"type:varchar(50);not null"                      json:"semester"`
	BaseModel
}

func (Course) TableName() string { return "courses" }
