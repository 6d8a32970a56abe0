package model

// StudentResult a score row (student_results), unique per (course_id, reg_number)
// among live rows.
type StudentResult struct {
	ResultID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"result_id"`
	CourseID    string  `gorm:"type:uuid;not null"                             json:"course_id"`
	StudentName string  `gorm:"type:varchar(255);not null"                     json:"student_name"`
	RegNumber   string  `gorm:"type:varchar(50);not null;index"                json:"reg_number"`
	CAScore     float64 `gorm:"type:numeric(5,2);not null"                     json:"ca_score"`
	ExamScore   float64 `gorm:"type:numeric(5,2);not null"                     json:"exam_score"`
	TotalScore  float64 `gorm:"type:numeric(5,2);not null"                     json:"total_score"`
	Grade       string  `gorm:"type:varchar(2);not null"                       json:"grade"`
	VersionedModel

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

func (StudentResult) TableName() string { return "student_results" }
