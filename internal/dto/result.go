package dto

// ── results DTOs ──

// CourseInput course identity carried by an upload.
type CourseInput struct {
	CourseCode     string `form:"courseCode"     json:"courseCode"`
	CourseTitle    string `form:"courseTitle"    json:"courseTitle"`
	SessionWritten string `form:"sessionWritten" json:"sessionWritten"`
	Year           string `form:"year"           json:"year"`
	Semester       string `form:"semester"       json:"semester"`
}

// ResultBatchRequest bulk upload form: one course plus four parallel
// newline/comma separated blocks.
type ResultBatchRequest struct {
	CourseInput
	StudentNamesBulk string `form:"studentNamesBulk" json:"studentNamesBulk"`
	RegNumbersBulk   string `form:"regNumbersBulk"   json:"regNumbersBulk"`
	CAScoresBulk     string `form:"caScoresBulk"     json:"caScoresBulk"`
	ExamScoresBulk   string `form:"examScoresBulk"   json:"examScoresBulk"`
	// AllOrNothing commits the whole batch in one transaction.
	AllOrNothing bool `form:"allOrNothing" json:"allOrNothing"`
}

// Row outcome statuses.
const (
	RowPending    = "pending"
	RowInvalid    = "invalid"
	RowCreated    = "created"
	RowUpdated    = "updated"
	RowConflict   = "conflict"
	RowFailed     = "failed"
	RowSkipped    = "skipped"
	RowRolledBack = "rolled_back"
)

// Batch statuses.
const (
	BatchSuccess = "success"
	BatchPartial = "partial"
	BatchFailed  = "failed"
)

// ResultImportRequest multipart import: course fields plus an xlsx "file" part.
type ResultImportRequest struct {
	CourseInput
	AllOrNothing bool `form:"allOrNothing"`
}

// ResultRowOutcome outcome of one bulk entry.
type ResultRowOutcome struct {
	Index       int             `json:"index"` // zero-based entry position
	StudentName string          `json:"student_name"`
	RegNumber   string          `json:"reg_number"`
	Status      string          `json:"status"`
	Message     string          `json:"message,omitempty"`
	Warning     string          `json:"warning,omitempty"`
	Result      *ResultResponse `json:"result,omitempty"`
}

// ResultBatchResponse outcome of a bulk upload.
type ResultBatchResponse struct {
	Course        *CourseResponse    `json:"course,omitempty"`
	CourseCreated bool               `json:"course_created"`
	Status        string             `json:"status"`
	Created       int                `json:"created"`
	Updated       int                `json:"updated"`
	Conflicts     int                `json:"conflicts"`
	Failed        int                `json:"failed"`
	Rows          []ResultRowOutcome `json:"rows"`
	// Input echoes the submission when it was rejected, for correction.
	Input *ResultBatchRequest `json:"input,omitempty"`
}

// UpdateResultRequest edit of a stored result.
type UpdateResultRequest struct {
	StudentName *string  `json:"student_name" binding:"omitempty,min=1,max=255"`
	CAScore     *float64 `json:"ca_score"     binding:"required"`
	ExamScore   *float64 `json:"exam_score"   binding:"required"`
	Version     *int     `json:"version"`
}

// ResultListRequest search parameters.
type ResultListRequest struct {
	PaginationRequest
	Query      string `form:"q"`
	CourseCode string `form:"course_code"`
	Session    string `form:"session"`
	Year       string `form:"year"`
	Semester   string `form:"semester"`
	RegPrefix  string `form:"reg_prefix"`
}

// ResultExportRequest export parameters.
type ResultExportRequest struct {
	CourseCode string `form:"course_code" binding:"required"`
	Format     string `form:"format"      binding:"omitempty,oneof=xlsx csv"`
}

// CourseResponse course view.
type CourseResponse struct {
	ID             string `json:"id"`
	CourseCode     string `json:"course_code"`
	CourseTitle    string `json:"course_title"`
	SessionWritten string `json:"session_written"`
	Year           string `json:"year"`
	Semester       string `json:"semester"`
}

// ResultResponse stored result view.
type ResultResponse struct {
	ID          string          `json:"id"`
	CourseID    string          `json:"course_id"`
	Course      *CourseResponse `json:"course,omitempty"`
	StudentName string          `json:"student_name"`
	RegNumber   string          `json:"reg_number"`
	CAScore     float64         `json:"ca_score"`
	ExamScore   float64         `json:"exam_score"`
	TotalScore  float64         `json:"total_score"`
	Grade       string          `json:"grade"`
	Version     int             `json:"version"`
	UpdatedAt   string          `json:"updated_at"`
}

// PublishedResultResponse one row of a student's visible results.
type PublishedResultResponse struct {
	CourseCode     string  `json:"course_code"`
	CourseTitle    string  `json:"course_title"`
	SessionWritten string  `json:"session_written"`
	Year           string  `json:"year"`
	Semester       string  `json:"semester"`
	CAScore        float64 `json:"ca_score"`
	ExamScore      float64 `json:"exam_score"`
	TotalScore     float64 `json:"total_score"`
	Grade          string  `json:"grade"`
	PublishStart   string  `json:"publish_start"`
	PublishEnd     string  `json:"publish_end"`
}
