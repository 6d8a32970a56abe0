package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chibuike2003/palgunn/config"
	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/grading"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// ── results errors ──

const resultConflictMsg = "a result for this registration number already exists in the course, edit it instead"

var (
	ErrResultNotFound = fmt.Errorf("%w: result not found", apperrors.ErrNotFound)
	ErrResultConflict = fmt.Errorf("%w: %s", apperrors.ErrConflict, resultConflictMsg)
	ErrCourseConflict = fmt.Errorf("%w: the course was created by another submission at the same time, submit again", apperrors.ErrConflict)
)

// BatchRejectedError a submission that failed validation. Nothing was
// persisted; Response holds the per-row outcome and the original input.
type BatchRejectedError struct {
	Fields   apperrors.FieldErrors
	Response *dto.ResultBatchResponse
}

func (e *BatchRejectedError) Error() string { return e.Fields.Error() }
func (e *BatchRejectedError) Unwrap() error { return e.Fields }

// bulk form field names
const (
	fieldNames = "studentNamesBulk"
	fieldRegs  = "regNumbersBulk"
	fieldCA    = "caScoresBulk"
	fieldExam  = "examScoresBulk"
)

var scoreFields = map[string]string{"ca_score": fieldCA, "exam_score": fieldExam}

// ResultService student results administration.
type ResultService interface {
	// UpsertBatch creates or updates one result per bulk entry. Entries are
	// matched on (course, reg number); submitting the same data twice updates
	// in place.
	UpsertBatch(ctx context.Context, req *dto.ResultBatchRequest, actorID string) (*dto.ResultBatchResponse, error)
	// Import runs the upsert for the rows of an xlsx workbook.
	Import(ctx context.Context, course *dto.CourseInput, allOrNothing bool, file io.Reader, actorID string) (*dto.ResultBatchResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ResultResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateResultRequest, actorID string) (*dto.ResultResponse, error)
	Delete(ctx context.Context, id string, actorID string) error
	List(ctx context.Context, req *dto.ResultListRequest) ([]dto.ResultResponse, int64, error)
}

type resultService struct {
	cfg      *config.ResultsConfig
	repo     *repository.Repository
	activity ActivityService
	logger   *zap.Logger
}

// NewResultService creates a ResultService.
func NewResultService(cfg *config.ResultsConfig, repo *repository.Repository, activity ActivityService, logger *zap.Logger) ResultService {
	return &resultService{cfg: cfg, repo: repo, activity: activity, logger: logger}
}

// resultColumns the four parallel entry sequences of a submission.
type resultColumns struct {
	names []string
	regs  []string
	cas   []string
	exams []string
}

// batchRow one validated entry.
type batchRow struct {
	name   string
	reg    string
	ca     float64
	exam   float64
	total  float64
	grade  string
	capped bool
}

// ────────────────────── UpsertBatch ──────────────────────

func (s *resultService) UpsertBatch(ctx context.Context, req *dto.ResultBatchRequest, actorID string) (*dto.ResultBatchResponse, error) {
	cols := resultColumns{
		names: grading.ParseBulk(req.StudentNamesBulk),
		regs:  grading.ParseBulk(req.RegNumbersBulk),
		cas:   grading.ParseBulk(req.CAScoresBulk),
		exams: grading.ParseBulk(req.ExamScoresBulk),
	}
	return s.upsert(ctx, req, cols, actorID, model.ActionResultsUploaded)
}

func (s *resultService) upsert(ctx context.Context, input *dto.ResultBatchRequest, cols resultColumns, actorID, action string) (*dto.ResultBatchResponse, error) {
	course, errs := normalizeCourse(&input.CourseInput)
	errs = append(errs, s.checkColumns(cols)...)
	if len(errs) > 0 {
		return nil, reject(errs, nil, input)
	}

	rows, outcomes, rowErrs := validateRows(cols)
	if len(rowErrs) > 0 {
		return nil, reject(rowErrs, outcomes, input)
	}

	var (
		resp *dto.ResultBatchResponse
		err  error
	)
	if input.AllOrNothing {
		resp, err = s.commitAll(ctx, course, rows, outcomes, actorID)
	} else {
		resp, err = s.commitEach(ctx, course, rows, outcomes, actorID)
	}
	if err != nil {
		return nil, err
	}

	if resp.Created+resp.Updated > 0 {
		s.activity.Record(ctx, actorID, action, "course", resp.Course.ID, map[string]interface{}{
			"course_code": resp.Course.CourseCode,
			"session":     resp.Course.SessionWritten,
			"created":     resp.Created,
			"updated":     resp.Updated,
			"conflicts":   resp.Conflicts,
			"failed":      resp.Failed,
		})
	}
	return resp, nil
}

func reject(errs apperrors.FieldErrors, rows []dto.ResultRowOutcome, input *dto.ResultBatchRequest) error {
	if rows == nil {
		rows = []dto.ResultRowOutcome{}
	}
	return &BatchRejectedError{
		Fields: errs,
		Response: &dto.ResultBatchResponse{
			Status: dto.BatchFailed,
			Rows:   rows,
			Input:  input,
		},
	}
}

// normalizeCourse trims the course identity and reports missing fields.
func normalizeCourse(in *dto.CourseInput) (dto.CourseInput, apperrors.FieldErrors) {
	out := dto.CourseInput{
		CourseCode:     strings.TrimSpace(in.CourseCode),
		CourseTitle:    strings.TrimSpace(in.CourseTitle),
		SessionWritten: strings.TrimSpace(in.SessionWritten),
		Year:           strings.TrimSpace(in.Year),
		Semester:       strings.TrimSpace(in.Semester),
	}

	var errs apperrors.FieldErrors
	for _, f := range []struct{ name, value string }{
		{"courseCode", out.CourseCode},
		{"courseTitle", out.CourseTitle},
		{"sessionWritten", out.SessionWritten},
		{"year", out.Year},
		{"semester", out.Semester},
	} {
		if f.value == "" {
			errs = append(errs, apperrors.NewFieldError(f.name, "is required"))
		}
	}
	return out, errs
}

// checkColumns verifies the four sequences line up.
func (s *resultService) checkColumns(cols resultColumns) apperrors.FieldErrors {
	n := len(cols.names)
	if n == 0 {
		return apperrors.FieldErrors{apperrors.NewFieldError(fieldNames, "at least one student entry is required")}
	}

	var errs apperrors.FieldErrors
	for _, c := range []struct {
		field string
		items []string
	}{
		{fieldRegs, cols.regs},
		{fieldCA, cols.cas},
		{fieldExam, cols.exams},
	} {
		if len(c.items) != n {
			errs = append(errs, apperrors.NewFieldError(c.field,
				fmt.Sprintf("has %d entries but %s has %d", len(c.items), fieldNames, n)))
		}
	}
	if n > s.cfg.MaxBatchRows {
		errs = append(errs, apperrors.NewFieldError(fieldNames,
			fmt.Sprintf("has %d entries, at most %d are accepted per submission", n, s.cfg.MaxBatchRows)))
	}
	return errs
}

// validateRows parses and range-checks every entry. Every row gets an
// outcome: invalid rows carry their messages, valid rows are pending.
func validateRows(cols resultColumns) ([]batchRow, []dto.ResultRowOutcome, apperrors.FieldErrors) {
	n := len(cols.names)
	rows := make([]batchRow, n)
	outcomes := make([]dto.ResultRowOutcome, n)
	seen := make(map[string]int, n)

	var errs apperrors.FieldErrors
	for i := 0; i < n; i++ {
		r := batchRow{
			name: strings.TrimSpace(cols.names[i]),
			reg:  strings.TrimSpace(cols.regs[i]),
		}

		var rowErrs apperrors.FieldErrors
		if r.name == "" {
			rowErrs = append(rowErrs, &apperrors.FieldError{Field: fieldNames, Row: i, Message: "student name is required"})
		}
		if r.reg == "" {
			rowErrs = append(rowErrs, &apperrors.FieldError{Field: fieldRegs, Row: i, Message: "registration number is required"})
		} else if first, dup := seen[r.reg]; dup {
			rowErrs = append(rowErrs, &apperrors.FieldError{Field: fieldRegs, Row: i,
				Message: fmt.Sprintf("registration number %s already appears in entry %d", r.reg, first+1)})
		} else {
			seen[r.reg] = i
		}

		ca, caErr := grading.ParseScore(fieldCA, cols.cas[i])
		exam, examErr := grading.ParseScore(fieldExam, cols.exams[i])
		rowErrs = append(rowErrs, atRow(caErr, i)...)
		rowErrs = append(rowErrs, atRow(examErr, i)...)
		if caErr == nil && examErr == nil {
			rowErrs = append(rowErrs, atRow(grading.CheckScores(ca, exam), i)...)
		}

		r.ca, r.exam = ca, exam
		r.total, r.capped = grading.Total(ca, exam)
		r.grade = grading.Grade(r.total)
		rows[i] = r

		outcomes[i] = dto.ResultRowOutcome{
			Index:       i,
			StudentName: r.name,
			RegNumber:   r.reg,
			Status:      dto.RowPending,
		}
		if r.capped {
			outcomes[i].Warning = fmt.Sprintf("total %s capped at %s",
				grading.FormatScore(ca+exam), grading.FormatScore(grading.MaxTotal))
		}
		if len(rowErrs) > 0 {
			outcomes[i].Status = dto.RowInvalid
			outcomes[i].Message = joinMessages(rowErrs)
			errs = append(errs, rowErrs...)
		}
	}
	return rows, outcomes, errs
}

// atRow re-addresses field errors to a bulk entry.
func atRow(err error, row int) apperrors.FieldErrors {
	fields := apperrors.Fields(err)
	out := make(apperrors.FieldErrors, 0, len(fields))
	for _, fe := range fields {
		name := fe.Field
		if bulk, ok := scoreFields[name]; ok {
			name = bulk
		}
		out = append(out, &apperrors.FieldError{Field: name, Row: row, Message: fe.Message})
	}
	return out
}

func joinMessages(errs apperrors.FieldErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// commitEach commits the course, then every row in its own transaction. A
// conflicting row is reported and skipped over; a storage failure stops the
// batch.
func (s *resultService) commitEach(ctx context.Context, in dto.CourseInput, rows []batchRow, outcomes []dto.ResultRowOutcome, actorID string) (*dto.ResultBatchResponse, error) {
	var (
		course  *model.Course
		created bool
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		course, created, err = upsertCourse(ctx, tx, in, actorID)
		return err
	})
	if errors.Is(err, ErrCourseConflict) {
		// lost a create race; the course exists now
		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			var err error
			course, created, err = upsertCourse(ctx, tx, in, actorID)
			return err
		})
	}
	if err != nil {
		return nil, s.courseError(in.CourseCode, err)
	}

	resp := &dto.ResultBatchResponse{Course: toCourseResponse(course), CourseCreated: created, Rows: outcomes}
	for i := range rows {
		if resp.Failed > 0 {
			outcomes[i].Status = dto.RowSkipped
			continue
		}

		var (
			result     *model.StudentResult
			rowCreated bool
		)
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			var err error
			result, rowCreated, err = upsertResult(ctx, tx, course, rows[i], actorID)
			return err
		})
		s.settleRow(resp, i, result, rowCreated, err)
	}

	resp.Status = batchStatus(resp)
	return resp, nil
}

// commitAll commits the course and every row in one transaction; the first
// failing row rolls the whole submission back.
func (s *resultService) commitAll(ctx context.Context, in dto.CourseInput, rows []batchRow, outcomes []dto.ResultRowOutcome, actorID string) (*dto.ResultBatchResponse, error) {
	var (
		course  *model.Course
		created bool
		results = make([]*model.StudentResult, len(rows))
		isNew   = make([]bool, len(rows))
		failed  = -1
		rowErr  error
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if course, created, err = upsertCourse(ctx, tx, in, actorID); err != nil {
			return err
		}
		for i := range rows {
			if results[i], isNew[i], err = upsertResult(ctx, tx, course, rows[i], actorID); err != nil {
				failed, rowErr = i, err
				return err
			}
		}
		return nil
	})
	if err != nil && failed < 0 {
		return nil, s.courseError(in.CourseCode, err)
	}

	resp := &dto.ResultBatchResponse{Course: toCourseResponse(course), CourseCreated: created && err == nil, Rows: outcomes}
	if err == nil {
		for i := range rows {
			s.settleRow(resp, i, results[i], isNew[i], nil)
		}
		resp.Status = batchStatus(resp)
		return resp, nil
	}

	for i := range rows {
		switch {
		case i < failed:
			outcomes[i].Status = dto.RowRolledBack
		case i == failed:
			s.settleRow(resp, i, nil, false, rowErr)
		default:
			outcomes[i].Status = dto.RowSkipped
		}
	}
	// the course row was rolled back with the results
	resp.Course = nil
	resp.Status = dto.BatchFailed
	return resp, nil
}

// settleRow records the outcome of one committed (or refused) row.
func (s *resultService) settleRow(resp *dto.ResultBatchResponse, i int, result *model.StudentResult, created bool, err error) {
	out := &resp.Rows[i]
	switch {
	case err == nil && created:
		out.Status = dto.RowCreated
		out.Result = toResultResponse(result)
		resp.Created++
	case err == nil:
		out.Status = dto.RowUpdated
		out.Result = toResultResponse(result)
		resp.Updated++
	case apperrors.KindOf(err) == apperrors.KindConflict:
		out.Status = dto.RowConflict
		out.Message = conflictMessage(err)
		resp.Conflicts++
	default:
		s.logger.Error("store result",
			zap.String("course_code", resp.Course.CourseCode),
			zap.String("reg_number", out.RegNumber),
			zap.Error(err),
		)
		out.Status = dto.RowFailed
		out.Message = "the result could not be saved"
		resp.Failed++
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, apperrors.ErrOptimisticLock) {
		return "the result was changed by another submission, submit again"
	}
	return resultConflictMsg
}

func (s *resultService) courseError(code string, err error) error {
	if errors.Is(err, ErrCourseConflict) {
		return err
	}
	s.logger.Error("upsert course", zap.String("course_code", code), zap.Error(err))
	return err
}

func batchStatus(resp *dto.ResultBatchResponse) string {
	switch {
	case resp.Conflicts == 0 && resp.Failed == 0:
		return dto.BatchSuccess
	case resp.Created+resp.Updated == 0:
		return dto.BatchFailed
	default:
		return dto.BatchPartial
	}
}

// upsertCourse finds the course by its code and refreshes its descriptive
// fields, or creates it.
func upsertCourse(ctx context.Context, repo *repository.Repository, in dto.CourseInput, actorID string) (*model.Course, bool, error) {
	course, err := repo.Course.GetByCode(ctx, in.CourseCode)
	if err == nil {
		course.CourseTitle = in.CourseTitle
		course.SessionWritten = in.SessionWritten
		course.Year = in.Year
		course.Semester = in.Semester
		course.UpdatedBy = &actorID
		if err := repo.Course.Update(ctx, course); err != nil {
			return nil, false, err
		}
		return course, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	course = &model.Course{
		CourseCode:     in.CourseCode,
		CourseTitle:    in.CourseTitle,
		SessionWritten: in.SessionWritten,
		Year:           in.Year,
		Semester:       in.Semester,
	}
	course.CreatedBy = &actorID
	course.UpdatedBy = &actorID
	if err := repo.Course.Create(ctx, course); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, false, ErrCourseConflict
		}
		return nil, false, err
	}
	return course, true, nil
}

// upsertResult writes one entry: overwrite the (course, reg number) row if it
// exists, create it otherwise.
func upsertResult(ctx context.Context, repo *repository.Repository, course *model.Course, r batchRow, actorID string) (*model.StudentResult, bool, error) {
	existing, err := repo.Result.GetByCourseAndReg(ctx, course.CourseID, r.reg)
	if err == nil {
		existing.StudentName = r.name
		existing.CAScore = r.ca
		existing.ExamScore = r.exam
		existing.TotalScore = r.total
		existing.Grade = r.grade
		existing.UpdatedBy = &actorID
		if err := repo.Result.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		existing.Course = course
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	result := &model.StudentResult{
		CourseID:    course.CourseID,
		StudentName: r.name,
		RegNumber:   r.reg,
		CAScore:     r.ca,
		ExamScore:   r.exam,
		TotalScore:  r.total,
		Grade:       r.grade,
	}
	result.CreatedBy = &actorID
	result.UpdatedBy = &actorID
	result.Version = 1
	if err := repo.Result.Create(ctx, result); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, false, ErrResultConflict
		}
		return nil, false, err
	}
	result.Course = course
	return result, true, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *resultService) GetByID(ctx context.Context, id string) (*dto.ResultResponse, error) {
	result, err := s.repo.Result.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrResultNotFound
		}
		s.logger.Error("get result", zap.String("result_id", id), zap.Error(err))
		return nil, err
	}
	return toResultResponse(result), nil
}

// ────────────────────── Update ──────────────────────

func (s *resultService) Update(ctx context.Context, id string, req *dto.UpdateResultRequest, actorID string) (*dto.ResultResponse, error) {
	if req.CAScore == nil || req.ExamScore == nil {
		return nil, apperrors.FieldErrors{
			apperrors.NewFieldError("ca_score", "is required"),
			apperrors.NewFieldError("exam_score", "is required"),
		}
	}
	if err := grading.CheckScores(*req.CAScore, *req.ExamScore); err != nil {
		return nil, err
	}

	result, err := s.repo.Result.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrResultNotFound
		}
		s.logger.Error("get result", zap.String("result_id", id), zap.Error(err))
		return nil, err
	}
	if req.Version != nil && *req.Version != result.Version {
		return nil, apperrors.ErrOptimisticLock
	}

	before := map[string]interface{}{"ca_score": result.CAScore, "exam_score": result.ExamScore}
	if req.StudentName != nil {
		if name := strings.TrimSpace(*req.StudentName); name != "" {
			result.StudentName = name
		}
	}
	result.CAScore = *req.CAScore
	result.ExamScore = *req.ExamScore
	result.TotalScore, _ = grading.Total(result.CAScore, result.ExamScore)
	result.Grade = grading.Grade(result.TotalScore)
	result.UpdatedBy = &actorID

	if err := s.repo.Result.Update(ctx, result); err != nil {
		if !errors.Is(err, apperrors.ErrOptimisticLock) {
			s.logger.Error("update result", zap.String("result_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.activity.Record(ctx, actorID, model.ActionResultUpdated, "result", id, map[string]interface{}{
		"reg_number": result.RegNumber,
		"before":     before,
		"after":      map[string]interface{}{"ca_score": result.CAScore, "exam_score": result.ExamScore},
	})
	return toResultResponse(result), nil
}

// ────────────────────── Delete ──────────────────────

func (s *resultService) Delete(ctx context.Context, id string, actorID string) error {
	result, err := s.repo.Result.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrResultNotFound
		}
		s.logger.Error("get result", zap.String("result_id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Result.Delete(ctx, id, actorID); err != nil {
		s.logger.Error("delete result", zap.String("result_id", id), zap.Error(err))
		return err
	}

	details := map[string]interface{}{"reg_number": result.RegNumber}
	if result.Course != nil {
		details["course_code"] = result.Course.CourseCode
	}
	s.activity.Record(ctx, actorID, model.ActionResultDeleted, "result", id, details)
	return nil
}

// ────────────────────── List ──────────────────────

func (s *resultService) List(ctx context.Context, req *dto.ResultListRequest) ([]dto.ResultResponse, int64, error) {
	filter := repository.ResultFilter{
		Query:      req.Query,
		CourseCode: strings.TrimSpace(req.CourseCode),
		Session:    strings.TrimSpace(req.Session),
		Year:       strings.TrimSpace(req.Year),
		Semester:   strings.TrimSpace(req.Semester),
		RegPrefix:  strings.TrimSpace(req.RegPrefix),
	}
	results, total, err := s.repo.Result.Search(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("search results", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.ResultResponse, 0, len(results))
	for i := range results {
		list = append(list, *toResultResponse(&results[i]))
	}
	return list, total, nil
}

func toResultResponse(r *model.StudentResult) *dto.ResultResponse {
	if r == nil {
		return nil
	}
	return &dto.ResultResponse{
		ID:          r.ResultID,
		CourseID:    r.CourseID,
		Course:      toCourseResponse(r.Course),
		StudentName: r.StudentName,
		RegNumber:   r.RegNumber,
		CAScore:     r.CAScore,
		ExamScore:   r.ExamScore,
		TotalScore:  r.TotalScore,
		Grade:       r.Grade,
		Version:     r.Version,
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}
