package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chibuike2003/palgunn/config"
	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/model"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// ── helpers ──

const testActor = "admin-001"

func setupTestResultService() (ResultService, *mockRepos) {
	m := newMockRepos()
	logger := zap.NewNop()
	svc := NewResultService(&config.ResultsConfig{MaxBatchRows: 50}, m.repo, NewActivityService(m.repo, logger), logger)
	return svc, m
}

func batchRequest(names, regs, cas, exams string) *dto.ResultBatchRequest {
	return &dto.ResultBatchRequest{
		CourseInput: dto.CourseInput{
			CourseCode:     "CSC101",
			CourseTitle:    "Introduction to Computing",
			SessionWritten: "2023/2024",
			Year:           "100 Level",
			Semester:       "First",
		},
		StudentNamesBulk: names,
		RegNumbersBulk:   regs,
		CAScoresBulk:     cas,
		ExamScoresBulk:   exams,
	}
}

func mustReject(t *testing.T, err error) *BatchRejectedError {
	t.Helper()
	var rejected *BatchRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected BatchRejectedError, got %v", err)
	}
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("expected validation kind, got %s", apperrors.KindOf(err))
	}
	return rejected
}

// ── UpsertBatch ──

func TestResultService_UpsertBatch_CreatesRows(t *testing.T) {
	svc, m := setupTestResultService()

	resp, err := svc.UpsertBatch(context.Background(),
		batchRequest("Ada Obi\nBayo Musa", "U2020/1001\nU2020/1002", "25, 18", "60\n41"), testActor)
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	if resp.Status != dto.BatchSuccess {
		t.Errorf("status = %s, want success", resp.Status)
	}
	if !resp.CourseCreated {
		t.Error("course should have been created")
	}
	if resp.Created != 2 || resp.Updated != 0 {
		t.Errorf("created=%d updated=%d, want 2/0", resp.Created, resp.Updated)
	}
	if got := resp.Rows[0]; got.Status != dto.RowCreated || got.Result.TotalScore != 85 || got.Result.Grade != "A" {
		t.Errorf("row 0 = %+v", got)
	}
	if got := resp.Rows[1].Result; got.TotalScore != 59 || got.Grade != "C" {
		t.Errorf("row 1 total=%v grade=%s, want 59/C", got.TotalScore, got.Grade)
	}
	if len(m.results.results) != 2 {
		t.Errorf("stored %d results, want 2", len(m.results.results))
	}
	if len(m.activity.logs) != 1 || m.activity.logs[0].Action != model.ActionResultsUploaded {
		t.Errorf("expected one upload activity entry, got %+v", m.activity.logs)
	}
}

func TestResultService_UpsertBatch_Idempotent(t *testing.T) {
	svc, m := setupTestResultService()
	req := batchRequest("Ada Obi", "U2020/1001", "20", "50")

	if _, err := svc.UpsertBatch(context.Background(), req, testActor); err != nil {
		t.Fatalf("first UpsertBatch: %v", err)
	}
	resp, err := svc.UpsertBatch(context.Background(), req, testActor)
	if err != nil {
		t.Fatalf("second UpsertBatch: %v", err)
	}

	if resp.CourseCreated {
		t.Error("course must be reused on resubmission")
	}
	if resp.Rows[0].Status != dto.RowUpdated {
		t.Errorf("status = %s, want updated", resp.Rows[0].Status)
	}
	if len(m.results.results) != 1 {
		t.Fatalf("stored %d results, want exactly 1", len(m.results.results))
	}
	for _, r := range m.results.results {
		if r.CAScore != 20 || r.ExamScore != 50 || r.TotalScore != 70 || r.Grade != "A" {
			t.Errorf("stored result changed: %+v", r)
		}
	}
	if len(m.courses.courses) != 1 {
		t.Errorf("stored %d courses, want 1", len(m.courses.courses))
	}
}

func TestResultService_UpsertBatch_UpdatesCourseInPlace(t *testing.T) {
	svc, m := setupTestResultService()
	ctx := context.Background()

	if _, err := svc.UpsertBatch(ctx, batchRequest("Ada Obi", "U2020/1001", "20", "50"), testActor); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	req := batchRequest("Ada Obi", "U2020/1001", "20", "50")
	req.CourseTitle = "Intro to Computing"
	req.SessionWritten = "2024/2025"

	resp, err := svc.UpsertBatch(ctx, req, testActor)
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if resp.Course.CourseTitle != "Intro to Computing" || resp.Course.SessionWritten != "2024/2025" {
		t.Errorf("course not updated: %+v", resp.Course)
	}
	stored, _ := m.courses.GetByCode(ctx, "CSC101")
	if stored.SessionWritten != "2024/2025" {
		t.Errorf("stored session = %s", stored.SessionWritten)
	}
}

func TestResultService_UpsertBatch_ScoreOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		ca    string
		exam  string
		field string
	}{
		{"ca above 30", "35", "40", fieldCA},
		{"exam above 70", "20", "75", fieldExam},
		{"sum above 100 is rejected before capping", "20", "85", fieldExam},
		{"negative ca", "-1", "40", fieldCA},
		{"not a number", "abc", "40", fieldCA},
		{"ca with three decimals", "29.998", "39.99", fieldCA},
		{"exam with three decimals", "29.99", "39.998", fieldExam},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, m := setupTestResultService()

			_, err := svc.UpsertBatch(context.Background(),
				batchRequest("Ada Obi", "U2020/1001", tc.ca, tc.exam), testActor)
			rejected := mustReject(t, err)

			if rejected.Fields[0].Field != tc.field || rejected.Fields[0].Row != 0 {
				t.Errorf("field error = %+v, want %s at row 0", rejected.Fields[0], tc.field)
			}
			if rejected.Response.Rows[0].Status != dto.RowInvalid {
				t.Errorf("row status = %s, want invalid", rejected.Response.Rows[0].Status)
			}
			if len(m.results.results) != 0 || len(m.courses.courses) != 0 {
				t.Error("nothing may be persisted for a rejected batch")
			}
		})
	}
}

func TestResultService_UpsertBatch_InvalidRowRejectsWholeBatch(t *testing.T) {
	svc, m := setupTestResultService()

	req := batchRequest("Ada Obi\nBayo Musa\nChi Eze", "U1\nU2\nU3", "10\n35\n20", "50\n50\n50")
	_, err := svc.UpsertBatch(context.Background(), req, testActor)
	rejected := mustReject(t, err)

	want := []string{dto.RowPending, dto.RowInvalid, dto.RowPending}
	for i, status := range want {
		if got := rejected.Response.Rows[i].Status; got != status {
			t.Errorf("row %d status = %s, want %s", i, got, status)
		}
	}
	if rejected.Response.Input != req {
		t.Error("rejected input must be echoed back")
	}
	if len(m.results.results) != 0 {
		t.Error("nothing may be persisted for a rejected batch")
	}
}

func TestResultService_UpsertBatch_MismatchedLengths(t *testing.T) {
	svc, m := setupTestResultService()

	_, err := svc.UpsertBatch(context.Background(),
		batchRequest("Ada\nBayo\nChi", "U1\nU2", "10\n20\n30", "40\n50\n60"), testActor)
	rejected := mustReject(t, err)

	if len(rejected.Fields) != 1 || rejected.Fields[0].Field != fieldRegs {
		t.Errorf("field errors = %+v, want one on %s", rejected.Fields, fieldRegs)
	}
	if len(m.results.results) != 0 || len(m.courses.courses) != 0 {
		t.Error("nothing may be persisted")
	}
}

func TestResultService_UpsertBatch_MissingCourseFields(t *testing.T) {
	svc, _ := setupTestResultService()

	req := batchRequest("Ada", "U1", "10", "40")
	req.CourseCode = "  "
	req.Semester = ""
	_, err := svc.UpsertBatch(context.Background(), req, testActor)
	rejected := mustReject(t, err)

	got := map[string]bool{}
	for _, fe := range rejected.Fields {
		got[fe.Field] = true
	}
	if !got["courseCode"] || !got["semester"] || len(got) != 2 {
		t.Errorf("field errors = %+v, want courseCode and semester", rejected.Fields)
	}
}

func TestResultService_UpsertBatch_EmptySubmission(t *testing.T) {
	svc, _ := setupTestResultService()

	_, err := svc.UpsertBatch(context.Background(), batchRequest("", "", "", ""), testActor)
	rejected := mustReject(t, err)
	if rejected.Fields[0].Field != fieldNames {
		t.Errorf("field = %s, want %s", rejected.Fields[0].Field, fieldNames)
	}
}

func TestResultService_UpsertBatch_TooManyRows(t *testing.T) {
	m := newMockRepos()
	logger := zap.NewNop()
	svc := NewResultService(&config.ResultsConfig{MaxBatchRows: 2}, m.repo, NewActivityService(m.repo, logger), logger)

	_, err := svc.UpsertBatch(context.Background(), batchRequest("A,B,C", "U1,U2,U3", "1,2,3", "4,5,6"), testActor)
	mustReject(t, err)
}

func TestResultService_UpsertBatch_DuplicateRegNumber(t *testing.T) {
	svc, _ := setupTestResultService()

	_, err := svc.UpsertBatch(context.Background(),
		batchRequest("Ada\nBayo", "U1\nU1", "10\n20", "40\n50"), testActor)
	rejected := mustReject(t, err)

	if rejected.Response.Rows[0].Status != dto.RowPending || rejected.Response.Rows[1].Status != dto.RowInvalid {
		t.Errorf("rows = %+v", rejected.Response.Rows)
	}
}

func TestResultService_UpsertBatch_ConflictContinues(t *testing.T) {
	svc, m := setupTestResultService()
	m.results.failOn["U2"] = gorm.ErrDuplicatedKey

	resp, err := svc.UpsertBatch(context.Background(),
		batchRequest("Ada\nBayo\nChi", "U1\nU2\nU3", "10\n20\n30", "40\n50\n60"), testActor)
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	want := []string{dto.RowCreated, dto.RowConflict, dto.RowCreated}
	for i, status := range want {
		if got := resp.Rows[i].Status; got != status {
			t.Errorf("row %d status = %s, want %s", i, got, status)
		}
	}
	if resp.Status != dto.BatchPartial || resp.Conflicts != 1 || resp.Created != 2 {
		t.Errorf("status=%s conflicts=%d created=%d", resp.Status, resp.Conflicts, resp.Created)
	}
	if resp.Rows[1].Message == "" {
		t.Error("conflict row needs a message")
	}
}

func TestResultService_UpsertBatch_StorageFailureStops(t *testing.T) {
	svc, m := setupTestResultService()
	m.results.failOn["U2"] = errors.New("connection reset")

	resp, err := svc.UpsertBatch(context.Background(),
		batchRequest("Ada\nBayo\nChi", "U1\nU2\nU3", "10\n20\n30", "40\n50\n60"), testActor)
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	want := []string{dto.RowCreated, dto.RowFailed, dto.RowSkipped}
	for i, status := range want {
		if got := resp.Rows[i].Status; got != status {
			t.Errorf("row %d status = %s, want %s", i, got, status)
		}
	}
	if resp.Status != dto.BatchPartial {
		t.Errorf("status = %s, want partial", resp.Status)
	}
	if len(m.results.results) != 1 {
		t.Errorf("stored %d results, want 1", len(m.results.results))
	}
}

func TestResultService_UpsertBatch_AllOrNothing(t *testing.T) {
	svc, m := setupTestResultService()
	m.results.failOn["U2"] = gorm.ErrDuplicatedKey

	req := batchRequest("Ada\nBayo\nChi", "U1\nU2\nU3", "10\n20\n30", "40\n50\n60")
	req.AllOrNothing = true
	resp, err := svc.UpsertBatch(context.Background(), req, testActor)
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	want := []string{dto.RowRolledBack, dto.RowConflict, dto.RowSkipped}
	for i, status := range want {
		if got := resp.Rows[i].Status; got != status {
			t.Errorf("row %d status = %s, want %s", i, got, status)
		}
	}
	if resp.Status != dto.BatchFailed || resp.CourseCreated {
		t.Errorf("status=%s course_created=%v, want failed/false", resp.Status, resp.CourseCreated)
	}
	if resp.Course != nil {
		t.Errorf("rolled back batch must not reference course %+v", resp.Course)
	}
	if len(m.activity.logs) != 0 {
		t.Error("a rolled back batch must not be recorded as an upload")
	}
}

func TestResultService_UpsertBatch_AllOrNothingSuccess(t *testing.T) {
	svc, _ := setupTestResultService()

	req := batchRequest("Ada\nBayo", "U1\nU2", "10\n20", "40\n50")
	req.AllOrNothing = true
	resp, err := svc.UpsertBatch(context.Background(), req, testActor)
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if resp.Status != dto.BatchSuccess || resp.Created != 2 {
		t.Errorf("status=%s created=%d", resp.Status, resp.Created)
	}
}

func TestResultService_UpsertBatch_CourseCreateRace(t *testing.T) {
	svc, m := setupTestResultService()
	m.courses.createErr = gorm.ErrDuplicatedKey

	resp, err := svc.UpsertBatch(context.Background(), batchRequest("Ada", "U1", "10", "40"), testActor)
	if err != nil {
		t.Fatalf("UpsertBatch should retry the course lookup: %v", err)
	}
	if resp.Status != dto.BatchSuccess {
		t.Errorf("status = %s, want success", resp.Status)
	}
}

func TestResultService_UpsertBatch_CourseConflictAllOrNothing(t *testing.T) {
	svc, m := setupTestResultService()
	m.courses.createErr = gorm.ErrDuplicatedKey

	req := batchRequest("Ada", "U1", "10", "40")
	req.AllOrNothing = true
	_, err := svc.UpsertBatch(context.Background(), req, testActor)
	if !errors.Is(err, ErrCourseConflict) {
		t.Fatalf("err = %v, want ErrCourseConflict", err)
	}
	if apperrors.KindOf(err) != apperrors.KindConflict {
		t.Errorf("kind = %s, want conflict", apperrors.KindOf(err))
	}
}

// ── Import ──

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cellName, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestResultService_Import(t *testing.T) {
	svc, m := setupTestResultService()

	file := buildWorkbook(t, [][]interface{}{
		{"Reg No.", "Name", "CA", "Exam"},
		{"U2020/1001", "Obi, Ada", 25, 60},
		{"", "", "", ""},
		{"U2020/1002", "Musa, Bayo", 10, 30},
	})
	course := batchRequest("", "", "", "").CourseInput

	resp, err := svc.Import(context.Background(), &course, false, file, testActor)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if resp.Created != 2 {
		t.Fatalf("created = %d, want 2", resp.Created)
	}
	if resp.Rows[0].StudentName != "Obi, Ada" {
		t.Errorf("names with commas must survive import, got %q", resp.Rows[0].StudentName)
	}
	if len(m.activity.logs) != 1 || m.activity.logs[0].Action != model.ActionResultsImported {
		t.Errorf("expected one import activity entry, got %+v", m.activity.logs)
	}
}

func TestResultService_Import_BadHeader(t *testing.T) {
	svc, _ := setupTestResultService()

	file := buildWorkbook(t, [][]interface{}{
		{"Name", "Score"},
		{"Ada", 50},
	})
	course := batchRequest("", "", "", "").CourseInput

	_, err := svc.Import(context.Background(), &course, false, file, testActor)
	if !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("err = %v, want ErrImportBadHeader", err)
	}
}

func TestResultService_Import_NotAWorkbook(t *testing.T) {
	svc, _ := setupTestResultService()
	course := batchRequest("", "", "", "").CourseInput

	_, err := svc.Import(context.Background(), &course, false, bytes.NewBufferString("reg,name"), testActor)
	if !errors.Is(err, ErrImportUnreadable) {
		t.Errorf("err = %v, want ErrImportUnreadable", err)
	}
}

// ── Update / Delete / List ──

func seedResult(t *testing.T, svc ResultService) *dto.ResultRowOutcome {
	t.Helper()
	resp, err := svc.UpsertBatch(context.Background(), batchRequest("Ada Obi", "U2020/1001", "20", "50"), testActor)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &resp.Rows[0]
}

func TestResultService_Update(t *testing.T) {
	svc, _ := setupTestResultService()
	row := seedResult(t, svc)

	ca, exam := 10.0, 32.0
	got, err := svc.Update(context.Background(), row.Result.ID, &dto.UpdateResultRequest{CAScore: &ca, ExamScore: &exam}, testActor)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.TotalScore != 42 || got.Grade != "E" {
		t.Errorf("total=%v grade=%s, want 42/E", got.TotalScore, got.Grade)
	}
	if got.Version != row.Result.Version+1 {
		t.Errorf("version = %d, want %d", got.Version, row.Result.Version+1)
	}
}

func TestResultService_Update_OutOfRange(t *testing.T) {
	svc, _ := setupTestResultService()
	row := seedResult(t, svc)

	ca, exam := 31.0, 10.0
	_, err := svc.Update(context.Background(), row.Result.ID, &dto.UpdateResultRequest{CAScore: &ca, ExamScore: &exam}, testActor)
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestResultService_Update_ExcessPrecision(t *testing.T) {
	svc, m := setupTestResultService()
	row := seedResult(t, svc)

	ca, exam := 29.998, 39.998
	_, err := svc.Update(context.Background(), row.Result.ID, &dto.UpdateResultRequest{CAScore: &ca, ExamScore: &exam}, testActor)
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	if stored := m.results.results[row.Result.ID]; stored.CAScore == ca {
		t.Error("rejected scores must not be stored")
	}
}

func TestResultService_Update_StaleVersion(t *testing.T) {
	svc, _ := setupTestResultService()
	row := seedResult(t, svc)

	ca, exam, stale := 10.0, 10.0, row.Result.Version+5
	_, err := svc.Update(context.Background(), row.Result.ID,
		&dto.UpdateResultRequest{CAScore: &ca, ExamScore: &exam, Version: &stale}, testActor)
	if !errors.Is(err, apperrors.ErrOptimisticLock) {
		t.Errorf("err = %v, want ErrOptimisticLock", err)
	}
}

func TestResultService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestResultService()

	ca, exam := 10.0, 10.0
	_, err := svc.Update(context.Background(), "missing", &dto.UpdateResultRequest{CAScore: &ca, ExamScore: &exam}, testActor)
	if !errors.Is(err, ErrResultNotFound) {
		t.Errorf("err = %v, want ErrResultNotFound", err)
	}
}

func TestResultService_Delete(t *testing.T) {
	svc, m := setupTestResultService()
	row := seedResult(t, svc)

	if err := svc.Delete(context.Background(), row.Result.ID, testActor); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(m.results.results) != 0 {
		t.Error("result should be gone")
	}
	if last := m.activity.logs[len(m.activity.logs)-1]; last.Action != model.ActionResultDeleted {
		t.Errorf("last activity = %s, want %s", last.Action, model.ActionResultDeleted)
	}
	if err := svc.Delete(context.Background(), row.Result.ID, testActor); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("second delete err = %v, want ErrResultNotFound", err)
	}
}

func TestResultService_List(t *testing.T) {
	svc, _ := setupTestResultService()
	ctx := context.Background()

	if _, err := svc.UpsertBatch(ctx, batchRequest("Ada\nBayo", "U2020/1\nU2021/2", "10\n20", "40\n50"), testActor); err != nil {
		t.Fatalf("seed: %v", err)
	}

	list, total, err := svc.List(ctx, &dto.ResultListRequest{RegPrefix: "U2021"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].RegNumber != "U2021/2" {
		t.Errorf("reg prefix filter: total=%d list=%+v", total, list)
	}

	list, total, err = svc.List(ctx, &dto.ResultListRequest{Query: "csc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || list[0].Course == nil || list[0].Course.CourseCode != "CSC101" {
		t.Errorf("query filter: total=%d list=%+v", total, list)
	}
}
