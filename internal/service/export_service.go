package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// ── export errors ──

var (
	ErrExportNoResults    = fmt.Errorf("%w: the course has no results to export", apperrors.ErrNotFound)
	ErrExportFormat       = fmt.Errorf("%w: format must be xlsx or csv", apperrors.ErrValidation)
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ExportFile a generated download.
type ExportFile struct {
	Content     *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService result sheet downloads.
type ExportService interface {
	// ExportCourse renders every live result of a course, ordered by reg number.
	ExportCourse(ctx context.Context, courseCode, format string) (*ExportFile, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// resultSheetRow one exported line.
type resultSheetRow struct {
	RegNumber   string  `csv:"reg_number"`
	StudentName string  `csv:"student_name"`
	CAScore     float64 `csv:"ca_score"`
	ExamScore   float64 `csv:"exam_score"`
	TotalScore  float64 `csv:"total_score"`
	Grade       string  `csv:"grade"`
}

var sheetHeader = []string{"Reg Number", "Student Name", "CA", "Exam", "Total", "Grade"}

// ────────────────────── ExportCourse ──────────────────────

func (s *exportService) ExportCourse(ctx context.Context, courseCode, format string) (*ExportFile, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, ErrExportFormat
	}

	course, err := s.repo.Course.GetByCode(ctx, strings.TrimSpace(courseCode))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("get course", zap.String("course_code", courseCode), zap.Error(err))
		return nil, err
	}

	results, err := s.repo.Result.ListByCourse(ctx, course.CourseID)
	if err != nil {
		s.logger.Error("list course results", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrExportNoResults
	}

	rows := make([]resultSheetRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, resultSheetRow{
			RegNumber:   r.RegNumber,
			StudentName: r.StudentName,
			CAScore:     r.CAScore,
			ExamScore:   r.ExamScore,
			TotalScore:  r.TotalScore,
			Grade:       r.Grade,
		})
	}

	base := exportBaseName(course)
	if format == FormatCSV {
		buf := new(bytes.Buffer)
		if err := gocsv.Marshal(rows, buf); err != nil {
			s.logger.Error("write csv", zap.Error(err))
			return nil, ErrExportGenerateFail
		}
		return &ExportFile{Content: buf, Filename: base + ".csv", ContentType: "text/csv; charset=utf-8"}, nil
	}

	buf, err := s.writeWorkbook(course, rows)
	if err != nil {
		s.logger.Error("write xlsx", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return &ExportFile{
		Content:     buf,
		Filename:    base + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

// writeWorkbook lays out a title row, a header row and one row per result.
func (s *exportService) writeWorkbook(course *model.Course, rows []resultSheetRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 32)
	f.SetColWidth(sheetName, "C", "F", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %s (%s, %s semester)",
		course.CourseCode, course.CourseTitle, course.SessionWritten, course.Semester))
	f.MergeCell(sheetName, "A1", cell(colName(len(sheetHeader)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// header
	for i, h := range sheetHeader {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(sheetHeader)-1), 2), headerStyle)

	// data
	for i, r := range rows {
		row := i + 3
		f.SetCellValue(sheetName, cell("A", row), r.RegNumber)
		f.SetCellValue(sheetName, cell("B", row), r.StudentName)
		f.SetCellValue(sheetName, cell("C", row), r.CAScore)
		f.SetCellValue(sheetName, cell("D", row), r.ExamScore)
		f.SetCellValue(sheetName, cell("E", row), r.TotalScore)
		f.SetCellValue(sheetName, cell("F", row), r.Grade)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func exportBaseName(course *model.Course) string {
	name := fmt.Sprintf("%s_%s_results", course.CourseCode, course.SessionWritten)
	return strings.NewReplacer("/", "-", " ", "_").Replace(name)
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
