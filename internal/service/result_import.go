package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/model"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// ────────────────────── Import ──────────────────────

var (
	ErrImportUnreadable = fmt.Errorf("%w: file is not a readable xlsx workbook", apperrors.ErrValidation)
	ErrImportNoData     = fmt.Errorf("%w: workbook has no data rows below the header row", apperrors.ErrValidation)
	ErrImportBadHeader  = fmt.Errorf("%w: header row must contain name, reg_number, ca_score and exam_score columns", apperrors.ErrValidation)
)

// Import reads the first sheet of an xlsx workbook and feeds its rows through
// the same validation and commit path as a bulk form submission.
func (s *resultService) Import(ctx context.Context, course *dto.CourseInput, allOrNothing bool, file io.Reader, actorID string) (*dto.ResultBatchResponse, error) {
	cols, err := parseResultSheet(file)
	if err != nil {
		return nil, err
	}

	// echoed back for correction if the submission is rejected
	input := &dto.ResultBatchRequest{
		CourseInput:      *course,
		StudentNamesBulk: strings.Join(cols.names, "\n"),
		RegNumbersBulk:   strings.Join(cols.regs, "\n"),
		CAScoresBulk:     strings.Join(cols.cas, "\n"),
		ExamScoresBulk:   strings.Join(cols.exams, "\n"),
		AllOrNothing:     allOrNothing,
	}
	return s.upsert(ctx, input, cols, actorID, model.ActionResultsImported)
}

// parseResultSheet maps sheet rows onto the four entry columns. Column order
// is free; blank rows are skipped.
func parseResultSheet(r io.Reader) (resultColumns, error) {
	var cols resultColumns

	f, err := excelize.OpenReader(r)
	if err != nil {
		return cols, ErrImportUnreadable
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return cols, ErrImportUnreadable
	}
	if len(rows) < 2 {
		return cols, ErrImportNoData
	}

	idx := parseHeaderIndex(rows[0])
	for _, key := range []string{"name", "reg_number", "ca_score", "exam_score"} {
		if idx[key] < 0 {
			return cols, ErrImportBadHeader
		}
	}

	cellAt := func(row []string, key string) string {
		if i := idx[key]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	for _, row := range rows[1:] {
		name, reg := cellAt(row, "name"), cellAt(row, "reg_number")
		ca, exam := cellAt(row, "ca_score"), cellAt(row, "exam_score")
		if name == "" && reg == "" && ca == "" && exam == "" {
			continue
		}
		cols.names = append(cols.names, name)
		cols.regs = append(cols.regs, reg)
		cols.cas = append(cols.cas, ca)
		cols.exams = append(cols.exams, exam)
	}

	if len(cols.names) == 0 {
		return cols, ErrImportNoData
	}
	return cols, nil
}

// parseHeaderIndex maps known header labels to column positions; missing
// columns map to -1.
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":       -1,
		"reg_number": -1,
		"ca_score":   -1,
		"exam_score": -1,
	}
	for i, h := range header {
		label := strings.ToLower(strings.TrimSpace(h))
		label = strings.NewReplacer(" ", "_", ".", "").Replace(label)
		switch label {
		case "name", "student_name", "studentname":
			idx["name"] = i
		case "reg_number", "reg_no", "regno", "registration_number", "matric_number":
			idx["reg_number"] = i
		case "ca", "ca_score", "test":
			idx["ca_score"] = i
		case "exam", "exam_score":
			idx["exam_score"] = i
		}
	}
	return idx
}
