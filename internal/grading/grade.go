// Package grading holds the pure scoring rules of the results workflow:
// grade bands, score bounds and the bulk text parser.
package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// Score bounds.
const (
	MaxCA    = 30.0
	MaxExam  = 70.0
	MaxTotal = 100.0

	// ScoreDecimals stored precision of every score column, NUMERIC(5,2).
	ScoreDecimals = 2
)

// Grade maps a total score to its letter grade.
func Grade(total float64) string {
	switch {
	case total >= 70:
		return "A"
	case total >= 60:
		return "B"
	case total >= 50:
		return "C"
	case total >= 45:
		return "D"
	case total >= 40:
		return "E"
	default:
		return "F"
	}
}

// Total sums the components, capped at MaxTotal. capped reports that the raw
// sum exceeded the cap.
func Total(ca, exam float64) (total float64, capped bool) {
	total = roundScore(ca + exam)
	if total > MaxTotal {
		return MaxTotal, true
	}
	return total, false
}

// ParseScore parses a human-entered score.
func ParseScore(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewFieldError(field, fmt.Sprintf("%q is not a number", raw))
	}
	return v, nil
}

// CheckScores validates both components against their bounds and the stored
// precision.
func CheckScores(ca, exam float64) error {
	var errs apperrors.FieldErrors
	switch {
	case ca < 0 || ca > MaxCA:
		errs = append(errs, apperrors.NewFieldError("ca_score", fmt.Sprintf("CA score %s must be between 0 and %s", FormatScore(ca), FormatScore(MaxCA))))
	case !fitsPrecision(ca):
		errs = append(errs, apperrors.NewFieldError("ca_score", fmt.Sprintf("CA score %s may have at most %d decimal places", FormatScore(ca), ScoreDecimals)))
	}
	switch {
	case exam < 0 || exam > MaxExam:
		errs = append(errs, apperrors.NewFieldError("exam_score", fmt.Sprintf("exam score %s must be between 0 and %s", FormatScore(exam), FormatScore(MaxExam))))
	case !fitsPrecision(exam):
		errs = append(errs, apperrors.NewFieldError("exam_score", fmt.Sprintf("exam score %s may have at most %d decimal places", FormatScore(exam), ScoreDecimals)))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FormatScore renders a score without trailing zeros.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var scoreScale = math.Pow10(ScoreDecimals)

// fitsPrecision reports whether v is representable in the score columns
// without rounding, tolerating binary float noise.
func fitsPrecision(v float64) bool {
	scaled := v * scoreScale
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

func roundScore(v float64) float64 {
	return math.Round(v*scoreScale) / scoreScale
}
