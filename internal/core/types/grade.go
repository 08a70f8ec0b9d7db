// Package types provides shared value types.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Grade is a course grade on a 0..100 scale with two decimal places.
// It maps to NUMERIC(5,2).
type Grade = decimal.Decimal

// GradeScale is the number of decimal places kept.
const GradeScale int32 = 2

var (
	MinGrade = decimal.Zero
	MaxGrade = decimal.NewFromInt(100)
)

// ParseGrade parses s and rounds it half-up to GradeScale places.
func ParseGrade(s string) (Grade, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Grade{}, fmt.Errorf("invalid grade %q: %w", s, err)
	}
	return NormalizeGrade(d), nil
}

// NormalizeGrade rounds g to GradeScale places.
func NormalizeGrade(g Grade) Grade {
	return g.Round(GradeScale)
}

// ValidGrade reports whether g is within [MinGrade, MaxGrade].
func ValidGrade(g Grade) bool {
	return !g.LessThan(MinGrade) && !g.GreaterThan(MaxGrade)
}

// AverageGrade returns the mean of grades rounded to GradeScale, or false
// when grades is empty.
func AverageGrade(grades []Grade) (Grade, bool) {
	if len(grades) == 0 {
		return Grade{}, false
	}
	sum := decimal.Zero
	for _, g := range grades {
		sum = sum.Add(g)
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(grades))), GradeScale), true
}
