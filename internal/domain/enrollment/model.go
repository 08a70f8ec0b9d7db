// Package enrollment links students to courses and records grades.
//
// Enrollment is auditable but not soft-deletable: dropping a course removes
// the row.
package enrollment

import (
	"context"
	"time"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/core/types"
)

// EntityName is the metadata key.
const EntityName = "enrollment"

// Enrollment is one student's seat in one course.
type Enrollment struct {
	entity.BaseEntity
	entity.AuditFields

	StudentID  id.ID        `db:"student_id" json:"studentId"`
	CourseID   id.ID        `db:"course_id" json:"courseId"`
	EnrolledAt time.Time    `db:"enrolled_at" json:"enrolledAt"`
	Grade      *types.Grade `db:"grade" json:"grade,omitempty"`
	GradedAt   *time.Time   `db:"graded_at" json:"gradedAt,omitempty"`
}

// NewEnrollment creates an ungraded enrollment.
func NewEnrollment(studentID, courseID id.ID, at time.Time) *Enrollment {
	return &Enrollment{
		BaseEntity: entity.NewBaseEntity(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: at.UTC(),
	}
}

// EntityName implements entity.Persistable.
func (*Enrollment) EntityName() string { return EntityName }

// Validate implements entity.Validatable.
func (e *Enrollment) Validate(_ context.Context) error {
	if id.IsNil(e.StudentID) {
		return apperror.NewValidation("student is required").WithDetail("field", "studentId")
	}
	if id.IsNil(e.CourseID) {
		return apperror.NewValidation("course is required").WithDetail("field", "courseId")
	}
	if e.Grade != nil && !types.ValidGrade(*e.Grade) {
		return apperror.NewValidation("grade must be between 0 and 100").
			WithDetail("field", "grade").
			WithDetail("value", e.Grade.String())
	}
	return nil
}

// SetGrade records g, rounded to two decimals.
func (e *Enrollment) SetGrade(g types.Grade, at time.Time) error {
	g = types.NormalizeGrade(g)
	if !types.ValidGrade(g) {
		return apperror.NewValidation("grade must be between 0 and 100").
			WithDetail("field", "grade").
			WithDetail("value", g.String())
	}
	at = at.UTC()
	e.Grade = &g
	e.GradedAt = &at
	return nil
}

// Transcript is a student's graded record.
type Transcript struct {
	StudentID     id.ID             `json:"studentId"`
	StudentNumber string            `json:"studentNumber"`
	StudentName   string            `json:"studentName"`
	Entries       []TranscriptEntry `json:"entries"`

	// Average is the plain mean of graded entries; Weighted weights by credits
	Average  *types.Grade `json:"average,omitempty"`
	Weighted *types.Grade `json:"weightedAverage,omitempty"`

	CreditsAttempted int `json:"creditsAttempted"`
	CreditsGraded    int `json:"creditsGraded"`
}

// TranscriptEntry is one course line of a transcript.
type TranscriptEntry struct {
	CourseID   id.ID        `json:"courseId"`
	CourseCode string       `json:"courseCode"`
	Title      string       `json:"title"`
	Credits    int          `json:"credits"`
	Grade      *types.Grade `json:"grade,omitempty"`
	EnrolledAt time.Time    `json:"enrolledAt"`
}
