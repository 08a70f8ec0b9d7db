package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"registrar/internal/domain/enrollment"
)

// EnrollRequest seats a student in a course.
type EnrollRequest struct {
	StudentID string `json:"studentId" binding:"required,uuid"`
	CourseID  string `json:"courseId" binding:"required,uuid"`
}

// GradeRequest records a grade. Grade is a JSON number or string
// ("91.5"), 0..100.
type GradeRequest struct {
	Grade *decimal.Decimal `json:"grade" binding:"required"`
}

// EnrollmentResponse is the response body for an enrollment.
type EnrollmentResponse struct {
	BaseResponse
	StudentID  string     `json:"studentId"`
	CourseID   string     `json:"courseId"`
	EnrolledAt time.Time  `json:"enrolledAt"`
	Grade      *string    `json:"grade,omitempty"`
	GradedAt   *time.Time `json:"gradedAt,omitempty"`
}

// FromEnrollment creates response DTO from domain entity.
func FromEnrollment(e *enrollment.Enrollment) *EnrollmentResponse {
	resp := &EnrollmentResponse{
		BaseResponse: FromBase(e.BaseEntity, e.AuditFields),
		StudentID:    e.StudentID.String(),
		CourseID:     e.CourseID.String(),
		EnrolledAt:   e.EnrolledAt,
		GradedAt:     e.GradedAt,
	}
	if e.Grade != nil {
		g := e.Grade.StringFixed(2)
		resp.Grade = &g
	}
	return resp
}

// FromEnrollments maps a slice.
func FromEnrollments(items []*enrollment.Enrollment) []*EnrollmentResponse {
	out := make([]*EnrollmentResponse, len(items))
	for i, e := range items {
		out[i] = FromEnrollment(e)
	}
	return out
}
