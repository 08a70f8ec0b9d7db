package dto

import (
	"registrar/internal/domain/student"
)

// CreateStudentRequest is the request body for creating a student.
// StudentNumber is generated when omitted.
type CreateStudentRequest struct {
	FirstName     string  `json:"firstName" binding:"required"`
	LastName      string  `json:"lastName" binding:"required"`
	Email         string  `json:"email" binding:"required"`
	StudentNumber string  `json:"studentNumber"`
	UserID        *string `json:"userId" binding:"omitempty,uuid"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateStudentRequest) ToEntity() *student.Student {
	s := student.NewStudent(r.FirstName, r.LastName, r.Email)
	s.StudentNumber = r.StudentNumber
	s.UserID, _ = parseOptionalID(r.UserID)
	return s
}

// UpdateStudentRequest is the request body for updating a student.
type UpdateStudentRequest struct {
	FirstName     string  `json:"firstName" binding:"required"`
	LastName      string  `json:"lastName" binding:"required"`
	Email         string  `json:"email" binding:"required"`
	StudentNumber string  `json:"studentNumber" binding:"required"`
	UserID        *string `json:"userId" binding:"omitempty,uuid"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateStudentRequest) ApplyTo(s *student.Student) {
	s.FirstName = r.FirstName
	s.LastName = r.LastName
	s.Email = r.Email
	s.StudentNumber = r.StudentNumber
	s.UserID, _ = parseOptionalID(r.UserID)
	s.Version = r.Version
}

// StudentResponse is the response body for a student.
type StudentResponse struct {
	BaseResponse
	DeletionResponse
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Email         string  `json:"email"`
	StudentNumber string  `json:"studentNumber"`
	UserID        *string `json:"userId,omitempty"`
}

// FromStudent creates response DTO from domain entity.
func FromStudent(s *student.Student) *StudentResponse {
	return &StudentResponse{
		BaseResponse:     FromBase(s.BaseEntity, s.AuditFields),
		DeletionResponse: FromSoftDelete(s.SoftDeleteFields),
		FirstName:        s.FirstName,
		LastName:         s.LastName,
		Email:            s.Email,
		StudentNumber:    s.StudentNumber,
		UserID:           idString(s.UserID),
	}
}
