package dto

import (
	"registrar/internal/domain/course"
)

// --- Request DTOs ---

// CreateCourseRequest is the request body for creating a course.
type CreateCourseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Credits     int     `json:"credits" binding:"required"`
	Capacity    int     `json:"capacity" binding:"required"`
	ProfessorID *string `json:"professorId" binding:"omitempty,uuid"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCourseRequest) ToEntity() *course.Course {
	c := course.NewCourse(r.Code, r.Title, r.Credits, r.Capacity)
	c.Description = r.Description
	c.ProfessorID, _ = parseOptionalID(r.ProfessorID)
	return c
}

// UpdateCourseRequest is the request body for updating a course.
type UpdateCourseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Credits     int     `json:"credits" binding:"required"`
	Capacity    int     `json:"capacity" binding:"required"`
	ProfessorID *string `json:"professorId" binding:"omitempty,uuid"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCourseRequest) ApplyTo(c *course.Course) {
	c.Code = r.Code
	c.Title = r.Title
	c.Description = r.Description
	c.Credits = r.Credits
	c.Capacity = r.Capacity
	c.ProfessorID, _ = parseOptionalID(r.ProfessorID)
	c.Version = r.Version
}

// AssignProfessorRequest sets or clears (null) the course instructor.
type AssignProfessorRequest struct {
	ProfessorID *string `json:"professorId" binding:"omitempty,uuid"`
	Version     int     `json:"version"`
}

// --- Response DTOs ---

// CourseResponse is the response body for a course.
type CourseResponse struct {
	BaseResponse
	DeletionResponse
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Credits     int     `json:"credits"`
	Capacity    int     `json:"capacity"`
	ProfessorID *string `json:"professorId,omitempty"`
}

// FromCourse creates response DTO from domain entity.
func FromCourse(c *course.Course) *CourseResponse {
	return &CourseResponse{
		BaseResponse:     FromBase(c.BaseEntity, c.AuditFields),
		DeletionResponse: FromSoftDelete(c.SoftDeleteFields),
		Code:             c.Code,
		Title:            c.Title,
		Description:      c.Description,
		Credits:          c.Credits,
		Capacity:         c.Capacity,
		ProfessorID:      idString(c.ProfessorID),
	}
}
