// Package course provides the Course entity and its service.
package course

import (
	"context"
	"strings"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

// EntityName is the metadata key.
const EntityName = "course"

const (
	MinCredits = 1
	MaxCredits = 10
)

// Course is an offering students enroll in.
type Course struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields

	Code        string  `db:"code" json:"code"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description,omitempty"`
	Credits     int     `db:"credits" json:"credits"`
	Capacity    int     `db:"capacity" json:"capacity"`

	// ProfessorID is the assigned instructor
	ProfessorID *id.ID `db:"professor_id" json:"professorId,omitempty"`
}

// NewCourse creates a Course with a fresh ID.
func NewCourse(code, title string, credits, capacity int) *Course {
	return &Course{
		BaseEntity: entity.NewBaseEntity(),
		Code:       code,
		Title:      title,
		Credits:    credits,
		Capacity:   capacity,
	}
}

// EntityName implements entity.Persistable.
func (*Course) EntityName() string { return EntityName }

// Validate implements entity.Validatable.
func (c *Course) Validate(_ context.Context) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if len(c.Code) > 20 {
		return apperror.NewValidation("code must be at most 20 characters").WithDetail("field", "code")
	}
	if strings.TrimSpace(c.Title) == "" {
		return apperror.NewValidation("title is required").WithDetail("field", "title")
	}
	if c.Credits < MinCredits || c.Credits > MaxCredits {
		return apperror.NewValidation("credits must be between 1 and 10").
			WithDetail("field", "credits").
			WithDetail("value", c.Credits)
	}
	if c.Capacity <= 0 {
		return apperror.NewValidation("capacity must be positive").
			WithDetail("field", "capacity").
			WithDetail("value", c.Capacity)
	}
	return nil
}
