// Package student provides the Student entity and its service.
package student

import (
	"context"
	"net/mail"
	"strings"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

// EntityName is the metadata key.
const EntityName = "student"

// Student is an enrolled person. StudentNumber is assigned on create when
// left empty.
type Student struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields

	FirstName     string `db:"first_name" json:"firstName"`
	LastName      string `db:"last_name" json:"lastName"`
	Email         string `db:"email" json:"email"`
	StudentNumber string `db:"student_number" json:"studentNumber"`

	// UserID links the login account, if any
	UserID *id.ID `db:"user_id" json:"userId,omitempty"`
}

// NewStudent creates a Student with a fresh ID.
func NewStudent(firstName, lastName, email string) *Student {
	return &Student{
		BaseEntity: entity.NewBaseEntity(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
	}
}

// EntityName implements entity.Persistable.
func (*Student) EntityName() string { return EntityName }

// Validate implements entity.Validatable.
func (s *Student) Validate(_ context.Context) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if strings.TrimSpace(s.FirstName) == "" {
		return apperror.NewValidation("first name is required").WithDetail("field", "firstName")
	}
	if strings.TrimSpace(s.LastName) == "" {
		return apperror.NewValidation("last name is required").WithDetail("field", "lastName")
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	return nil
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
