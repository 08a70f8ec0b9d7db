// Package professor provides the Professor entity and its service.
package professor

import (
	"context"
	"net/mail"
	"strings"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
)

// EntityName is the metadata key.
const EntityName = "professor"

// Professor teaches courses.
type Professor struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields

	FirstName  string `db:"first_name" json:"firstName"`
	LastName   string `db:"last_name" json:"lastName"`
	Email      string `db:"email" json:"email"`
	Department string `db:"department" json:"department"`
}

// NewProfessor creates a Professor with a fresh ID.
func NewProfessor(firstName, lastName, email, department string) *Professor {
	return &Professor{
		BaseEntity: entity.NewBaseEntity(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Department: department,
	}
}

// EntityName implements entity.Persistable.
func (*Professor) EntityName() string { return EntityName }

// Validate implements entity.Validatable.
func (p *Professor) Validate(_ context.Context) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if strings.TrimSpace(p.FirstName) == "" {
		return apperror.NewValidation("first name is required").WithDetail("field", "firstName")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return apperror.NewValidation("last name is required").WithDetail("field", "lastName")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	return nil
}

// FullName returns "First Last".
func (p *Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}
