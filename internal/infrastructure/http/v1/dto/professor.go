package dto

import (
	"registrar/internal/domain/professor"
)

// CreateProfessorRequest is the request body for creating a professor.
type CreateProfessorRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Department string `json:"department"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProfessorRequest) ToEntity() *professor.Professor {
	return professor.NewProfessor(r.FirstName, r.LastName, r.Email, r.Department)
}

// UpdateProfessorRequest is the request body for updating a professor.
type UpdateProfessorRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Department string `json:"department"`
	Version    int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProfessorRequest) ApplyTo(p *professor.Professor) {
	p.FirstName = r.FirstName
	p.LastName = r.LastName
	p.Email = r.Email
	p.Department = r.Department
	p.Version = r.Version
}

// ProfessorResponse is the response body for a professor.
type ProfessorResponse struct {
	BaseResponse
	DeletionResponse
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// FromProfessor creates response DTO from domain entity.
func FromProfessor(p *professor.Professor) *ProfessorResponse {
	return &ProfessorResponse{
		BaseResponse:     FromBase(p.BaseEntity, p.AuditFields),
		DeletionResponse: FromSoftDelete(p.SoftDeleteFields),
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		Department:       p.Department,
	}
}
