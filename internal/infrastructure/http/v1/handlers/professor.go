package handlers

import (
	"registrar/internal/domain/professor"
	"registrar/internal/infrastructure/http/v1/dto"
)

// ProfessorHTTPHandler is the professor CRUD handler.
type ProfessorHTTPHandler = EntityHandler[
	*professor.Professor,
	dto.CreateProfessorRequest,
	dto.UpdateProfessorRequest,
]

// NewProfessorHandler wires the generic handler to the professor service.
func NewProfessorHandler(base *BaseHandler, service *professor.Service) *ProfessorHTTPHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*professor.Professor,
		dto.CreateProfessorRequest,
		dto.UpdateProfessorRequest,
	]{
		Service:      service.EntityService,
		DefaultOrder: "last_name",
		MapCreateDTO: func(req dto.CreateProfessorRequest) *professor.Professor {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProfessorRequest, existing *professor.Professor) *professor.Professor {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *professor.Professor) any {
			return dto.FromProfessor(p)
		},
	})
}
