package professor

import (
	"registrar/internal/domain"
)

// Service manages professors.
type Service struct {
	*domain.EntityService[*Professor]
}

// NewService creates a professor service. Email must be unique among live
// professors.
func NewService(reader domain.Reader[*Professor], units domain.UnitOfWorkFactory) *Service {
	base := domain.NewEntityService(domain.EntityServiceConfig[*Professor]{
		Reader:     reader,
		Units:      units,
		EntityName: EntityName,
	})

	email := domain.UniqueHook(reader, EntityName, "email", func(p *Professor) string { return p.Email })
	base.Hooks().OnBeforeCreate(email)
	base.Hooks().OnBeforeUpdate(email)

	return &Service{EntityService: base}
}
