package student

import (
	"context"
	"fmt"
	"time"

	"registrar/internal/core/numerator"
	"registrar/internal/domain"
)

// NumberPrefix starts every generated student number (S-2026-00001).
const NumberPrefix = "S"

// Service manages students.
type Service struct {
	*domain.EntityService[*Student]
	numerator numerator.Generator
	now       func() time.Time
}

// NewService creates a student service. Email and student number are unique
// among live students.
func NewService(reader domain.Reader[*Student], units domain.UnitOfWorkFactory, gen numerator.Generator) *Service {
	base := domain.NewEntityService(domain.EntityServiceConfig[*Student]{
		Reader:     reader,
		Units:      units,
		EntityName: EntityName,
	})

	svc := &Service{EntityService: base, numerator: gen, now: time.Now}

	email := domain.UniqueHook(reader, EntityName, "email", func(s *Student) string { return s.Email })
	number := domain.UniqueHook(reader, EntityName, "student_number", func(s *Student) string { return s.StudentNumber })

	base.Hooks().OnBeforeCreate(svc.assignNumber)
	base.Hooks().OnBeforeCreate(email)
	base.Hooks().OnBeforeCreate(number)
	base.Hooks().OnBeforeUpdate(email)
	base.Hooks().OnBeforeUpdate(number)

	return svc
}

func (s *Service) assignNumber(ctx context.Context, st *Student) error {
	if st.StudentNumber != "" {
		return nil
	}
	num, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, s.now())
	if err != nil {
		return fmt.Errorf("generate student number: %w", err)
	}
	st.StudentNumber = num
	return nil
}
