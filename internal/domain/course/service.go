package course

import (
	"context"
	"fmt"

	"registrar/internal/core/apperror"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/domain"
)

// ProfessorChecker reports whether a live professor exists.
type ProfessorChecker interface {
	Exists(ctx context.Context, professorID id.ID) (bool, error)
}

// EnrollmentCounter counts enrollments of a course.
type EnrollmentCounter interface {
	CountByCourse(ctx context.Context, courseID id.ID) (int64, error)
}

// Service manages courses.
type Service struct {
	*domain.EntityService[*Course]
	units       domain.UnitOfWorkFactory
	professors  ProfessorChecker
	enrollments EnrollmentCounter
}

// NewService creates a course service.
func NewService(
	reader domain.Reader[*Course],
	units domain.UnitOfWorkFactory,
	professors ProfessorChecker,
	enrollments EnrollmentCounter,
) *Service {
	base := domain.NewEntityService(domain.EntityServiceConfig[*Course]{
		Reader:     reader,
		Units:      units,
		EntityName: EntityName,
	})

	svc := &Service{
		EntityService: base,
		units:         units,
		professors:    professors,
		enrollments:   enrollments,
	}

	code := domain.UniqueHook(reader, EntityName, "code", func(c *Course) string { return c.Code })
	base.Hooks().OnBeforeCreate(code)
	base.Hooks().OnBeforeCreate(svc.checkProfessor)
	base.Hooks().OnBeforeUpdate(code)
	base.Hooks().OnBeforeUpdate(svc.checkProfessor)
	base.Hooks().OnBeforeDelete(svc.ensureNoEnrollments)

	return svc
}

func (s *Service) checkProfessor(ctx context.Context, c *Course) error {
	if c.ProfessorID == nil {
		return nil
	}
	ok, err := s.professors.Exists(ctx, *c.ProfessorID)
	if err != nil {
		return fmt.Errorf("check professor: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("professor", c.ProfessorID.String())
	}
	return nil
}

func (s *Service) ensureNoEnrollments(ctx context.Context, c *Course) error {
	n, err := s.enrollments.CountByCourse(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("count enrollments: %w", err)
	}
	if n > 0 {
		return apperror.NewBusinessRule(apperror.CodeCourseInUse, "course has active enrollments").
			WithDetail("courseId", c.ID.String()).
			WithDetail("enrollments", n)
	}
	return nil
}

// AssignProfessor sets or clears (professorID == nil) the instructor.
// version is the course version the caller last read.
func (s *Service) AssignProfessor(ctx context.Context, courseID id.ID, professorID *id.ID, version int) (*Course, error) {
	c, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if version != 0 && version != c.Version {
		return nil, apperror.NewConcurrentModification(EntityName, courseID.String())
	}

	c.ProfessorID = professorID
	if err := s.checkProfessor(ctx, c); err != nil {
		return nil, err
	}

	if _, err := domain.Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Update(c) }); err != nil {
		return nil, fmt.Errorf("assign professor: %w", err)
	}
	return c, nil
}
