package app

import (
	"fmt"

	"registrar/internal/core/security"
	"registrar/internal/core/uow"
	"registrar/internal/domain"
	"registrar/internal/domain/audit"
	"registrar/internal/domain/auth"
	"registrar/internal/domain/course"
	"registrar/internal/domain/enrollment"
	"registrar/internal/domain/professor"
	"registrar/internal/domain/student"
	"registrar/internal/metadata"
)

// Config tunes the services.
type Config struct {
	JWT      auth.JWTConfig
	Auth     auth.ServiceConfig
	Policies map[string]string // nil means security.DefaultPolicies
}

// Container holds the wired services.
type Container struct {
	Backend  *Backend
	Registry *metadata.Registry
	Units    *uow.Factory
	Policies *security.PolicySet
	JWT      *auth.JWTService

	Auth        *auth.Service
	Courses     *course.Service
	Students    *student.Service
	Professors  *professor.Service
	Enrollments *enrollment.Service
	Audit       *audit.Service
}

// NewContainer builds every service on top of b. All writes share one
// unit-of-work factory running the default save pipeline.
func NewContainer(b *Backend, registry *metadata.Registry, cfg Config) (*Container, error) {
	policies := cfg.Policies
	if policies == nil {
		policies = security.DefaultPolicies()
	}
	ps, err := security.NewPolicySet(policies)
	if err != nil {
		return nil, fmt.Errorf("compile policies: %w", err)
	}

	units := uow.NewFactory(b.Store, uow.DefaultPipeline())
	jwt := auth.NewJWTService(cfg.JWT)
	r := b.Readers

	// Enrollment only needs readers, so it is built first and handed to the
	// course service as its enrollment counter.
	enrollments := enrollment.NewService(r.Enrollments, units, r.Courses, r.Students)

	return &Container{
		Backend:     b,
		Registry:    registry,
		Units:       units,
		Policies:    ps,
		JWT:         jwt,
		Auth:        auth.NewService(r.Users, r.RefreshTokens, units, jwt, cfg.Auth),
		Courses:     course.NewService(r.Courses, units, r.Professors, enrollments),
		Students:    student.NewService(r.Students, units, b.Numerator),
		Professors:  professor.NewService(r.Professors, units),
		Enrollments: enrollments,
		Audit:       audit.NewService(b.Audit, registry),
	}, nil
}

func (c *Container) defaultFilter() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.IncludeDeleted = true
	f.Limit = 1
	return f
}
