package app

import (
	"context"
	"fmt"

	"registrar/internal/core/numerator"
	"registrar/internal/core/uow"
	"registrar/internal/domain"
	"registrar/internal/domain/audit"
	"registrar/internal/domain/auth"
	"registrar/internal/domain/course"
	"registrar/internal/domain/enrollment"
	"registrar/internal/domain/professor"
	"registrar/internal/domain/student"
	"registrar/internal/infrastructure/storage/memory"
	"registrar/internal/infrastructure/storage/postgres"
	"registrar/internal/infrastructure/storage/postgres/entity_repo"
	"registrar/internal/metadata"
	pgnumerator "registrar/pkg/numerator"
)

// Storage kinds.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Readers groups one reader per entity.
type Readers struct {
	Courses       domain.Reader[*course.Course]
	Students      domain.Reader[*student.Student]
	Professors    domain.Reader[*professor.Professor]
	Enrollments   domain.Reader[*enrollment.Enrollment]
	Users         domain.Reader[*auth.User]
	RefreshTokens domain.Reader[*auth.RefreshToken]
}

// Backend is a storage engine plus everything that reads from it.
type Backend struct {
	Kind      string
	Store     uow.Store
	Readers   Readers
	Numerator numerator.Generator
	Audit     audit.Reader

	// DB is the pool in postgres mode, nil otherwise
	DB interface {
		Ping(ctx context.Context) error
	}
}

// NewMemoryBackend keeps everything in process. Unique constraints mirror
// the partial unique indexes of the PostgreSQL schema.
func NewMemoryBackend() *Backend {
	store := memory.NewStore()
	store.Unique(course.EntityName, "code")
	store.Unique(student.EntityName, "email")
	store.Unique(student.EntityName, "student_number")
	store.Unique(professor.EntityName, "email")
	store.Unique(enrollment.EntityName, "student_id", "course_id")
	store.Unique(auth.UserEntity, "email")
	store.Unique(auth.RefreshTokenEntity, "token_hash")

	return &Backend{
		Kind:  StorageMemory,
		Store: store,
		Readers: Readers{
			Courses:       memory.NewRepo[*course.Course](store, "code", "title"),
			Students:      memory.NewRepo[*student.Student](store, "first_name", "last_name", "email", "student_number"),
			Professors:    memory.NewRepo[*professor.Professor](store, "first_name", "last_name", "email", "department"),
			Enrollments:   memory.NewRepo[*enrollment.Enrollment](store),
			Users:         memory.NewRepo[*auth.User](store, "email"),
			RefreshTokens: memory.NewRepo[*auth.RefreshToken](store),
		},
		Numerator: pgnumerator.NewMemory(),
		Audit:     store,
	}
}

// NewPostgresBackend reads and writes through pool.
func NewPostgresBackend(pool *postgres.Pool, registry *metadata.Registry) (*Backend, error) {
	txm := postgres.NewTxManager(pool)
	auditLog, err := postgres.NewAuditLog(txm, postgres.DefaultCompressThreshold)
	if err != nil {
		return nil, fmt.Errorf("create audit log: %w", err)
	}

	return &Backend{
		Kind:  StoragePostgres,
		Store: postgres.NewStore(txm, registry, auditLog),
		Readers: Readers{
			Courses: entity_repo.New(txm, entity_repo.Config[*course.Course]{
				Def:          registry.MustGet(course.EntityName),
				Searchable:   []string{"code", "title"},
				DefaultOrder: "code ASC",
				New:          func() *course.Course { return new(course.Course) },
			}),
			Students: entity_repo.New(txm, entity_repo.Config[*student.Student]{
				Def:          registry.MustGet(student.EntityName),
				Searchable:   []string{"first_name", "last_name", "email", "student_number"},
				DefaultOrder: "last_name ASC, first_name ASC",
				New:          func() *student.Student { return new(student.Student) },
			}),
			Professors: entity_repo.New(txm, entity_repo.Config[*professor.Professor]{
				Def:          registry.MustGet(professor.EntityName),
				Searchable:   []string{"first_name", "last_name", "email", "department"},
				DefaultOrder: "last_name ASC, first_name ASC",
				New:          func() *professor.Professor { return new(professor.Professor) },
			}),
			Enrollments: entity_repo.New(txm, entity_repo.Config[*enrollment.Enrollment]{
				Def:          registry.MustGet(enrollment.EntityName),
				DefaultOrder: "enrolled_at ASC",
				New:          func() *enrollment.Enrollment { return new(enrollment.Enrollment) },
			}),
			Users: entity_repo.New(txm, entity_repo.Config[*auth.User]{
				Def:          registry.MustGet(auth.UserEntity),
				Searchable:   []string{"email"},
				DefaultOrder: "email ASC",
				New:          func() *auth.User { return new(auth.User) },
			}),
			RefreshTokens: entity_repo.New(txm, entity_repo.Config[*auth.RefreshToken]{
				Def: registry.MustGet(auth.RefreshTokenEntity),
				New: func() *auth.RefreshToken { return new(auth.RefreshToken) },
			}),
		},
		Numerator: pgnumerator.New(pool),
		Audit:     auditLog,
		DB:        pool,
	}, nil
}
