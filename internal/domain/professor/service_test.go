package professor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/domain"
	"registrar/internal/domain/professor"
	"registrar/internal/infrastructure/storage/memory"
)

func newService() (*professor.Service, *memory.Store) {
	store := memory.NewStore()
	svc := professor.NewService(
		memory.NewRepo[*professor.Professor](store, "first_name", "last_name", "email", "department"),
		uow.NewFactory(store, nil),
	)
	return svc, store
}

func TestCreate_NormalizesAndRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p := professor.NewProfessor("Emmy", "Noether", " Noether@Example.edu ", "Mathematics")
	require.NoError(t, svc.Create(ctx, p))
	assert.Equal(t, "noether@example.edu", p.Email)
	assert.Equal(t, 1, p.Version)

	dup := professor.NewProfessor("E", "N", "NOETHER@example.edu", "Physics")
	assert.True(t, apperror.HasCode(svc.Create(ctx, dup), apperror.CodeDuplicate))
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	err := svc.Create(ctx, professor.NewProfessor("", "Noether", "n@example.edu", "Math"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = svc.Create(ctx, professor.NewProfessor("Emmy", "Noether", "nope", "Math"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdate_OwnEmailIsNotADuplicate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p := professor.NewProfessor("Alan", "Turing", "turing@example.edu", "Computing")
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Department = "Computer Science"
	require.NoError(t, svc.Update(ctx, got))
	assert.Equal(t, 2, got.Version)
	require.NotNil(t, got.UpdatedAt)

	other := professor.NewProfessor("Ada", "Lovelace", "ada@example.edu", "Computing")
	require.NoError(t, svc.Create(ctx, other))
	other.Email = "turing@example.edu"
	assert.True(t, apperror.HasCode(svc.Update(ctx, other), apperror.CodeDuplicate))
}

func TestDelete_IsSoftAndFreesEmail(t *testing.T) {
	svc, store := newService()
	admin := id.New()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: admin, Role: appctx.RoleAdmin, IsAdmin: true})

	p := professor.NewProfessor("Alan", "Turing", "turing@example.edu", "Computing")
	require.NoError(t, svc.Create(ctx, p))
	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err := svc.GetByID(ctx, p.ID)
	assert.True(t, apperror.IsNotFound(err))

	row, ok := store.Get(professor.EntityName, p.ID)
	require.True(t, ok, "row stays physically present")
	stored := row.(*professor.Professor)
	assert.True(t, stored.IsDeleted)
	require.NotNil(t, stored.DeletedBy)
	assert.Equal(t, admin, *stored.DeletedBy)
	assert.Equal(t, 0, store.Removals(professor.EntityName))

	f := domain.DefaultListFilter()
	f.IncludeDeleted = true
	all, err := svc.List(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.TotalCount)

	again := professor.NewProfessor("Alan", "Turing", "turing@example.edu", "Computing")
	require.NoError(t, svc.Create(ctx, again), "deleted rows do not hold the email")
}
