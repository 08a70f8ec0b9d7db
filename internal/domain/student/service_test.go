package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/core/apperror"
	"registrar/internal/core/uow"
	"registrar/internal/domain/student"
	"registrar/internal/infrastructure/storage/memory"
	"registrar/pkg/numerator"
)

func newService() *student.Service {
	store := memory.NewStore()
	return student.NewService(
		memory.NewRepo[*student.Student](store, "first_name", "last_name", "email"),
		uow.NewFactory(store, nil),
		numerator.NewMemory(),
	)
}

func TestCreate_AssignsStudentNumber(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a := student.NewStudent("Grace", "Hopper", "Grace@Example.edu")
	require.NoError(t, svc.Create(ctx, a))
	b := student.NewStudent("Alan", "Turing", "alan@example.edu")
	require.NoError(t, svc.Create(ctx, b))

	year := time.Now().Format("2006")
	assert.Equal(t, "S-"+year+"-00001", a.StudentNumber)
	assert.Equal(t, "S-"+year+"-00002", b.StudentNumber)
	assert.Equal(t, "grace@example.edu", a.Email)
}

func TestCreate_KeepsExplicitNumberAndRejectsDuplicates(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a := student.NewStudent("Grace", "Hopper", "grace@example.edu")
	a.StudentNumber = "LEGACY-1"
	require.NoError(t, svc.Create(ctx, a))
	assert.Equal(t, "LEGACY-1", a.StudentNumber)

	dupEmail := student.NewStudent("G", "H", "grace@example.edu")
	assert.True(t, apperror.HasCode(svc.Create(ctx, dupEmail), apperror.CodeDuplicate))

	dupNumber := student.NewStudent("G", "H", "gh@example.edu")
	dupNumber.StudentNumber = "LEGACY-1"
	assert.True(t, apperror.HasCode(svc.Create(ctx, dupNumber), apperror.CodeDuplicate))
}

func TestUpdate_OwnEmailIsNotADuplicate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a := student.NewStudent("Grace", "Hopper", "grace@example.edu")
	require.NoError(t, svc.Create(ctx, a))

	got, err := svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	got.LastName = "Murray Hopper"
	require.NoError(t, svc.Update(ctx, got))
	assert.Equal(t, 2, got.Version)
	assert.NotNil(t, got.UpdatedAt)
}

func TestCreate_InvalidEmail(t *testing.T) {
	svc := newService()
	err := svc.Create(context.Background(), student.NewStudent("A", "B", "not-an-email"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
