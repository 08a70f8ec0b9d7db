package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"registrar/internal/app"
	appctx "registrar/internal/core/context"
	"registrar/internal/core/id"
	"registrar/internal/domain"
	"registrar/internal/domain/auth"
	"registrar/internal/domain/course"
	"registrar/internal/infrastructure/storage/memory"
)

func newContainer(t *testing.T) *app.Container {
	t.Helper()
	cfg := app.Config{JWT: auth.DefaultJWTConfig("test"), Auth: auth.DefaultServiceConfig()}
	cfg.Auth.BcryptCost = bcrypt.MinCost

	c, err := app.NewContainer(app.NewMemoryBackend(), app.NewRegistry(), cfg)
	require.NoError(t, err)
	return c
}

func TestNewRegistry(t *testing.T) {
	r := app.NewRegistry()
	require.Len(t, r.List(), 6)

	c := r.MustGet(course.EntityName)
	assert.Equal(t, "courses", c.TableName)
	assert.True(t, c.Auditable)
	assert.True(t, c.SoftDeletable)

	e := r.MustGet("enrollment")
	assert.True(t, e.Auditable)
	assert.False(t, e.SoftDeletable)

	tok := r.MustGet(auth.RefreshTokenEntity)
	assert.False(t, tok.Auditable)
	assert.False(t, tok.SoftDeletable)
}

func TestNewContainer_RejectsBadPolicies(t *testing.T) {
	_, err := app.NewContainer(app.NewMemoryBackend(), app.NewRegistry(), app.Config{
		Policies: map[string]string{"broken": "user.role =="},
	})
	assert.Error(t, err)
}

func TestSeed_SystemActorAndIdempotence(t *testing.T) {
	c := newContainer(t)
	ctx := context.Background()

	adminID, err := app.SeedAdmin(ctx, c, "admin@registrar.local", "change-me-now")
	require.NoError(t, err)

	again, err := app.SeedAdmin(ctx, c, "admin@registrar.local", "change-me-now")
	require.NoError(t, err)
	assert.Equal(t, adminID, again)

	row, ok := c.Backend.Store.(*memory.Store).Get(auth.UserEntity, adminID)
	require.True(t, ok)
	assert.Equal(t, id.Nil(), row.(*auth.User).CreatedBy)

	require.NoError(t, app.SeedDemo(ctx, c, adminID))
	require.NoError(t, app.SeedDemo(ctx, c, adminID))

	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: adminID, Role: appctx.RoleAdmin, IsAdmin: true})
	courses, err := c.Courses.List(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 3, courses.TotalCount)
	for _, co := range courses.Items {
		assert.Equal(t, adminID, co.CreatedBy)
	}

	res, err := c.Enrollments.ListByCourse(ctx, courses.Items[0].ID, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.TotalCount)

	history, err := c.Audit.History(ctx, course.EntityName, courses.Items[0].ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, adminID, history[0].ActorID)
}
