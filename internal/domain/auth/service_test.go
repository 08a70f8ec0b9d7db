package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/domain/auth"
	"registrar/internal/infrastructure/storage/memory"
)

type fixture struct {
	ctx   context.Context
	store *memory.Store
	svc   *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.Unique(auth.UserEntity, "email")

	cfg := auth.DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxLoginAttempts = 2

	svc := auth.NewService(
		memory.NewRepo[*auth.User](store, "email"),
		memory.NewRepo[*auth.RefreshToken](store),
		uow.NewFactory(store, nil),
		auth.NewJWTService(auth.DefaultJWTConfig("test-secret")),
		cfg,
	)
	return &fixture{
		ctx:   appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New(), Role: appctx.RoleAdmin, IsAdmin: true}),
		store: store,
		svc:   svc,
	}
}

func (f *fixture) register(t *testing.T, email, password, role string) *auth.User {
	t.Helper()
	u, err := f.svc.Register(f.ctx, auth.RegisterRequest{Email: email, Password: password, Role: role})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	admin := appctx.GetUser(f.ctx).UserID

	u := f.register(t, "Ada@Example.edu", "s3cret-pass", appctx.RoleProfessor)
	assert.Equal(t, "ada@example.edu", u.Email)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.Equal(t, admin, u.CreatedBy)

	_, err := f.svc.Register(f.ctx, auth.RegisterRequest{Email: "ada@example.edu", Password: "another-pass", Role: appctx.RoleStudent})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	_, err = f.svc.Register(f.ctx, auth.RegisterRequest{Email: "x@example.edu", Password: "short", Role: appctx.RoleStudent})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.Register(f.ctx, auth.RegisterRequest{Email: "x@example.edu", Password: "long-enough", Role: "janitor"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLogin_IssuesTokensAndStampsUser(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "grace@example.edu", "correct-horse", appctx.RoleStudent)

	pair, logged, err := f.svc.Login(context.Background(),
		auth.Credentials{Email: " GRACE@example.edu ", Password: "correct-horse"},
		auth.ClientInfo{UserAgent: "test", IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotNil(t, logged.LastLoginAt)

	// The user is the actor of its own login.
	row, ok := f.store.Get(auth.UserEntity, u.ID)
	require.True(t, ok)
	stored := row.(*auth.User)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, u.ID, *stored.UpdatedBy)
	assert.Len(t, f.store.Rows(auth.RefreshTokenEntity), 1)

	caller, err := f.svc.JWT().ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.UserID)
	assert.Equal(t, appctx.RoleStudent, caller.Role)
	assert.False(t, caller.IsAdmin)

	me, err := f.svc.Me(appctx.WithUser(context.Background(), caller))
	require.NoError(t, err)
	assert.Equal(t, "grace@example.edu", me.Email)
}

func TestLogin_LocksAfterFailures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "eve@example.edu", "right-password", appctx.RoleStudent)
	ctx := context.Background()
	bad := auth.Credentials{Email: "eve@example.edu", Password: "wrong-password"}

	for i := 0; i < 2; i++ {
		_, _, err := f.svc.Login(ctx, bad, auth.ClientInfo{})
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	}

	_, _, err := f.svc.Login(ctx, auth.Credentials{Email: "eve@example.edu", Password: "right-password"}, auth.ClientInfo{})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, _, err = f.svc.Login(ctx, auth.Credentials{Email: "nobody@example.edu", Password: "x"}, auth.ClientInfo{})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestRefresh_RotationRemovesOldToken(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alan@example.edu", "enigma-machine", appctx.RoleProfessor)
	ctx := context.Background()

	first, _, err := f.svc.Login(ctx, auth.Credentials{Email: "alan@example.edu", Password: "enigma-machine"}, auth.ClientInfo{})
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken, auth.ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	assert.Equal(t, 1, f.store.Removals(auth.RefreshTokenEntity))
	assert.Len(t, f.store.Rows(auth.RefreshTokenEntity), 1)

	_, err = f.svc.Refresh(ctx, first.RefreshToken, auth.ClientInfo{})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	n, err := f.svc.Logout(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.store.Rows(auth.RefreshTokenEntity))
}

func TestJWT_RejectsForeignSignature(t *testing.T) {
	u := auth.NewUser("a@example.edu", "", appctx.RoleAdmin)
	signer := auth.NewJWTService(auth.DefaultJWTConfig("one"))
	verifier := auth.NewJWTService(auth.DefaultJWTConfig("two"))

	token, expiresAt, err := signer.GenerateAccessToken(u, "session")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	caller, err := signer.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, caller.IsAdmin)
	assert.Equal(t, "session", caller.SessionID)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
