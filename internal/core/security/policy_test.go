package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
	"registrar/internal/core/id"
)

func TestDefaultPolicies(t *testing.T) {
	ps := MustDefault()
	assert.Equal(t, []string{"admin", "authenticated", "owner_or_staff", "public", "staff"}, ps.Names())

	admin := &appctx.UserContext{UserID: id.New(), Role: appctx.RoleAdmin, IsAdmin: true}
	prof := &appctx.UserContext{UserID: id.New(), Role: appctx.RoleProfessor}
	student := &appctx.UserContext{UserID: id.New(), Role: appctx.RoleStudent}

	cases := []struct {
		policy   string
		user     *appctx.UserContext
		resource map[string]any
		want     bool
	}{
		{PolicyPublic, nil, nil, true},
		{PolicyAuthenticated, nil, nil, false},
		{PolicyAuthenticated, student, nil, true},
		{PolicyAdmin, prof, nil, false},
		{PolicyAdmin, admin, nil, true},
		{PolicyStaff, prof, nil, true},
		{PolicyStaff, student, nil, false},
		{PolicyOwnerOrStaff, student, nil, false},
		{PolicyOwnerOrStaff, student, map[string]any{"owner": id.New().String()}, false},
		{PolicyOwnerOrStaff, student, map[string]any{"owner": student.UserID.String()}, true},
		{PolicyOwnerOrStaff, prof, map[string]any{"owner": ""}, true},
	}
	for _, tc := range cases {
		got, err := ps.Allowed(tc.policy, tc.user, tc.resource)
		require.NoError(t, err, tc.policy)
		assert.Equal(t, tc.want, got, "%s role=%v", tc.policy, tc.user)
	}
}

func TestNewPolicySet_Errors(t *testing.T) {
	_, err := NewPolicySet(map[string]string{"broken": `user.role ==`})
	assert.Error(t, err)

	_, err = NewPolicySet(map[string]string{"not_bool": `"admin"`})
	assert.Error(t, err)

	ps, err := NewPolicySet(map[string]string{"ok": `true`})
	require.NoError(t, err)
	_, err = ps.Allowed("missing", nil, nil)
	assert.Error(t, err)

	ps, err = NewPolicySet(map[string]string{"dyn": `user.role`})
	require.NoError(t, err)
	_, err = ps.Allowed("dyn", nil, nil)
	assert.Error(t, err)
}

func TestAuthorize_ErrorCodes(t *testing.T) {
	ps := MustDefault()

	err := ps.Authorize(context.Background(), PolicyAdmin, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New(), Role: appctx.RoleStudent})
	err = ps.Authorize(ctx, PolicyAdmin, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	assert.NoError(t, ps.Authorize(ctx, PolicyAuthenticated, nil))
}
