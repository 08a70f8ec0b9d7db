// Package security evaluates route authorization policies.
//
// A policy is a CEL expression over two map variables: user (id, role,
// admin, email) and resource (whatever the caller supplies, usually route
// params). Policies are compiled once at startup; evaluation is cheap and
// safe for concurrent use.
package security

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
)

// Built-in policy names.
const (
	PolicyPublic        = "public"
	PolicyAuthenticated = "authenticated"
	PolicyAdmin         = "admin"
	PolicyStaff         = "staff"
	PolicyOwnerOrStaff  = "owner_or_staff"
)

// DefaultPolicies returns the policies the HTTP layer refers to.
func DefaultPolicies() map[string]string {
	return map[string]string{
		PolicyPublic:        `true`,
		PolicyAuthenticated: `user.id != ""`,
		PolicyAdmin:         `user.admin`,
		PolicyStaff:         `user.admin || user.role == "professor"`,
		PolicyOwnerOrStaff:  `user.admin || user.role == "professor" || (has(resource.owner) && resource.owner == user.id)`,
	}
}

// PolicySet holds compiled policies by name.
type PolicySet struct {
	programs map[string]cel.Program
}

// NewPolicySet compiles every expression. Any compile error, or an
// expression that can never be boolean, fails the whole set.
func NewPolicySet(policies map[string]string) (*PolicySet, error) {
	env, err := cel.NewEnv(
		cel.Variable("user", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("resource", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ps := &PolicySet{programs: make(map[string]cel.Program, len(policies))}
	for name, expr := range policies {
		ast, iss := env.Compile(expr)
		if iss.Err() != nil {
			return nil, fmt.Errorf("compile policy %q: %w", name, iss.Err())
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("policy %q must return bool, got %s", name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program policy %q: %w", name, err)
		}
		ps.programs[name] = prg
	}
	return ps, nil
}

// MustDefault compiles DefaultPolicies and panics on error.
func MustDefault() *PolicySet {
	ps, err := NewPolicySet(DefaultPolicies())
	if err != nil {
		panic(err)
	}
	return ps
}

// Names lists compiled policy names.
func (p *PolicySet) Names() []string {
	names := make([]string, 0, len(p.programs))
	for name := range p.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is compiled.
func (p *PolicySet) Has(name string) bool {
	_, ok := p.programs[name]
	return ok
}

// Allowed evaluates policy name for user against resource.
func (p *PolicySet) Allowed(name string, user *appctx.UserContext, resource map[string]any) (bool, error) {
	prg, ok := p.programs[name]
	if !ok {
		return false, fmt.Errorf("unknown policy %q", name)
	}
	if resource == nil {
		resource = map[string]any{}
	}
	out, _, err := prg.Eval(map[string]any{
		"user":     userVars(user),
		"resource": resource,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate policy %q: %w", name, err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy %q returned %T, want bool", name, out.Value())
	}
	return allowed, nil
}

// Authorize checks the caller in ctx against policy name. Anonymous callers
// get UNAUTHORIZED, authenticated ones FORBIDDEN.
func (p *PolicySet) Authorize(ctx context.Context, name string, resource map[string]any) error {
	user := appctx.GetUser(ctx)
	allowed, err := p.Allowed(name, user, resource)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if allowed {
		return nil
	}
	if user == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	return apperror.NewForbidden("access denied").WithDetail("policy", name)
}

func userVars(u *appctx.UserContext) map[string]any {
	if u == nil {
		return map[string]any{"id": "", "role": "", "admin": false, "email": ""}
	}
	return map[string]any{
		"id":    u.UserID.String(),
		"role":  u.Role,
		"admin": u.IsAdmin,
		"email": u.Email,
	}
}
