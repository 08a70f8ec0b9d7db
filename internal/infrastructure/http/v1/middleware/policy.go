package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"registrar/internal/core/security"
)

// Authorizer evaluates a named policy for the caller in the request context.
type Authorizer interface {
	Authorize(ctx context.Context, name string, resource map[string]any) error
}

// RequirePolicy rejects the request unless policy name allows it. Route
// params are exposed to the expression as resource.<param>.
func RequirePolicy(policies Authorizer, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resource := make(map[string]any, len(c.Params))
		for _, p := range c.Params {
			resource[p.Key] = p.Value
		}

		if err := policies.Authorize(c.Request.Context(), name, resource); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

var _ Authorizer = (*security.PolicySet)(nil)
