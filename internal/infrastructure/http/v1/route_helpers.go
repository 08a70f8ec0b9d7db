package v1

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/infrastructure/http/v1/middleware"
)

// CRUDRouteHandler is implemented by every entity handler.
type CRUDRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterCRUDRoutes registers the standard routes of an entity. Reads are
// guarded by readPolicy, writes by writePolicy.
//
// Usage:
//
//	handler := handlers.NewProfessorHandler(base, services.Professors)
//	RegisterCRUDRoutes(api.Group("/professors"), handler, policies, security.PolicyAuthenticated, security.PolicyAdmin)
func RegisterCRUDRoutes(
	group *gin.RouterGroup,
	handler CRUDRouteHandler,
	policies middleware.Authorizer,
	readPolicy, writePolicy string,
) {
	read := middleware.RequirePolicy(policies, readPolicy)
	write := middleware.RequirePolicy(policies, writePolicy)

	group.GET("", read, handler.List)
	group.POST("", write, handler.Create)
	group.GET("/:id", read, handler.Get)
	group.PUT("/:id", write, handler.Update)
	group.DELETE("/:id", write, handler.Delete)
}
