package handlers

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/core/apperror"
	"registrar/internal/metadata"
)

// MetadataHandler exposes the entity registry.
type MetadataHandler struct {
	*BaseHandler
	registry *metadata.Registry
}

// NewMetadataHandler creates a metadata handler.
func NewMetadataHandler(base *BaseHandler, registry *metadata.Registry) *MetadataHandler {
	return &MetadataHandler{BaseHandler: base, registry: registry}
}

// ListEntities returns every registered entity definition.
// GET /api/v1/meta/entities
func (h *MetadataHandler) ListEntities(c *gin.Context) {
	h.OK(c, gin.H{"items": h.registry.List()})
}

// GetEntity returns the definition of one entity.
// GET /api/v1/meta/entities/:name
func (h *MetadataHandler) GetEntity(c *gin.Context) {
	name := c.Param("name")
	def, ok := h.registry.Get(name)
	if !ok {
		h.Error(c, apperror.NewNotFound("entity", name))
		return
	}
	h.OK(c, def)
}
