// Package handlers provides HTTP request handlers.
package handlers

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/domain"
)

// EntityHandler provides generic CRUD handlers over domain.EntityService.
type EntityHandler[T domain.Entity, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service      *domain.EntityService[T]
	defaultOrder string

	mapCreateDTO func(dto CreateDTO) T
	mapUpdateDTO func(dto UpdateDTO, existing T) T
	mapToDTO     func(entity T) any
}

// EntityHandlerConfig configures the entity handler.
type EntityHandlerConfig[T domain.Entity, CreateDTO any, UpdateDTO any] struct {
	Service      *domain.EntityService[T]
	DefaultOrder string
	MapCreateDTO func(dto CreateDTO) T
	MapUpdateDTO func(dto UpdateDTO, existing T) T
	MapToDTO     func(entity T) any
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler[T domain.Entity, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg EntityHandlerConfig[T, CreateDTO, UpdateDTO],
) *EntityHandler[T, CreateDTO, UpdateDTO] {
	return &EntityHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		defaultOrder: cfg.DefaultOrder,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
		mapToDTO:     cfg.MapToDTO,
	}
}

// List handles GET /{entity}.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	f, ok := h.ListFilter(c, h.defaultOrder)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	respondList(c, result, h.mapToDTO)
}

// Get handles GET /{entity}/:id.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(e))
}

// Create handles POST /{entity}.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	e := h.mapCreateDTO(req)
	if err := h.service.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.mapToDTO(e))
}

// Update handles PUT /{entity}/:id. The body carries the version the
// client read; a stale version yields 409.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.mapUpdateDTO(req, existing)
	if err := h.service.Update(c.Request.Context(), updated); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(updated))
}

// Delete handles DELETE /{entity}/:id.
func (h *EntityHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
