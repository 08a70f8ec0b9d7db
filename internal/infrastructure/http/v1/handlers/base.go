package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"registrar/internal/core/apperror"
	"registrar/internal/core/id"
	"registrar/internal/domain"
	"registrar/internal/domain/filter"
	"registrar/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseID reads a UUID route param.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	v, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", param))
		return id.Nil(), false
	}
	return v, true
}

// ListFilter reads limit, offset, search, orderBy, includeDeleted and
// repeated filter=field:op:value params.
func (h *BaseHandler) ListFilter(c *gin.Context, defaultOrder string) (domain.ListFilter, bool) {
	f := domain.DefaultListFilter()
	f.Search = c.Query("search")
	f.Limit = h.ParseIntQuery(c, "limit", domain.DefaultLimit)
	f.Offset = h.ParseIntQuery(c, "offset", 0)
	f.OrderBy = c.DefaultQuery("orderBy", defaultOrder)
	f.IncludeDeleted = c.Query("includeDeleted") == "true"

	for _, raw := range c.QueryArray("filter") {
		item, err := filter.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid filter").WithDetail("error", err.Error()))
			return f, false
		}
		f.AdvancedFilters = append(f.AdvancedFilters, item)
	}
	return f.Normalize(), true
}

// respondList writes a paginated list response, mapping each item with fn.
func respondList[T any](c *gin.Context, res domain.ListResult[T], fn func(T) any) {
	items := make([]any, len(res.Items))
	for i, item := range res.Items {
		items[i] = fn(item)
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	})
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
