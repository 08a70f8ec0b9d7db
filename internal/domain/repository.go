// Package domain provides the generic service and repository contracts shared
// by the course, student and professor packages.
package domain

import (
	"context"

	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/domain/filter"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches the entity's searchable columns (ILIKE)
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// IncludeDeleted includes soft-deleted records
	IncludeDeleted bool

	// AdvancedFilters are column conditions, see package filter
	AdvancedFilters []filter.Item

	// OrderBy specifies sorting (e.g., "code", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: DefaultLimit}
}

// Normalize clamps pagination to [1, MaxLimit] and a non-negative offset.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// Reader is the read side of an entity table. Soft-deletable types are
// filtered to non-deleted rows unless a filter asks otherwise.
type Reader[T entity.Persistable] interface {
	// GetByID retrieves a live entity by ID
	GetByID(ctx context.Context, id id.ID) (T, error)

	// FindBy returns the first live entity whose column equals value
	FindBy(ctx context.Context, column string, value any) (T, error)

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// Exists checks if a live entity with given ID exists
	Exists(ctx context.Context, id id.ID) (bool, error)

	// ExistsBy checks for a live entity with column = value, ignoring excludeID
	ExistsBy(ctx context.Context, column string, value any, excludeID id.ID) (bool, error)
}
