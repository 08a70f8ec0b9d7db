// Package entity provides the base types and capability traits shared by
// every persisted entity.
package entity

import (
	"context"

	"registrar/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Persistable is anything a unit-of-work can track.
type Persistable interface {
	// EntityID returns the primary key.
	EntityID() id.ID

	// EntityName is the metadata registry key (e.g. "course").
	EntityName() string
}

// Versioned is implemented by entities that use optimistic locking.
type Versioned interface {
	GetVersion() int
	SetVersion(v int)
}

// BaseEntity contains the fields every table carries.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// EntityID implements Persistable.
func (b *BaseEntity) EntityID() id.ID {
	return b.ID
}

// GetVersion returns the current version.
func (b *BaseEntity) GetVersion() int {
	return b.Version
}

// SetVersion updates the version number (used by the store after commit).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}
