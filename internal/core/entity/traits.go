package entity

import (
	"time"

	"registrar/internal/core/id"
)

// Auditable is implemented by entities that carry created/updated stamps.
// The save pipeline is the only writer of these fields.
type Auditable interface {
	StampCreated(at time.Time, by id.ID)
	StampUpdated(at time.Time, by id.ID)
}

// AuditFields is the embeddable implementation of Auditable.
type AuditFields struct {
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	CreatedBy id.ID      `db:"created_by" json:"createdBy"`
	UpdatedAt *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
	UpdatedBy *id.ID     `db:"updated_by" json:"updatedBy,omitempty"`
}

// StampCreated sets the creation stamp.
func (a *AuditFields) StampCreated(at time.Time, by id.ID) {
	a.CreatedAt = at
	a.CreatedBy = by
}

// StampUpdated sets the modification stamp.
func (a *AuditFields) StampUpdated(at time.Time, by id.ID) {
	a.UpdatedAt = &at
	a.UpdatedBy = id.Ptr(by)
}

// SoftDeletable is implemented by entities whose delete is rewritten into an
// update that flags the row.
type SoftDeletable interface {
	MarkSoftDeleted(at time.Time, by id.ID)
	SoftDeleted() bool
}

// SoftDeleteFields is the embeddable implementation of SoftDeletable.
type SoftDeleteFields struct {
	IsDeleted bool       `db:"is_deleted" json:"isDeleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
	DeletedBy *id.ID     `db:"deleted_by" json:"deletedBy,omitempty"`
}

// MarkSoftDeleted sets all three soft-delete fields together.
func (s *SoftDeleteFields) MarkSoftDeleted(at time.Time, by id.ID) {
	s.IsDeleted = true
	s.DeletedAt = &at
	s.DeletedBy = id.Ptr(by)
}

// SoftDeleted reports whether the row is flagged.
func (s *SoftDeleteFields) SoftDeleted() bool {
	return s.IsDeleted
}

// ImmutableColumns are never part of an UPDATE SET clause.
var ImmutableColumns = map[string]struct{}{
	"id":         {},
	"version":    {},
	"created_at": {},
	"created_by": {},
}
