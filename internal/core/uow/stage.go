package uow

import (
	"time"

	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

// Stamp is the actor and instant captured once per commit.
type Stamp struct {
	Actor id.ID
	Now   time.Time
}

// Stage is one step of the save pipeline. Stages only touch in-memory
// entries; they never perform I/O.
type Stage interface {
	Name() string
	Apply(cs *ChangeSet, stamp Stamp)
}

// SoftDeleteStage rewrites deletes of soft-deletable entities into modifies
// that flag the row. It does not look at the current flag: deleting an
// already deleted row stamps DeletedAt/DeletedBy again.
type SoftDeleteStage struct{}

func (SoftDeleteStage) Name() string { return "soft_delete" }

func (SoftDeleteStage) Apply(cs *ChangeSet, stamp Stamp) {
	for _, e := range cs.Entries() {
		// A converted delete from a failed attempt is stamped again so it
		// shares the retry's instant with UpdatedAt.
		if e.Kind != Delete && !e.SoftDeleted {
			continue
		}
		sd, ok := e.Entity.(entity.SoftDeletable)
		if !ok {
			continue
		}
		e.Kind = Modify
		e.SoftDeleted = true
		sd.MarkSoftDeleted(stamp.Now, stamp.Actor)
	}
}

// AuditStage stamps created fields on inserts and updated fields on modifies
// of auditable entities.
type AuditStage struct{}

func (AuditStage) Name() string { return "audit" }

func (AuditStage) Apply(cs *ChangeSet, stamp Stamp) {
	for _, e := range cs.Entries() {
		a, ok := e.Entity.(entity.Auditable)
		if !ok {
			continue
		}
		switch e.Kind {
		case Insert:
			a.StampCreated(stamp.Now, stamp.Actor)
		case Modify:
			a.StampUpdated(stamp.Now, stamp.Actor)
		}
	}
}
