// Package uow implements the unit-of-work used by every write path.
//
// Feature code registers inserts, updates and deletes, then calls Commit with
// the acting user's ID. Commit runs the save pipeline over the pending
// entries (soft-delete conversion, then audit stamping) and hands the result
// to a Store, which applies it atomically.
package uow

import (
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

// Kind is the pending operation of a change entry.
type Kind int

const (
	Unchanged Kind = iota
	Insert
	Modify
	Delete
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	default:
		return "unchanged"
	}
}

// Entry is one entity's pending operation.
type Entry struct {
	Entity entity.Persistable
	Kind   Kind

	// SoftDeleted is set when a delete was rewritten into a modify.
	SoftDeleted bool
}

// Key identifies the tracked row.
func (e *Entry) Key() EntryKey {
	return EntryKey{Name: e.Entity.EntityName(), ID: e.Entity.EntityID()}
}

// EntryKey is the (entity name, id) pair a unit-of-work deduplicates on.
type EntryKey struct {
	Name string
	ID   id.ID
}

// ChangeSet is the mutable view of pending entries handed to each stage.
type ChangeSet struct {
	entries []*Entry
}

// NewChangeSet wraps entries. Stages mutate the entries in place.
func NewChangeSet(entries ...*Entry) *ChangeSet {
	return &ChangeSet{entries: entries}
}

// Entries returns the pending entries in registration order.
func (c *ChangeSet) Entries() []*Entry {
	return c.entries
}

// Len returns the number of pending entries.
func (c *ChangeSet) Len() int {
	return len(c.entries)
}
