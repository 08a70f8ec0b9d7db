package uow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/pkg/logger"
)

// UnitOfWork collects pending changes for one request. It is not safe for
// concurrent use; create one per operation.
type UnitOfWork struct {
	store    Store
	pipeline *Pipeline
	entries  []*Entry
	index    map[EntryKey]*Entry
}

// New creates an empty unit-of-work.
func New(store Store, pipeline *Pipeline) *UnitOfWork {
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}
	return &UnitOfWork{
		store:    store,
		pipeline: pipeline,
		index:    make(map[EntryKey]*Entry),
	}
}

// Insert registers a new row. A row already registered for update keeps its
// Modify kind, and a row registered for deletion stays deleted.
func (u *UnitOfWork) Insert(e entity.Persistable) {
	u.track(e, Insert)
}

// Update registers a modification of an existing row. Updating a row
// inserted in this unit-of-work keeps it an insert; a pending delete is final
// and the update is ignored.
func (u *UnitOfWork) Update(e entity.Persistable) {
	u.track(e, Modify)
}

// Delete registers a removal. Soft-deletable entities are flagged instead.
// Deleting a row inserted in this unit-of-work drops both registrations.
func (u *UnitOfWork) Delete(e entity.Persistable) {
	u.track(e, Delete)
}

// Pending returns the number of registered entries.
func (u *UnitOfWork) Pending() int {
	return len(u.entries)
}

func (u *UnitOfWork) track(e entity.Persistable, kind Kind) {
	key := EntryKey{Name: e.EntityName(), ID: e.EntityID()}
	existing, ok := u.index[key]
	if !ok {
		entry := &Entry{Entity: e, Kind: kind}
		u.entries = append(u.entries, entry)
		u.index[key] = entry
		return
	}

	switch {
	case existing.Kind == Delete:
		return
	case existing.Kind == Insert && kind == Delete:
		u.forget(key)
		return
	case kind == Delete:
		existing.Kind = Delete
	}
	existing.Entity = e
}

func (u *UnitOfWork) forget(key EntryKey) {
	delete(u.index, key)
	for i, e := range u.entries {
		if e.Key() == key {
			u.entries = append(u.entries[:i], u.entries[i+1:]...)
			return
		}
	}
}

// Commit runs the pipeline over the pending entries and applies them through
// the store. On failure nothing is persisted and the entries stay registered,
// so the commit may be retried; entities can still hold the stamped values.
// On success the unit-of-work is empty again.
func (u *UnitOfWork) Commit(ctx context.Context, actor id.ID) (Stats, error) {
	if len(u.entries) == 0 {
		return Stats{}, nil
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	ctx, span := tracer.Start(ctx, "uow.commit")
	defer span.End()
	span.SetAttributes(
		attribute.Int("uow.entries", len(u.entries)),
		attribute.String("uow.actor", actor.String()),
	)

	if id.IsNil(actor) {
		logger.Warn(ctx, "commit without actor, rows are stamped with the system actor",
			"entries", len(u.entries))
	}

	cs := NewChangeSet(u.entries...)
	stamp := u.pipeline.Run(ctx, cs, actor)

	stats, err := u.store.Apply(ctx, Batch{Entries: cs.Entries(), Stamp: stamp})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store apply failed")
		return Stats{}, fmt.Errorf("commit unit of work: %w", err)
	}

	u.entries = nil
	u.index = make(map[EntryKey]*Entry)
	return stats, nil
}

// Factory creates a fresh unit-of-work per operation.
type Factory struct {
	store    Store
	pipeline *Pipeline
}

// NewFactory binds a store and pipeline.
func NewFactory(store Store, pipeline *Pipeline) *Factory {
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}
	return &Factory{store: store, pipeline: pipeline}
}

// New returns an empty unit-of-work.
func (f *Factory) New() *UnitOfWork {
	return New(f.store, f.pipeline)
}

// Pipeline exposes the configured pipeline.
func (f *Factory) Pipeline() *Pipeline {
	return f.pipeline
}
