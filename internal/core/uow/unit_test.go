package uow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/infrastructure/storage/memory"
	"registrar/pkg/logger"
)

// note is auditable and soft-deletable.
type note struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields
	Body string `db:"body"`
}

func (*note) EntityName() string { return "note" }

// tag has no capabilities.
type tag struct {
	entity.BaseEntity
	Label string `db:"label"`
}

func (*tag) EntityName() string { return "tag" }

// entry is auditable only.
type entry struct {
	entity.BaseEntity
	entity.AuditFields
	Text string `db:"text"`
}

func (*entry) EntityName() string { return "entry" }

var (
	t0 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t1.Add(time.Hour)

	actor1 = id.MustParse("00000000-0000-0000-0000-000000000001")
	actor2 = id.MustParse("00000000-0000-0000-0000-000000000002")
	actor3 = id.MustParse("00000000-0000-0000-0000-000000000003")
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newFactory(store uow.Store, c *clock) *uow.Factory {
	return uow.NewFactory(store, uow.DefaultPipeline().WithClock(c.Now))
}

func TestDefaultPipeline_Order(t *testing.T) {
	assert.Equal(t, []string{"soft_delete", "audit"}, uow.DefaultPipeline().StageNames())
}

func TestCommit_InsertUpdateSoftDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := &clock{now: t0}
	units := newFactory(store, c)

	n := &note{BaseEntity: entity.NewBaseEntity(), Body: "draft"}

	u := units.New()
	u.Insert(n)
	stats, err := u.Commit(ctx, actor1)
	require.NoError(t, err)
	assert.Equal(t, uow.Stats{Inserted: 1}, stats)
	assert.Equal(t, t0, n.CreatedAt)
	assert.Equal(t, actor1, n.CreatedBy)
	assert.Nil(t, n.UpdatedAt)
	assert.Nil(t, n.UpdatedBy)

	c.now = t1
	n.Body = "final"
	u = units.New()
	u.Update(n)
	stats, err = u.Commit(ctx, actor2)
	require.NoError(t, err)
	assert.Equal(t, uow.Stats{Updated: 1}, stats)
	assert.Equal(t, t0, n.CreatedAt)
	assert.Equal(t, actor1, n.CreatedBy)
	require.NotNil(t, n.UpdatedAt)
	assert.Equal(t, t1, *n.UpdatedAt)
	assert.Equal(t, actor2, *n.UpdatedBy)

	c.now = t2
	u = units.New()
	u.Delete(n)
	stats, err = u.Commit(ctx, actor3)
	require.NoError(t, err)
	assert.Equal(t, uow.Stats{SoftDeleted: 1}, stats)

	row, ok := store.Get("note", n.ID)
	require.True(t, ok, "soft-deleted row must stay in the table")
	stored := row.(*note)
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, t2, *stored.DeletedAt)
	assert.Equal(t, actor3, *stored.DeletedBy)
	assert.Equal(t, t2, *stored.UpdatedAt)
	assert.Equal(t, actor3, *stored.UpdatedBy)
	assert.Equal(t, t0, stored.CreatedAt)
	assert.Equal(t, actor1, stored.CreatedBy)
	assert.Equal(t, "final", stored.Body)
	assert.Equal(t, 0, store.Removals("note"))
}

func TestCommit_HardDeletesPlainEntity(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	tg := &tag{BaseEntity: entity.NewBaseEntity(), Label: "x"}
	u := units.New()
	u.Insert(tg)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	u = units.New()
	u.Delete(tg)
	stats, err := u.Commit(ctx, actor1)
	require.NoError(t, err)
	assert.Equal(t, uow.Stats{Removed: 1}, stats)

	_, ok := store.Get("tag", tg.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Removals("tag"))
}

func TestCommit_AuditOnlyEntityIsRemoved(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	e := &entry{BaseEntity: entity.NewBaseEntity(), Text: "a"}
	u := units.New()
	u.Insert(e)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	u = units.New()
	u.Delete(e)
	stats, err := u.Commit(ctx, actor2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Removed)
	assert.Nil(t, e.UpdatedAt, "deletes are not stamped")
	assert.Equal(t, 1, store.Removals("entry"))
}

func TestCommit_MixedBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := &clock{now: t0}
	units := newFactory(store, c)

	soft := &note{BaseEntity: entity.NewBaseEntity()}
	hard := &tag{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(soft)
	u.Insert(hard)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	c.now = t1
	fresh := &entry{BaseEntity: entity.NewBaseEntity(), Text: "new"}
	u = units.New()
	u.Delete(soft)
	u.Delete(hard)
	u.Insert(fresh)
	stats, err := u.Commit(ctx, actor2)
	require.NoError(t, err)
	assert.Equal(t, uow.Stats{Inserted: 1, SoftDeleted: 1, Removed: 1}, stats)

	_, ok := store.Get("note", soft.ID)
	assert.True(t, ok)
	_, ok = store.Get("tag", hard.ID)
	assert.False(t, ok)
	assert.Equal(t, t1, fresh.CreatedAt)
	assert.Equal(t, actor2, fresh.CreatedBy)
	assert.Equal(t, t1, *soft.DeletedAt)
	assert.Equal(t, *soft.DeletedAt, *soft.UpdatedAt, "one instant per commit")
}

func TestCommit_RedeleteRestamps(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := &clock{now: t0}
	units := newFactory(store, c)

	n := &note{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	c.now = t1
	u = units.New()
	u.Delete(n)
	_, err = u.Commit(ctx, actor2)
	require.NoError(t, err)

	c.now = t2
	u = units.New()
	u.Delete(n)
	stats, err := u.Commit(ctx, actor3)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SoftDeleted)
	assert.Equal(t, t2, *n.DeletedAt)
	assert.Equal(t, actor3, *n.DeletedBy)
}

func TestCommit_FailureKeepsEntriesForRetry(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	n := &note{BaseEntity: entity.NewBaseEntity()}
	tg := &tag{BaseEntity: entity.NewBaseEntity()}

	store.FailNext(errors.New("connection reset"))
	u := units.New()
	u.Insert(n)
	u.Insert(tg)
	_, err := u.Commit(ctx, actor1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 2, u.Pending())

	_, ok := store.Get("note", n.ID)
	assert.False(t, ok, "nothing persisted")
	_, ok = store.Get("tag", tg.ID)
	assert.False(t, ok)
	assert.Equal(t, actor1, n.CreatedBy, "in-memory entity keeps the stamp")

	stats, err := u.Commit(ctx, actor1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 0, u.Pending())
}

func TestCommit_RetriedSoftDeleteUsesNewInstant(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := &clock{now: t0}
	units := newFactory(store, c)

	n := &note{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	c.now = t1
	store.FailNext(errors.New("serialization failure"))
	u = units.New()
	u.Delete(n)
	_, err = u.Commit(ctx, actor2)
	require.Error(t, err)

	c.now = t2
	stats, err := u.Commit(ctx, actor2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SoftDeleted)
	assert.Equal(t, t2, *n.DeletedAt)
	assert.Equal(t, *n.DeletedAt, *n.UpdatedAt)
}

func TestCommit_BatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	n := &note{BaseEntity: entity.NewBaseEntity()}
	ghost := &tag{BaseEntity: entity.NewBaseEntity()}

	u := units.New()
	u.Insert(n)
	u.Update(ghost) // not stored, the store rejects the batch
	_, err := u.Commit(ctx, actor1)
	require.Error(t, err)

	_, ok := store.Get("note", n.ID)
	assert.False(t, ok)
}

func TestCommit_CancelledContext(t *testing.T) {
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := &note{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	_, err := u.Commit(ctx, actor1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, u.Pending())
	assert.Empty(t, store.Rows("note"))
}

func TestCommit_NilActorWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.WithLogger(context.Background(), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	n := &note{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	_, err := u.Commit(ctx, id.Nil())
	require.NoError(t, err)

	assert.True(t, id.IsNil(n.CreatedBy))
	assert.Equal(t, 1, logs.FilterMessageSnippet("without actor").Len())
}

func TestUnitOfWork_Dedup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	n := &note{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	u.Update(n)
	assert.Equal(t, 1, u.Pending())
	u.Delete(n)
	assert.Equal(t, 0, u.Pending(), "insert then delete cancels out")

	stats, err := u.Commit(ctx, actor1)
	require.NoError(t, err)
	assert.Equal(t, uow.Stats{}, stats)
	assert.Empty(t, store.Rows("note"))
}

func TestUnitOfWork_PendingDeleteIsFinal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	n := &note{BaseEntity: entity.NewBaseEntity()}
	tg := &tag{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	u.Insert(tg)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	u = units.New()
	u.Delete(n)
	u.Update(n)
	u.Delete(tg)
	u.Insert(tg)
	assert.Equal(t, 2, u.Pending())

	stats, err := u.Commit(ctx, actor2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SoftDeleted, "note keeps its delete")
	assert.Equal(t, 1, stats.Removed, "tag is removed, not re-inserted")
	assert.True(t, n.IsDeleted)
	_, ok := store.Get("tag", tg.ID)
	assert.False(t, ok)
}

func TestUnitOfWork_InsertAfterUpdateStaysModify(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	n := &note{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	u = units.New()
	u.Update(n)
	u.Insert(n)
	stats, err := u.Commit(ctx, actor2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Inserted)
	assert.Equal(t, actor1, n.CreatedBy)
	assert.Equal(t, actor2, *n.UpdatedBy)
}

func TestCommit_VersionConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	units := newFactory(store, &clock{now: t0})

	n := &note{BaseEntity: entity.NewBaseEntity()}
	u := units.New()
	u.Insert(n)
	_, err := u.Commit(ctx, actor1)
	require.NoError(t, err)

	stale := *n
	u = units.New()
	u.Update(n)
	_, err = u.Commit(ctx, actor1)
	require.NoError(t, err)
	assert.Equal(t, 2, n.Version)

	u = units.New()
	u.Update(&stale)
	_, err = u.Commit(ctx, actor2)
	require.Error(t, err)
}
