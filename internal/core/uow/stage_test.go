package uow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

type row struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields
}

func (*row) EntityName() string { return "row" }

func TestSoftDeleteStage_ConvertsOnlyDeletes(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	actor := id.New()

	del := &Entry{Entity: &row{}, Kind: Delete}
	ins := &Entry{Entity: &row{}, Kind: Insert}
	SoftDeleteStage{}.Apply(NewChangeSet(del, ins), Stamp{Actor: actor, Now: now})

	assert.Equal(t, Modify, del.Kind)
	assert.True(t, del.SoftDeleted)
	r := del.Entity.(*row)
	assert.True(t, r.IsDeleted)
	assert.Equal(t, now, *r.DeletedAt)
	assert.Equal(t, actor, *r.DeletedBy)
	assert.Nil(t, r.UpdatedAt, "audit fields belong to the audit stage")

	assert.Equal(t, Insert, ins.Kind)
	assert.False(t, ins.Entity.(*row).IsDeleted)
}

func TestAuditStage_LeavesUnchangedAndDeletes(t *testing.T) {
	stamp := Stamp{Actor: id.New(), Now: time.Now().UTC()}

	unchanged := &Entry{Entity: &row{}, Kind: Unchanged}
	del := &Entry{Entity: &row{}, Kind: Delete}
	AuditStage{}.Apply(NewChangeSet(unchanged, del), stamp)

	for _, e := range []*Entry{unchanged, del} {
		r := e.Entity.(*row)
		assert.True(t, r.CreatedAt.IsZero())
		assert.Nil(t, r.UpdatedAt)
	}
}

func TestPipeline_SharesOneStamp(t *testing.T) {
	calls := 0
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	p := NewPipeline(func() time.Time { calls++; return fixed }, SoftDeleteStage{}, AuditStage{})

	e := &Entry{Entity: &row{}, Kind: Delete}
	stamp := p.Run(context.Background(), NewChangeSet(e), id.New())

	assert.Equal(t, 1, calls)
	assert.Equal(t, time.UTC, stamp.Now.Location())
	r := e.Entity.(*row)
	assert.Equal(t, *r.DeletedAt, *r.UpdatedAt)
}

func TestTally(t *testing.T) {
	s := Tally([]*Entry{
		{Kind: Insert},
		{Kind: Modify},
		{Kind: Modify, SoftDeleted: true},
		{Kind: Delete},
		{Kind: Unchanged},
	})
	assert.Equal(t, Stats{Inserted: 1, Updated: 1, SoftDeleted: 1, Removed: 1}, s)
}
