package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"registrar/internal/core/id"
)

type sample struct {
	BaseEntity
	AuditFields
	SoftDeleteFields
}

func TestSample_ImplementsCapabilities(t *testing.T) {
	var v any = &sample{}
	_, auditable := v.(Auditable)
	_, softDeletable := v.(SoftDeletable)
	assert.True(t, auditable)
	assert.True(t, softDeletable)
}

func TestAuditFields_Stamps(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	creator, editor := id.New(), id.New()

	var a AuditFields
	a.StampCreated(t0, creator)
	assert.Nil(t, a.UpdatedAt)
	assert.Nil(t, a.UpdatedBy)

	a.StampUpdated(t1, editor)
	assert.Equal(t, t0, a.CreatedAt)
	assert.Equal(t, creator, a.CreatedBy)
	assert.Equal(t, t1, *a.UpdatedAt)
	assert.Equal(t, editor, *a.UpdatedBy)
}

func TestSoftDeleteFields_MarkSetsAllFields(t *testing.T) {
	at := time.Now().UTC()
	actor := id.New()

	var s SoftDeleteFields
	assert.False(t, s.SoftDeleted())
	s.MarkSoftDeleted(at, actor)

	assert.True(t, s.SoftDeleted())
	assert.Equal(t, at, *s.DeletedAt)
	assert.Equal(t, actor, *s.DeletedBy)
}
