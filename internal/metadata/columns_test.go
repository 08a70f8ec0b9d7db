package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

type mockRow struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields
	Code  string `db:"code" json:"code"`
	Note  string `json:"note"`
	Skip  string `db:"-" json:"-"`
	OwnerID *id.ID `db:"owner_id" json:"ownerId,omitempty"`
}

func (m *mockRow) EntityName() string { return "mock_row" }

type plainRow struct {
	entity.BaseEntity
	Value int `db:"value"`
}

func (p *plainRow) EntityName() string { return "plain_row" }

func TestColumnsOf_FlattensEmbedded(t *testing.T) {
	cols := ColumnsOf[*mockRow]()

	for _, expected := range []string{
		"id", "version", "created_at", "created_by", "updated_at", "updated_by",
		"is_deleted", "deleted_at", "deleted_by", "code", "owner_id",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, 11)
}

func TestValues_ReadsEmbeddedFields(t *testing.T) {
	now := time.Now().UTC()
	actor := id.New()
	row := &mockRow{
		BaseEntity: entity.BaseEntity{ID: id.New(), Version: 3},
		Code:       "CS101",
	}
	row.MarkSoftDeleted(now, actor)

	m := Values(row)

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, 3, m["version"])
	assert.Equal(t, true, m["is_deleted"])
	assert.Equal(t, &now, m["deleted_at"])
	assert.Equal(t, "CS101", m["code"])
	assert.NotContains(t, m, "note")
}

func TestValues_NilPointer(t *testing.T) {
	var row *mockRow
	assert.Nil(t, Values(row))
	assert.Nil(t, Values(42))
}

func TestDescribe_DetectsCapabilities(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Describe[*mockRow]("mock_rows", "Mock"))
	reg.Register(Describe[*plainRow]("plain_rows", "Plain"))

	mock := reg.MustGet("mock_row")
	assert.Equal(t, "mock_rows", mock.TableName)
	assert.True(t, mock.Auditable)
	assert.True(t, mock.SoftDeletable)
	assert.True(t, mock.HasColumn("owner_id"))

	plain := reg.MustGet("plain_row")
	assert.False(t, plain.Auditable)
	assert.False(t, plain.SoftDeletable)

	names := make([]string, 0)
	for _, d := range reg.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"mock_row", "plain_row"}, names)

	_, ok := reg.Get("missing")
	require.False(t, ok)
	assert.Panics(t, func() { reg.MustGet("missing") })
}

func TestDescribe_FieldTypes(t *testing.T) {
	def := Describe[*mockRow]("mock_rows", "")
	byName := make(map[string]FieldDef)
	for _, f := range def.Fields {
		byName[f.Name] = f
	}

	assert.Equal(t, TypeReference, byName["ownerId"].Type)
	assert.Equal(t, "owner", byName["ownerId"].ReferenceType)
	assert.True(t, byName["ownerId"].Nullable)
	assert.True(t, byName["createdAt"].ReadOnly)
	assert.Equal(t, TypeDate, byName["createdAt"].Type)
	assert.NotContains(t, byName, "-")
}
