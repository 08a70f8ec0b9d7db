package postgres

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/domain/audit"
	"registrar/internal/metadata"
)

type room struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields
	Name  string `db:"name"`
	Seats int    `db:"seats"`
}

func (*room) EntityName() string { return "room" }

type label struct {
	entity.BaseEntity
	Text string `db:"text"`
}

func (*label) EntityName() string { return "label" }

func TestStatement_Insert(t *testing.T) {
	def := metadata.Describe[*room]("rooms", "Room")
	r := &room{BaseEntity: entity.NewBaseEntity(), Name: "A101", Seats: 30}

	stmt, err := Statement(def, &uow.Entry{Entity: r, Kind: uow.Insert})
	require.NoError(t, err)
	sql, args, err := stmt.ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO rooms (id,version,created_at,created_by,updated_at,updated_by,is_deleted,deleted_at,deleted_by,name,seats) VALUES ($1,"), sql)
	require.Len(t, args, 11)
	assert.Equal(t, r.ID, args[0])
	assert.Equal(t, "A101", args[9])
}

func TestStatement_UpdateSkipsImmutableAndLocksVersion(t *testing.T) {
	def := metadata.Describe[*room]("rooms", "Room")
	r := &room{BaseEntity: entity.NewBaseEntity(), Name: "B2"}
	r.Version = 4

	stmt, err := Statement(def, &uow.Entry{Entity: r, Kind: uow.Modify, SoftDeleted: true})
	require.NoError(t, err)
	sql, args, err := stmt.ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE rooms SET updated_at = $1, updated_by = $2, is_deleted = $3, deleted_at = $4, deleted_by = $5, name = $6, seats = $7, version = version + 1 WHERE id = $8 AND version = $9",
		sql)
	// squirrel.Eq resolves driver.Valuer, so ids arrive in string form.
	assert.Equal(t, r.ID.String(), args[7])
	assert.Equal(t, 4, args[8])
	assert.NotContains(t, sql, "created_at")
}

func TestStatement_Delete(t *testing.T) {
	def := metadata.Describe[*label]("labels", "Label")
	l := &label{BaseEntity: entity.NewBaseEntity()}

	stmt, err := Statement(def, &uow.Entry{Entity: l, Kind: uow.Delete})
	require.NoError(t, err)
	sql, args, err := stmt.ToSql()
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM labels WHERE id = $1", sql)
	assert.Equal(t, []any{l.ID.String()}, args)
}

func TestStatement_UnchangedIsRejected(t *testing.T) {
	def := metadata.Describe[*label]("labels", "Label")
	_, err := Statement(def, &uow.Entry{Entity: &label{}, Kind: uow.Unchanged})
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	dup := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "students_email_key",
		Detail:         "Key (email)=(ada@example.edu) already exists.",
	}
	err := MapError("student", "insert", dup)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	assert.Equal(t, "email", appErr.Details["field"])
	assert.Equal(t, "ada@example.edu", appErr.Details["value"])

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_course_id_fkey"}
	assert.True(t, apperror.HasCode(MapError("course", "delete", fk), apperror.CodeConflict))

	plain := MapError("course", "update", errors.New("broken pipe"))
	assert.False(t, apperror.IsAppError(plain))
	assert.Contains(t, plain.Error(), "update course")
}

func TestAuditLog_CompressesLargePayloads(t *testing.T) {
	log, err := NewAuditLog(nil, 64)
	require.NoError(t, err)

	big, err := json.Marshal(map[string]string{"notes": strings.Repeat("x", 500)})
	require.NoError(t, err)
	rec := audit.Record{
		ID:         id.New(),
		EntityType: "course",
		EntityID:   id.New(),
		Action:     audit.ActionUpdate,
		ActorID:    id.New(),
		Changes:    big,
		CreatedAt:  time.Now().UTC(),
	}

	row := log.encode(rec)
	assert.Equal(t, CompressionZstd, row.CompressionAlgo)
	assert.Nil(t, row.Changes)
	assert.Less(t, len(row.ChangesCompressed), len(big))

	back, err := log.decode(row)
	require.NoError(t, err)
	assert.JSONEq(t, string(big), string(back.Changes))

	small := rec
	small.Changes = json.RawMessage(`{"a":1}`)
	assert.Equal(t, CompressionNone, log.encode(small).CompressionAlgo)
}
