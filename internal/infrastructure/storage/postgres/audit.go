package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"registrar/internal/core/id"
	"registrar/internal/domain/audit"
)

// CompressionAlgo names how sys_audit.changes_compressed is encoded.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const auditTable = "sys_audit"

// DefaultCompressThreshold is the payload size above which changes are
// stored zstd-compressed.
const DefaultCompressThreshold = 8 * 1024

// auditRow is the sys_audit row layout.
type auditRow struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            audit.Action    `db:"action"`
	ActorID           id.ID           `db:"actor_id"`
	Changes           []byte          `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditLog writes and reads the change history.
type AuditLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Reader = (*AuditLog)(nil)

// NewAuditLog creates an audit log. threshold <= 0 selects the default.
func NewAuditLog(txManager *TxManager, threshold int) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	return &AuditLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: threshold,
	}, nil
}

// encode builds the row for rec, compressing large payloads.
func (l *AuditLog) encode(rec audit.Record) auditRow {
	row := auditRow{
		ID:              rec.ID,
		EntityType:      rec.EntityType,
		EntityID:        rec.EntityID,
		Action:          rec.Action,
		ActorID:         rec.ActorID,
		Changes:         rec.Changes,
		CompressionAlgo: CompressionNone,
		CreatedAt:       rec.CreatedAt,
	}
	if len(rec.Changes) > l.compressThreshold {
		row.ChangesCompressed = l.encoder.EncodeAll(rec.Changes, nil)
		row.Changes = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row
}

func (l *AuditLog) decode(row auditRow) (audit.Record, error) {
	rec := audit.Record{
		ID:         row.ID,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		Action:     row.Action,
		ActorID:    row.ActorID,
		Changes:    row.Changes,
		CreatedAt:  row.CreatedAt,
	}
	if row.CompressionAlgo == CompressionZstd && len(row.ChangesCompressed) > 0 {
		raw, err := l.decoder.DecodeAll(row.ChangesCompressed, nil)
		if err != nil {
			return rec, fmt.Errorf("decompress changes: %w", err)
		}
		rec.Changes = raw
	}
	return rec, nil
}

func (l *AuditLog) insertStatement(rec audit.Record) squirrel.InsertBuilder {
	row := l.encode(rec)
	return builder().
		Insert(auditTable).
		Columns("id", "entity_type", "entity_id", "action", "actor_id",
			"changes", "changes_compressed", "compression_algo", "created_at").
		Values(row.ID, row.EntityType, row.EntityID, row.Action, row.ActorID,
			row.Changes, row.ChangesCompressed, row.CompressionAlgo, row.CreatedAt)
}

// Write appends rec using the transaction in ctx, if any.
func (l *AuditLog) Write(ctx context.Context, rec audit.Record) error {
	sql, args, err := l.insertStatement(rec).ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := l.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// History implements audit.Reader.
func (l *AuditLog) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Record, error) {
	q := builder().
		Select("id", "entity_type", "entity_id", "action", "actor_id",
			"changes", "changes_compressed", "compression_algo", "created_at").
		From(auditTable).
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, l.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	out := make([]audit.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := l.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
