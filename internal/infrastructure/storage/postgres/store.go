package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/uow"
	"registrar/internal/domain/audit"
	"registrar/internal/metadata"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Store applies unit-of-work batches in one transaction. Tables and columns
// come from the metadata registry.
type Store struct {
	txManager *TxManager
	registry  *metadata.Registry
	audit     *AuditLog
}

var _ uow.Store = (*Store)(nil)

// NewStore creates a store. auditLog may be nil to skip history rows.
func NewStore(txManager *TxManager, registry *metadata.Registry, auditLog *AuditLog) *Store {
	return &Store{txManager: txManager, registry: registry, audit: auditLog}
}

// Apply implements uow.Store.
func (s *Store) Apply(ctx context.Context, batch uow.Batch) (uow.Stats, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, e := range batch.Entries {
			if err := s.applyEntry(ctx, e, batch.Stamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uow.Stats{}, err
	}

	// The rows now carry version+1; bring the tracked entities in line.
	for _, e := range batch.Entries {
		if e.Kind != uow.Modify {
			continue
		}
		if v, ok := e.Entity.(entity.Versioned); ok {
			v.SetVersion(v.GetVersion() + 1)
		}
	}
	return uow.Tally(batch.Entries), nil
}

func (s *Store) applyEntry(ctx context.Context, e *uow.Entry, stamp uow.Stamp) error {
	if e.Kind == uow.Unchanged {
		return nil
	}

	name := e.Entity.EntityName()
	def, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("entity %q is not registered", name)
	}

	stmt, err := Statement(def, e)
	if err != nil {
		return err
	}
	sql, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build %s %s: %w", e.Kind, name, err)
	}

	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(name, e.Kind.String(), err)
	}

	if tag.RowsAffected() == 0 {
		switch e.Kind {
		case uow.Modify:
			return apperror.NewConcurrentModification(name, e.Entity.EntityID().String())
		case uow.Delete:
			return apperror.NewNotFound(name, e.Entity.EntityID().String())
		}
	}

	if s.audit == nil {
		return nil
	}
	rec, err := audit.NewRecord(e, stamp)
	if err != nil {
		return fmt.Errorf("audit record: %w", err)
	}
	return s.audit.Write(ctx, rec)
}

// Statement builds the SQL for one post-pipeline entry:
//
//	insert  INSERT INTO t (cols...) VALUES (...)
//	modify  UPDATE t SET mutable cols..., version = version + 1 WHERE id AND version
//	delete  DELETE FROM t WHERE id
func Statement(def metadata.EntityDef, e *uow.Entry) (squirrel.Sqlizer, error) {
	values := metadata.Values(e.Entity)
	if len(values) == 0 {
		return nil, fmt.Errorf("entity %q has no db columns", def.Name)
	}

	switch e.Kind {
	case uow.Insert:
		vals := make([]any, len(def.Columns))
		for i, col := range def.Columns {
			vals[i] = values[col]
		}
		return builder().Insert(def.TableName).Columns(def.Columns...).Values(vals...), nil

	case uow.Modify:
		q := builder().Update(def.TableName)
		for _, col := range def.Columns {
			if _, immutable := entity.ImmutableColumns[col]; immutable {
				continue
			}
			q = q.Set(col, values[col])
		}
		q = q.Where(squirrel.Eq{"id": e.Entity.EntityID()})
		if v, ok := e.Entity.(entity.Versioned); ok {
			q = q.Set("version", squirrel.Expr("version + 1")).
				Where(squirrel.Eq{"version": v.GetVersion()})
		}
		return q, nil

	case uow.Delete:
		return builder().Delete(def.TableName).Where(squirrel.Eq{"id": e.Entity.EntityID()}), nil
	}
	return nil, fmt.Errorf("unsupported change kind %s", e.Kind)
}
