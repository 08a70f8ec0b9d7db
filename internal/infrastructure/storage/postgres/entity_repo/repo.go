// Package entity_repo provides the PostgreSQL reader shared by every entity.
// Writes go through the unit-of-work; this package only reads.
package entity_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/domain"
	"registrar/internal/domain/filter"
	"registrar/internal/infrastructure/storage/postgres"
	"registrar/internal/metadata"
)

// Repo implements domain.Reader[T] with squirrel and scany.
type Repo[T entity.Persistable] struct {
	txManager  *postgres.TxManager
	def        metadata.EntityDef
	searchable []string
	newFn      func() T
	defaultOrd string
}

var _ domain.Reader[entity.Persistable] = (*Repo[entity.Persistable])(nil)

// Config describes one reader.
type Config[T entity.Persistable] struct {
	Def          metadata.EntityDef
	Searchable   []string
	DefaultOrder string // e.g. "code ASC"; falls back to "id ASC"
	New          func() T
}

// New creates a reader for T.
func New[T entity.Persistable](txManager *postgres.TxManager, cfg Config[T]) *Repo[T] {
	order := cfg.DefaultOrder
	if order == "" {
		order = "id ASC"
	}
	return &Repo[T]{
		txManager:  txManager,
		def:        cfg.Def,
		searchable: cfg.Searchable,
		newFn:      cfg.New,
		defaultOrd: order,
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *Repo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.def.Columns...).
		From(r.def.TableName)
}

// live restricts soft-deletable tables to rows that are not flagged.
func (r *Repo[T]) live(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if r.def.SoftDeletable {
		return q.Where(squirrel.Eq{"is_deleted": false})
	}
	return q
}

func (r *Repo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// GetByID implements domain.Reader.
func (r *Repo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	out, err := r.findOne(ctx, r.live(r.baseSelect()).Where(squirrel.Eq{"id": entityID}).Limit(1))
	if apperror.IsNotFound(err) {
		return out, apperror.NewNotFound(r.def.Name, entityID.String())
	}
	return out, err
}

// FindBy implements domain.Reader.
func (r *Repo[T]) FindBy(ctx context.Context, column string, value any) (T, error) {
	if !r.def.HasColumn(column) {
		var zero T
		return zero, fmt.Errorf("invalid column: %s", column)
	}
	out, err := r.findOne(ctx, r.live(r.baseSelect()).Where(squirrel.Eq{column: value}).Limit(1))
	if apperror.IsNotFound(err) {
		return out, apperror.NewNotFound(r.def.Name, value)
	}
	return out, err
}

func (r *Repo[T]) findOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	out := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return out, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return out, apperror.NewNotFound(r.def.Name, "")
		}
		return out, fmt.Errorf("get %s: %w", r.def.Name, err)
	}
	return out, nil
}

// List implements domain.Reader.
func (r *Repo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: f.Limit, Offset: f.Offset, Items: []T{}}

	q, err := r.filtered(f)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.def.Name, err)
	}
	return result, nil
}

// filtered applies everything in f except ordering and pagination.
func (r *Repo[T]) filtered(f domain.ListFilter) (squirrel.SelectBuilder, error) {
	q := r.baseSelect()
	if !f.IncludeDeleted {
		q = r.live(q)
	}
	if f.Search != "" && len(r.searchable) > 0 {
		pattern := "%" + f.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchable))
		for _, col := range r.searchable {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}
	return r.applyAdvancedFilters(q, f.AdvancedFilters)
}

func (r *Repo[T]) applyAdvancedFilters(q squirrel.SelectBuilder, items []filter.Item) (squirrel.SelectBuilder, error) {
	for _, item := range items {
		// Column names are interpolated into SQL; only known columns pass.
		if !r.def.HasColumn(item.Field) {
			return q, apperror.NewValidation("invalid filter column").WithDetail("field", item.Field)
		}

		switch item.Operator {
		case filter.Equal, filter.InList:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotEqual:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{item.Field: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{item.Field: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{item.Field: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{item.Field: item.Value})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{item.Field: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{item.Field: nil})
		case filter.Contains:
			q = q.Where(squirrel.ILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		}
	}
	return q, nil
}

// Exists implements domain.Reader.
func (r *Repo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"id": entityID})
}

// ExistsBy implements domain.Reader.
func (r *Repo[T]) ExistsBy(ctx context.Context, column string, value any, excludeID id.ID) (bool, error) {
	if !r.def.HasColumn(column) {
		return false, fmt.Errorf("invalid column: %s", column)
	}
	cond := squirrel.And{squirrel.Eq{column: value}}
	if !id.IsNil(excludeID) {
		cond = append(cond, squirrel.NotEq{"id": excludeID})
	}
	return r.exists(ctx, cond)
}

func (r *Repo[T]) exists(ctx context.Context, cond squirrel.Sqlizer) (bool, error) {
	q := r.live(r.Builder().Select("1").From(r.def.TableName)).Where(cond).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.def.Name, err)
	}
	return true, nil
}

func (r *Repo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return r.defaultOrd, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" || !r.def.HasColumn(field) {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	return field + " " + direction, nil
}
