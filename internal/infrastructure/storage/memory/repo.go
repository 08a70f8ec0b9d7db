package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/domain"
	"registrar/internal/domain/filter"
	"registrar/internal/metadata"
)

// Repo implements domain.Reader[T] over a Store.
type Repo[T entity.Persistable] struct {
	store      *Store
	def        metadata.EntityDef
	searchable []string
}

// NewRepo creates a reader for T. searchable columns are matched by
// ListFilter.Search.
func NewRepo[T entity.Persistable](store *Store, searchable ...string) *Repo[T] {
	return &Repo[T]{
		store:      store,
		def:        metadata.Describe[T]("", ""),
		searchable: searchable,
	}
}

var _ domain.Reader[entity.Persistable] = (*Repo[entity.Persistable])(nil)

func (r *Repo[T]) visible(row entity.Persistable, includeDeleted bool) bool {
	return includeDeleted || !r.def.SoftDeletable || isLive(row)
}

// GetByID implements domain.Reader.
func (r *Repo[T]) GetByID(_ context.Context, entityID id.ID) (T, error) {
	var zero T
	row, ok := r.store.Get(r.def.Name, entityID)
	if !ok || !r.visible(row, false) {
		return zero, apperror.NewNotFound(r.def.Name, entityID.String())
	}
	return row.(T), nil
}

// FindBy implements domain.Reader.
func (r *Repo[T]) FindBy(_ context.Context, column string, value any) (T, error) {
	var zero T
	if !r.def.HasColumn(column) {
		return zero, fmt.Errorf("invalid column: %s", column)
	}
	for _, row := range r.store.Rows(r.def.Name) {
		if r.visible(row, false) && equal(metadata.Values(row)[column], value) {
			return row.(T), nil
		}
	}
	return zero, apperror.NewNotFound(r.def.Name, value)
}

// Exists implements domain.Reader.
func (r *Repo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	_, err := r.GetByID(ctx, entityID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ExistsBy implements domain.Reader.
func (r *Repo[T]) ExistsBy(_ context.Context, column string, value any, excludeID id.ID) (bool, error) {
	if !r.def.HasColumn(column) {
		return false, fmt.Errorf("invalid column: %s", column)
	}
	for _, row := range r.store.Rows(r.def.Name) {
		if row.EntityID() == excludeID || !r.visible(row, false) {
			continue
		}
		if equal(metadata.Values(row)[column], value) {
			return true, nil
		}
	}
	return false, nil
}

// List implements domain.Reader.
func (r *Repo[T]) List(_ context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: f.Limit, Offset: f.Offset, Items: []T{}}

	ids := make(map[id.ID]bool, len(f.IDs))
	for _, v := range f.IDs {
		ids[v] = true
	}
	for _, item := range f.AdvancedFilters {
		if !r.def.HasColumn(item.Field) {
			return result, apperror.NewValidation("invalid filter column").WithDetail("field", item.Field)
		}
	}

	type candidate struct {
		row    T
		values map[string]any
	}
	var matched []candidate
	for _, row := range r.store.Rows(r.def.Name) {
		if !r.visible(row, f.IncludeDeleted) {
			continue
		}
		if len(ids) > 0 && !ids[row.EntityID()] {
			continue
		}
		values := metadata.Values(row)
		if f.Search != "" && !r.matchesSearch(values, f.Search) {
			continue
		}
		if !matchesAll(values, f.AdvancedFilters) {
			continue
		}
		matched = append(matched, candidate{row: row.(T), values: values})
	}

	if f.OrderBy != "" {
		field, desc := strings.TrimPrefix(strings.TrimPrefix(f.OrderBy, "-"), "+"), strings.HasPrefix(f.OrderBy, "-")
		if !r.def.HasColumn(field) {
			return result, apperror.NewValidation("invalid orderBy").WithDetail("orderBy", f.OrderBy)
		}
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].values[field], matched[j].values[field]
			if desc {
				return compare(b, a) < 0
			}
			return compare(a, b) < 0
		})
	}

	result.TotalCount = int64(len(matched))
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	for _, c := range matched {
		result.Items = append(result.Items, c.row)
	}
	return result, nil
}

func (r *Repo[T]) matchesSearch(values map[string]any, search string) bool {
	needle := strings.ToLower(search)
	for _, col := range r.searchable {
		if strings.Contains(strings.ToLower(fmt.Sprint(deref(values[col]))), needle) {
			return true
		}
	}
	return false
}

func matchesAll(values map[string]any, items []filter.Item) bool {
	for _, item := range items {
		v := deref(values[item.Field])
		switch item.Operator {
		case filter.Equal:
			if !equal(v, item.Value) {
				return false
			}
		case filter.NotEqual:
			if equal(v, item.Value) {
				return false
			}
		case filter.IsNull:
			if v != nil {
				return false
			}
		case filter.IsNotNull:
			if v == nil {
				return false
			}
		case filter.Contains:
			if !strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(item.Value))) {
				return false
			}
		case filter.InList:
			found := false
			for _, candidate := range toSlice(item.Value) {
				if equal(v, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case filter.Less:
			if compare(v, item.Value) >= 0 {
				return false
			}
		case filter.LessOrEqual:
			if compare(v, item.Value) > 0 {
				return false
			}
		case filter.Greater:
			if compare(v, item.Value) <= 0 {
				return false
			}
		case filter.GreaterOrEqual:
			if compare(v, item.Value) < 0 {
				return false
			}
		}
	}
	return true
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	case []any:
		return s
	default:
		return []any{v}
	}
}

func equal(a, b any) bool {
	return fmt.Sprint(deref(a)) == fmt.Sprint(deref(b))
}

// compare orders numbers numerically, times chronologically and everything
// else as strings. nil sorts first.
func compare(a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			return da.Cmp(db)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		if _, err := strconv.ParseFloat(n, 64); err != nil {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(n)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
