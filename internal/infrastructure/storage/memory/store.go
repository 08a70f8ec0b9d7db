// Package memory is an in-process uow.Store and reader set. It backs the
// test suites and the server's -memory development mode, and mirrors the
// PostgreSQL store's contract: whole-batch atomicity, optimistic locking,
// unique constraints and a change history.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/domain/audit"
	"registrar/internal/metadata"
)

type table struct {
	rows  map[id.ID]entity.Persistable
	order []id.ID
}

func newTable() *table {
	return &table{rows: make(map[id.ID]entity.Persistable)}
}

func (t *table) copy() *table {
	c := &table{
		rows:  make(map[id.ID]entity.Persistable, len(t.rows)),
		order: append([]id.ID(nil), t.order...),
	}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	return c
}

func (t *table) remove(key id.ID) {
	delete(t.rows, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// Store keeps rows per entity name. Stored rows are copies, so callers'
// entities and stored state diverge exactly as they would with a database.
type Store struct {
	mu       sync.RWMutex
	tables   map[string]*table
	removals map[string]int
	unique   map[string][][]string
	history  []audit.Record
	failNext error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		tables:   make(map[string]*table),
		removals: make(map[string]int),
		unique:   make(map[string][][]string),
	}
}

// Unique declares a unique constraint over columns of live rows.
func (s *Store) Unique(entityName string, columns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unique[entityName] = append(s.unique[entityName], columns)
}

// FailNext makes the next Apply return err without touching any row.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

var _ uow.Store = (*Store)(nil)

// Apply implements uow.Store.
func (s *Store) Apply(ctx context.Context, batch uow.Batch) (uow.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return uow.Stats{}, err
	}
	if err := s.failNext; err != nil {
		s.failNext = nil
		return uow.Stats{}, err
	}

	staged := make(map[string]*table)
	stage := func(name string) *table {
		if t, ok := staged[name]; ok {
			return t
		}
		t, ok := s.tables[name]
		if !ok {
			t = newTable()
		}
		t = t.copy()
		staged[name] = t
		return t
	}

	removed := make(map[string]int)
	records := make([]audit.Record, 0, len(batch.Entries))

	for _, e := range batch.Entries {
		name, key := e.Entity.EntityName(), e.Entity.EntityID()
		t := stage(name)
		current, exists := t.rows[key]

		switch e.Kind {
		case uow.Insert:
			if exists {
				return uow.Stats{}, apperror.NewDuplicate(name, "id", key.String())
			}
			t.rows[key] = clone(e.Entity)
			t.order = append(t.order, key)
		case uow.Modify:
			if !exists {
				return uow.Stats{}, apperror.NewNotFound(name, key.String())
			}
			next := clone(e.Entity)
			if v, ok := next.(entity.Versioned); ok {
				if v.GetVersion() != current.(entity.Versioned).GetVersion() {
					return uow.Stats{}, apperror.NewConcurrentModification(name, key.String())
				}
				v.SetVersion(v.GetVersion() + 1)
			}
			t.rows[key] = next
		case uow.Delete:
			if !exists {
				return uow.Stats{}, apperror.NewNotFound(name, key.String())
			}
			t.remove(key)
			removed[name]++
		default:
			continue
		}

		rec, err := audit.NewRecord(e, batch.Stamp)
		if err != nil {
			return uow.Stats{}, fmt.Errorf("audit record: %w", err)
		}
		records = append(records, rec)
	}

	for name, t := range staged {
		if err := s.checkUnique(name, t); err != nil {
			return uow.Stats{}, err
		}
	}

	for name, t := range staged {
		s.tables[name] = t
	}
	for name, n := range removed {
		s.removals[name] += n
	}
	s.history = append(s.history, records...)

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

func (s *Store) checkUnique(name string, t *table) error {
	for _, cols := range s.unique[name] {
		seen := make(map[string]bool, len(t.rows))
		for _, key := range t.order {
			row := t.rows[key]
			if !isLive(row) {
				continue
			}
			values := metadata.Values(row)
			k, null := "", false
			for _, c := range cols {
				v := deref(values[c])
				if v == nil {
					null = true
					break
				}
				k += fmt.Sprint(v) + "\x00"
			}
			if null {
				continue
			}
			if seen[k] {
				return apperror.NewDuplicate(name, cols[0], fmt.Sprint(deref(values[cols[0]])))
			}
			seen[k] = true
		}
	}
	return nil
}

// Get returns a copy of the stored row, soft-deleted rows included.
func (s *Store) Get(entityName string, key id.ID) (entity.Persistable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[entityName]
	if !ok {
		return nil, false
	}
	row, ok := t.rows[key]
	if !ok {
		return nil, false
	}
	return clone(row), true
}

// Rows returns copies of all rows in insertion order.
func (s *Store) Rows(entityName string) []entity.Persistable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[entityName]
	if !ok {
		return nil
	}
	rows := make([]entity.Persistable, 0, len(t.order))
	for _, key := range t.order {
		rows = append(rows, clone(t.rows[key]))
	}
	return rows
}

// Removals counts physical deletes applied for entityName.
func (s *Store) Removals(entityName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.removals[entityName]
}

// History implements audit.Reader.
func (s *Store) History(_ context.Context, entityType string, entityID id.ID, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Record
	for i := len(s.history) - 1; i >= 0; i-- {
		rec := s.history[i]
		if rec.EntityType != entityType || rec.EntityID != entityID {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func clone(p entity.Persistable) entity.Persistable {
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return p
	}
	c := reflect.New(v.Elem().Type())
	c.Elem().Set(v.Elem())
	return c.Interface().(entity.Persistable)
}

func isLive(row entity.Persistable) bool {
	sd, ok := row.(entity.SoftDeletable)
	return !ok || !sd.SoftDeleted()
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}
