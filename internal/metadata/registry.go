// Package metadata describes persisted entities: their table, columns and
// capabilities. The store uses it to map tracked entities to SQL; the API
// exposes it at /api/v1/meta/entities.
package metadata

import (
	"fmt"
	"reflect"
	"sort"

	"registrar/internal/core/entity"
)

// FieldType defines the data type of a field.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeInteger   FieldType = "integer"
	TypeNumber    FieldType = "number"
	TypeBoolean   FieldType = "boolean"
	TypeDate      FieldType = "date"
	TypeReference FieldType = "reference"
)

// EntityDef describes a persisted entity type.
type EntityDef struct {
	Name      string     `json:"name"`
	Label     string     `json:"label,omitempty"`
	TableName string     `json:"-"`
	Columns   []string   `json:"-"`
	Fields    []FieldDef `json:"fields"`

	// Capabilities detected at registration.
	Auditable     bool `json:"auditable"`
	SoftDeletable bool `json:"softDeletable"`
}

// FieldDef describes a field.
type FieldDef struct {
	Name          string    `json:"name"`
	Column        string    `json:"-"`
	Type          FieldType `json:"type"`
	ReferenceType string    `json:"referenceType,omitempty"`
	Required      bool      `json:"required,omitempty"`
	ReadOnly      bool      `json:"readOnly,omitempty"`
	Nullable      bool      `json:"nullable,omitempty"`
	Scale         int       `json:"scale,omitempty"`
}

// HasColumn reports whether col is one of the entity's columns.
func (d EntityDef) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Describe builds the definition of T. T must be a pointer to a struct that
// implements entity.Persistable.
func Describe[T entity.Persistable](table, label string) EntityDef {
	var zero T
	t := reflect.TypeOf(zero)

	// zero is a typed nil pointer; instantiate it to ask for the name.
	inst := reflect.New(t.Elem()).Interface().(entity.Persistable)
	_, auditable := any(zero).(entity.Auditable)
	_, softDeletable := any(zero).(entity.SoftDeletable)

	return EntityDef{
		Name:          inst.EntityName(),
		Label:         label,
		TableName:     table,
		Columns:       ColumnsOf[T](),
		Fields:        inspectFields(t),
		Auditable:     auditable,
		SoftDeletable: softDeletable,
	}
}

// Registry stores entity definitions. It is filled at startup and read-only
// afterwards.
type Registry struct {
	entities map[string]EntityDef
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]EntityDef),
	}
}

func (r *Registry) Register(def EntityDef) {
	r.entities[def.Name] = def
}

func (r *Registry) Get(name string) (EntityDef, bool) {
	d, ok := r.entities[name]
	return d, ok
}

// MustGet panics on an unregistered entity; that is a wiring bug.
func (r *Registry) MustGet(name string) EntityDef {
	d, ok := r.entities[name]
	if !ok {
		panic(fmt.Sprintf("metadata: entity %q is not registered", name))
	}
	return d
}

// List returns definitions sorted by name.
func (r *Registry) List() []EntityDef {
	list := make([]EntityDef, 0, len(r.entities))
	for _, def := range r.entities {
		list = append(list, def)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
