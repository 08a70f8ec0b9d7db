package metadata

import (
	"reflect"
	"sync"
)

// ColumnsOf extracts column names from struct "db" tags, embedded structs
// included. It runs once per entity at registration.
//
//	cols := ColumnsOf[*course.Course]()
//	// ["id", "version", "created_at", ..., "code", "title"]
func ColumnsOf[T any]() []string {
	var zero T
	return columnsOfType(reflect.TypeOf(zero))
}

func columnsOfType(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOfType(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}

// fieldInfo is a pre-computed tagged field.
type fieldInfo struct {
	index int
	dbTag string
}

// typeMetadata is the cached reflection result for one struct type.
type typeMetadata struct {
	fields          []fieldInfo
	embeddedIndices []int
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

func metadataFor(t reflect.Type) *typeMetadata {
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			meta.embeddedIndices = append(meta.embeddedIndices, i)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag})
	}

	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

// Values converts a struct (or pointer to struct) into a column -> value map
// using "db" tags. Nil pointers and non-structs yield nil.
func Values(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	collectValues(rv, res)
	return res
}

func collectValues(rv reflect.Value, res map[string]any) {
	meta := metadataFor(rv.Type())
	for _, fi := range meta.fields {
		res[fi.dbTag] = rv.Field(fi.index).Interface()
	}
	for _, idx := range meta.embeddedIndices {
		emb := rv.Field(idx)
		if emb.Kind() == reflect.Ptr {
			if emb.IsNil() {
				continue
			}
			emb = emb.Elem()
		}
		if emb.Kind() == reflect.Struct {
			collectValues(emb, res)
		}
	}
}
