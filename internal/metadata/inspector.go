package metadata

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"registrar/internal/core/id"
)

var (
	idType      = reflect.TypeOf(id.ID{})
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// inspectFields flattens exported fields (embedded structs included) into
// field definitions for the metadata endpoint.
func inspectFields(t reflect.Type) []FieldDef {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	fields := make([]FieldDef, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		if field.Anonymous {
			fields = append(fields, inspectFields(field.Type)...)
			continue
		}

		fDef := FieldDef{
			Name:     jsonName(field),
			Column:   field.Tag.Get("db"),
			Required: isRequired(field),
			ReadOnly: isReadOnly(field),
		}
		if fDef.Name == "-" {
			continue
		}
		mapFieldType(&fDef, field)
		fields = append(fields, fDef)
	}
	return fields
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		def.Nullable = true
	}

	switch t {
	case idType:
		def.Type = TypeReference
		// "CourseID" -> "course"
		if name := field.Name; strings.HasSuffix(name, "ID") && name != "ID" {
			def.ReferenceType = strings.ToLower(strings.TrimSuffix(name, "ID"))
		}
		return
	case timeType:
		def.Type = TypeDate
		return
	case decimalType:
		def.Type = TypeNumber
		def.Scale = 2
		return
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
	case reflect.Bool:
		def.Type = TypeBoolean
	default:
		def.Type = TypeString
	}
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}
	runes := []rune(field.Name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func isRequired(field reflect.StructField) bool {
	if tag, ok := field.Tag.Lookup("binding"); ok {
		return strings.Contains(tag, "required")
	}
	return false
}

// Fields written by the store or the save pipeline.
var readOnlyFields = map[string]bool{
	"ID": true, "Version": true,
	"CreatedAt": true, "CreatedBy": true, "UpdatedAt": true, "UpdatedBy": true,
	"IsDeleted": true, "DeletedAt": true, "DeletedBy": true,
}

func isReadOnly(field reflect.StructField) bool {
	return readOnlyFields[field.Name]
}
