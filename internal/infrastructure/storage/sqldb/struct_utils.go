package sqldb

import (
	"fmt"
	"reflect"
	"sync"
)

// column is a `db`-tagged field reached through an index path, so fields of
// embedded structs (entity.Audited) are addressed directly.
type column struct {
	name  string
	index []int
}

// Global cache for type metadata (thread-safe).
var typeCache sync.Map // map[reflect.Type][]column

// columnsOf returns the flattened, cached column list of a struct type.
// Reflection runs once per type.
func columnsOf(t reflect.Type) []column {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		cols = collectColumns(t, nil)
	}
	typeCache.Store(t, cols)
	return cols
}

func collectColumns(t reflect.Type, prefix []int) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Tag.Get("db") == "" {
			cols = append(cols, collectColumns(field.Type, path)...)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" || !field.IsExported() {
			continue
		}
		cols = append(cols, column{name: tag, index: path})
	}
	return cols
}

// ExtractDBColumns extracts all column names from struct "db" tags,
// embedded structs first in declaration order.
//
// Usage:
//
//	columns := ExtractDBColumns[client.Client]()
//	// Returns: ["pubId", "createdAt", ..., "clientName", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	cols := columnsOf(reflect.TypeOf(zero))
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// StructToMap converts a struct to a map using "db" tags.
// It only includes fields that have a "db" tag and are not ignored ("-").
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}

// FieldPointers returns scan destinations for names, in order, pointing into
// the struct behind ptr.
func FieldPointers(ptr any, names []string) ([]any, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, fmt.Errorf("field pointers: need a non-nil pointer, got %T", ptr)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("field pointers: %T does not point to a struct", ptr)
	}

	byName := make(map[string][]int)
	for _, c := range columnsOf(rv.Type()) {
		byName[c.name] = c.index
	}

	out := make([]any, len(names))
	for i, name := range names {
		idx, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("field pointers: %s has no column %q", rv.Type(), name)
		}
		out[i] = rv.FieldByIndex(idx).Addr().Interface()
	}
	return out, nil
}
