// Package validate turns untrusted input into validated entities.
//
// Input flows through three ordered steps: Normalize (trim strings, turn
// empty optional strings into nil), field constraints declared in `validate`
// struct tags, and cross-field refinements expressed in CEL.
package validate

import (
	"reflect"
	"strings"
)

// Normalize trims every string field of the struct pointed to by v and
// replaces empty optional (*string) fields with nil. Embedded structs are
// walked; other nested values are left alone.
func Normalize(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	normalizeStruct(rv.Elem())
}

func normalizeStruct(rv reflect.Value) {
	if rv.Kind() != reflect.Struct {
		return
	}
	t := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		sf := t.Field(i)
		if sf.Anonymous {
			normalizeStruct(field)
			continue
		}
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case reflect.Ptr:
			if field.IsNil() || field.Elem().Kind() != reflect.String {
				continue
			}
			trimmed := strings.TrimSpace(field.Elem().String())
			if trimmed == "" {
				field.Set(reflect.Zero(field.Type()))
				continue
			}
			field.Elem().SetString(trimmed)
		}
	}
}
