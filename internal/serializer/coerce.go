package serializer

import (
	"reflect"
	"time"

	"github.com/hirehub/core/internal/pkg/phone"
)

// Payload is validated, coerced input keyed by field name.
type Payload map[string]any

// NormalizeEmpty replaces every falsy value with nil, except explicit false,
// numeric zero and empty lists, which are legitimate input.
func NormalizeEmpty(p Payload) Payload {
	for k, v := range p {
		if isFalsy(v) && !isPreservedFalsy(v) {
			p[k] = nil
		}
	}
	return p
}

func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case time.Time:
		return false
	case phone.Number:
		return t.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isPreservedFalsy(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Slice, reflect.Array:
		return true
	}
	return false
}
