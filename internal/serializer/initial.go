package serializer

import (
	"fmt"
	"reflect"
	"time"

	"github.com/hirehub/core/internal/pkg/phone"
	"go.uber.org/zap"
)

// PasswordField is never exposed, whatever the instance holds.
const PasswordField = "password"

// PrimaryKeyer is implemented by every persisted model.
type PrimaryKeyer interface {
	PK() uint
}

// Initial is the current-state snapshot of the bound instance over "id" and
// the declared fields. In create mode every value is nil.
func (s *Serializer) Initial() map[string]any {
	names := make([]string, 0, len(s.def.Fields)+1)
	names = append(names, "id")
	for _, name := range s.def.Fields {
		if name != "id" {
			names = append(names, name)
		}
	}
	return s.resolve(names)
}

func (s *Serializer) resolve(names []string) map[string]any {
	out := make(map[string]any, len(names))
	for _, name := range names {
		v, err := s.initialValue(name)
		if err != nil {
			s.Log().Warn("resolve initial value",
				zap.String("serializer", s.def.Name),
				zap.String("field", name),
				zap.Error(err))
			v = nil
		}
		out[name] = v
	}
	if _, ok := out[PasswordField]; ok {
		out[PasswordField] = nil
	}
	return out
}

func (s *Serializer) initialValue(name string) (any, error) {
	if isNil(s.instance) {
		return nil, nil
	}
	if fn, ok := s.def.Computed[name]; ok {
		return fn(s, s.instance)
	}

	strct := reflect.Indirect(reflect.ValueOf(s.instance))
	if strct.Type() != s.entity.Schema.ModelType {
		return nil, fmt.Errorf("instance is %s, want %s", strct.Type(), s.entity.Schema.ModelType)
	}

	desc, ok := s.entity.Field(name)
	if !ok {
		// undeclared attributes still resolve through the gorm schema
		field := s.entity.Schema.LookUpField(name)
		if name == "id" {
			field = s.entity.Schema.PrioritizedPrimaryField
		}
		if field == nil {
			return nil, fmt.Errorf("no attribute %s on %s", name, s.entity.Name)
		}
		return plain(collapse(field.ReflectValueOf(s.req.Ctx, strct).Interface())), nil
	}

	field := s.entity.Schema.FieldsByName[desc.Attr]
	raw := field.ReflectValueOf(s.req.Ctx, strct).Interface()

	switch desc.Kind {
	case KindRelation:
		return s.initialRelation(desc, strct, raw)
	case KindFile, KindImage:
		key, _ := plain(raw).(string)
		return s.fileURL(key), nil
	case KindRelationMany:
		return primaryKeys(raw), nil
	case KindPhone:
		return phoneText(raw), nil
	}

	v := plain(collapse(raw))
	if t, ok := v.(time.Time); ok && desc.Type == TypeDate {
		return t.Format(time.DateOnly), nil
	}
	return v, nil
}

// initialRelation collapses a single relation to its key, or to
// {id, <file field>, url} when the target stores a file.
func (s *Serializer) initialRelation(desc Field, strct reflect.Value, raw any) (any, error) {
	related, err := s.Registry().Entity(desc.Related)
	if err != nil {
		return nil, err
	}

	target := raw
	if isNil(target) {
		rel := s.entity.Schema.Relationships.Relations[desc.Attr]
		fk := plain(rel.References[0].ForeignKey.ReflectValueOf(s.req.Ctx, strct).Interface())
		if fk == nil || fk == uint(0) {
			return nil, nil
		}
		if !related.FileCarrying() {
			return fk, nil
		}
		target, err = s.engine.Fetch(s.req.Ctx, related, fk)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, nil
		}
	}

	if !related.FileCarrying() {
		return collapse(target), nil
	}
	fileField, _ := related.Field(related.FileField)
	key, _ := plain(related.Schema.FieldsByName[fileField.Attr].
		ReflectValueOf(s.req.Ctx, reflect.Indirect(reflect.ValueOf(target))).Interface()).(string)
	url := s.fileURL(key)
	return map[string]any{
		"id":              collapse(target),
		related.FileField: url,
		"url":             url,
	}, nil
}

func (s *Serializer) fileURL(key string) any {
	if key == "" {
		return nil
	}
	if s.engine.Files == nil {
		return key
	}
	return s.engine.Files.URL(key)
}

// collapse replaces a model with its primary key.
func collapse(v any) any {
	if isNil(v) {
		return nil
	}
	if pk, ok := v.(PrimaryKeyer); ok {
		return pk.PK()
	}
	return v
}

func primaryKeys(v any) []uint {
	ids := []uint{}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return ids
	}
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.Kind() != reflect.Pointer && item.CanAddr() {
			item = item.Addr()
		}
		if pk, ok := collapse(item.Interface()).(uint); ok {
			ids = append(ids, pk)
		}
	}
	return ids
}

func phoneText(v any) any {
	switch n := v.(type) {
	case phone.Number:
		if n.IsZero() {
			return nil
		}
		return n.Raw
	case *phone.Number:
		if n == nil || n.IsZero() {
			return nil
		}
		return n.Raw
	case string:
		if n == "" {
			return nil
		}
		return n
	}
	return nil
}

// plain dereferences pointers; a nil pointer is nil.
func plain(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
