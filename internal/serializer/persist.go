package serializer

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Actor attribution columns. Entities that carry them are stamped on write.
const (
	CreatedByColumn  = "created_by_id"
	ModifiedByColumn = "modified_by_id"
)

// CreateModel is the default creation. Create hooks call it after adjusting data.
func (s *Serializer) CreateModel(data Payload) (any, error) {
	obj := s.entity.New()
	many, err := s.apply(obj, data)
	if err != nil {
		return nil, err
	}

	err = s.DB().Transaction(func(tx *gorm.DB) error {
		if err := s.stampCreated(obj); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(obj.Interface()).Error; err != nil {
			return err
		}
		return s.replaceMany(tx, obj, many)
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.entity.Name, err)
	}
	return s.reload(obj)
}

func (s *Serializer) updateModel(instance any, data Payload) (any, error) {
	obj := reflect.ValueOf(instance)
	if obj.Kind() != reflect.Pointer || obj.IsNil() || obj.Elem().Type() != s.entity.Schema.ModelType {
		return nil, fmt.Errorf("update %s: instance must be *%s, got %T", s.entity.Name, s.entity.Schema.ModelType, instance)
	}
	many, err := s.apply(obj, data)
	if err != nil {
		return nil, err
	}

	err = s.DB().Transaction(func(tx *gorm.DB) error {
		if err := s.stampModified(obj); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(obj.Interface()).Error; err != nil {
			return err
		}
		return s.replaceMany(tx, obj, many)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entity.Name, err)
	}
	return s.reload(obj)
}

// apply copies data onto the model behind obj. Many-relation ids are
// returned keyed by attribute; they can only be written once the row exists.
func (s *Serializer) apply(obj reflect.Value, data Payload) (map[string][]uint, error) {
	ctx := s.req.Ctx
	strct := reflect.Indirect(obj)
	many := make(map[string][]uint)
	ve := &ValidationError{}

	for name, v := range data {
		desc, ok := s.entity.Field(name)
		if !ok {
			s.Log().Debug("skip value without model field",
				zap.String("entity", s.entity.Name), zap.String("field", name))
			continue
		}
		switch desc.Kind {
		case KindRelationMany:
			ids, _ := v.([]uint)
			many[desc.Attr] = ids
		case KindRelation:
			rel := s.entity.Schema.Relationships.Relations[desc.Attr]
			fk := rel.References[0].ForeignKey
			if err := assign(fk.ReflectValueOf(ctx, strct), v); err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			// a stale association would win over the new key on reload
			s.entity.Schema.FieldsByName[desc.Attr].ReflectValueOf(ctx, strct).SetZero()
		default:
			field := s.entity.Schema.FieldsByName[desc.Attr]
			if err := assign(field.ReflectValueOf(ctx, strct), v); err != nil {
				msg := defaultMessages[MsgInvalid]
				if f, ok := s.Field(name); ok {
					msg = f.message(MsgInvalid)
				}
				ve.Add(name, msg)
			}
		}
	}
	if !ve.empty() {
		return nil, ve
	}
	return many, nil
}

func (s *Serializer) replaceMany(tx *gorm.DB, obj reflect.Value, many map[string][]uint) error {
	for attr, ids := range many {
		rel := s.entity.Schema.Relationships.Relations[attr]
		assoc := tx.Model(obj.Interface()).Association(attr)
		if len(ids) == 0 {
			if err := assoc.Clear(); err != nil {
				return fmt.Errorf("clear %s: %w", attr, err)
			}
			continue
		}
		pk := rel.FieldSchema.PrioritizedPrimaryField
		items := reflect.MakeSlice(reflect.SliceOf(reflect.PointerTo(rel.FieldSchema.ModelType)), 0, len(ids))
		for _, id := range ids {
			item := reflect.New(rel.FieldSchema.ModelType)
			if err := pk.Set(tx.Statement.Context, item, id); err != nil {
				return err
			}
			items = reflect.Append(items, item)
		}
		if err := assoc.Replace(items.Interface()); err != nil {
			return fmt.Errorf("replace %s: %w", attr, err)
		}
	}
	return nil
}

// stampCreated sets created_by to the authenticated actor unless already set.
func (s *Serializer) stampCreated(obj reflect.Value) error {
	field := s.entity.Schema.LookUpField(CreatedByColumn)
	if field == nil {
		return nil
	}
	strct := reflect.Indirect(obj)
	if _, zero := field.ValueOf(s.req.Ctx, strct); !zero {
		return nil
	}
	if !s.req.Actor.Authenticated {
		return nil
	}
	return assign(field.ReflectValueOf(s.req.Ctx, strct), s.req.Actor.ID)
}

// stampModified always overwrites modified_by; anonymous writes clear it.
func (s *Serializer) stampModified(obj reflect.Value) error {
	field := s.entity.Schema.LookUpField(ModifiedByColumn)
	if field == nil {
		return nil
	}
	var actor any
	if s.req.Actor.Authenticated {
		actor = s.req.Actor.ID
	}
	return assign(field.ReflectValueOf(s.req.Ctx, reflect.Indirect(obj)), actor)
}

func (s *Serializer) reload(obj reflect.Value) (any, error) {
	pk, _ := s.entity.Schema.PrioritizedPrimaryField.ValueOf(s.req.Ctx, reflect.Indirect(obj))
	out, err := s.engine.Fetch(s.req.Ctx, s.entity, pk)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("reload %s %v: %w", s.entity.Name, pk, gorm.ErrRecordNotFound)
	}
	return out, nil
}

// Query returns a query over entity with every declared relation preloaded.
// Many relations are ordered by primary key.
func (e *Engine) Query(ctx context.Context, entity *EntityInfo) *gorm.DB {
	q := e.DB.WithContext(ctx).Model(entity.New().Interface())
	for _, f := range entity.Fields {
		switch f.Kind {
		case KindRelation:
			q = q.Preload(f.Attr)
		case KindRelationMany:
			rel := entity.Schema.Relationships.Relations[f.Attr]
			order := rel.FieldSchema.PrioritizedPrimaryField.DBName
			q = q.Preload(f.Attr, func(db *gorm.DB) *gorm.DB { return db.Order(order) })
		}
	}
	return q
}

// Fetch loads one preloaded row by primary key. A missing row is (nil, nil).
func (e *Engine) Fetch(ctx context.Context, entity *EntityInfo, id any) (any, error) {
	obj := entity.New()
	pk := entity.Schema.PrioritizedPrimaryField
	err := e.Query(ctx, entity).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName}, Value: id}).
		Take(obj.Interface()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return obj.Interface(), nil
}

// assign stores v into dst, allocating pointers and converting between
// compatible kinds. nil zeroes dst.
func assign(dst reflect.Value, v any) error {
	if !dst.CanSet() {
		return fmt.Errorf("cannot set %s", dst.Type())
	}
	if v == nil {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(v)
	if dst.Kind() == reflect.Pointer && !src.Type().AssignableTo(dst.Type()) {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case convertible(src.Type(), dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}
	return nil
}

func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	// int to string conversion yields a rune, never what a payload means
	if to.Kind() == reflect.String {
		return from.Kind() == reflect.String
	}
	return true
}
