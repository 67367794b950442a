// Package serializer sits between persisted entities and HTTP bodies. It
// validates and coerces write payloads, persists them with actor stamping,
// and describes entities to front ends as render config plus initial values.
//
// Read and write responsibilities never mix: every serializer is built from a
// Definition tagged with a Variant whose Capabilities are checked before any
// create or update is dispatched.
package serializer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Variant tags what a serializer may do.
type Variant int

const (
	// VariantModel is the base write serializer: create and update.
	VariantModel Variant = iota
	VariantCreate
	VariantUpdate
	VariantReadOnly
)

func (v Variant) String() string {
	switch v {
	case VariantCreate:
		return "create"
	case VariantUpdate:
		return "update"
	case VariantReadOnly:
		return "read_only"
	default:
		return "model"
	}
}

// Capabilities is the explicit flag set behind a Variant.
type Capabilities struct {
	CanCreate bool
	CanUpdate bool
	CanRead   bool
}

func (v Variant) Capabilities() Capabilities {
	switch v {
	case VariantCreate:
		return Capabilities{CanCreate: true}
	case VariantUpdate:
		return Capabilities{CanUpdate: true}
	case VariantReadOnly:
		return Capabilities{CanRead: true}
	default:
		return Capabilities{CanCreate: true, CanUpdate: true}
	}
}

// Actor is the user behind the current request.
type Actor struct {
	ID            uint
	Authenticated bool
}

// Anonymous is the actor of unauthenticated requests.
func Anonymous() Actor { return Actor{} }

// UserActor is an authenticated actor.
func UserActor(id uint) Actor { return Actor{ID: id, Authenticated: id != 0} }

// Request carries per-request state into a serializer.
type Request struct {
	Ctx     context.Context
	Actor   Actor
	Partial bool
}

// FileURLer resolves stored file keys to public URLs.
type FileURLer interface {
	URL(key string) string
}

// Engine holds the process-wide collaborators shared by all serializers.
type Engine struct {
	Registry *Registry
	DB       *gorm.DB
	Files    FileURLer
	Log      *zap.Logger
}

// Definition declares a serializer: which entity, which fields, which variant.
type Definition struct {
	Name    string
	Entity  string
	Variant Variant
	// Fields is the declared field order; it drives validation, render
	// config and initial values.
	Fields []string
	Extra  map[string]FieldOptions

	// Meta returns the free-form "meta" object of the meta endpoints.
	Meta func(s *Serializer) (map[string]any, error)
	// Validate runs after field validation, like an object-level validator.
	Validate func(s *Serializer, attrs Payload) (Payload, error)
	// Create replaces the default model creation.
	Create func(s *Serializer, data Payload) (any, error)
	// Computed supplies values of virtual fields with no model attribute.
	Computed map[string]func(s *Serializer, instance any) (any, error)
}

// MetaPayload is the body of the create/update meta endpoints.
type MetaPayload struct {
	Meta         map[string]any `json:"meta"`
	Initial      map[string]any `json:"initial"`
	RenderConfig []RenderField  `json:"render_config"`
}

// Serializer is a Definition bound to one request and, optionally, one
// entity instance. It is not safe for concurrent use.
type Serializer struct {
	def         *Definition
	engine      *Engine
	entity      *EntityInfo
	fields      []*FormField
	req         Request
	instance    any
	initialData map[string]any
	validated   Payload
}

// Bind builds a serializer for def. instance is nil in create mode.
func (e *Engine) Bind(def *Definition, req Request, instance any) (*Serializer, error) {
	entity, err := e.Registry.Entity(def.Entity)
	if err != nil {
		return nil, fmt.Errorf("serializer %s: %w", def.Name, err)
	}
	if req.Ctx == nil {
		req.Ctx = context.Background()
	}
	s := &Serializer{def: def, engine: e, entity: entity, req: req, instance: instance}

	// write serializers require every declared field unless told otherwise
	required := def.Variant != VariantReadOnly
	for _, name := range def.Fields {
		desc, ok := entity.Field(name)
		if !ok {
			desc = unknownField(name)
		}
		s.fields = append(s.fields, newFormField(name, desc, required, def.Extra[name]))
	}
	NormalizeMessages(s.fields)
	return s, nil
}

// MustBind is Bind for definitions known to be registered.
func (e *Engine) MustBind(def *Definition, req Request, instance any) *Serializer {
	s, err := e.Bind(def, req, instance)
	if err != nil {
		panic(err)
	}
	return s
}

func (e *Engine) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (s *Serializer) Definition() *Definition { return s.def }
func (s *Serializer) Entity() *EntityInfo { return s.entity }
func (s *Serializer) Capabilities() Capabilities { return s.def.Variant.Capabilities() }
func (s *Serializer) Fields() []*FormField { return s.fields }
func (s *Serializer) Instance() any { return s.instance }
func (s *Serializer) Request() Request { return s.req }
func (s *Serializer) Actor() Actor { return s.req.Actor }
func (s *Serializer) Context() context.Context { return s.req.Ctx }
func (s *Serializer) InitialData() map[string]any { return s.initialData }
func (s *Serializer) DB() *gorm.DB { return s.engine.DB.WithContext(s.req.Ctx) }
func (s *Serializer) Log() *zap.Logger { return s.engine.logger() }
func (s *Serializer) Registry() *Registry { return s.engine.Registry }

// Field returns the built serializer field by name.
func (s *Serializer) Field(name string) (*FormField, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// InitialValue fetches a raw inbound value only when it has the expected
// type; a missing or mistyped value reports false.
func InitialValue[T any](s *Serializer, key string) (T, bool) {
	var zero T
	raw, ok := s.initialData[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Validate runs field validation, empty-value normalization and the
// definition's object-level hook. On success the payload is kept for Save.
func (s *Serializer) Validate(data map[string]any) (Payload, error) {
	s.initialData = data
	s.validated = nil

	attrs, err := s.toInternal(data)
	if err != nil {
		return nil, err
	}
	if s.def.Validate != nil {
		attrs, err = s.def.Validate(s, attrs)
		if err != nil {
			return nil, err
		}
	}
	s.validated = attrs
	return attrs, nil
}

// ValidatedData returns the payload accepted by Validate.
func (s *Serializer) ValidatedData() Payload { return s.validated }

// Save creates when no instance is bound and updates otherwise.
func (s *Serializer) Save() (any, error) {
	if s.validated == nil {
		return nil, ErrNotValidated
	}
	var (
		out any
		err error
	)
	if s.instance == nil {
		out, err = s.Create(s.validated)
	} else {
		out, err = s.Update(s.instance, s.validated)
	}
	if err != nil {
		return nil, err
	}
	s.instance = out
	return out, nil
}

// Create persists a new entity from data.
func (s *Serializer) Create(data Payload) (any, error) {
	if !s.Capabilities().CanCreate {
		return nil, fmt.Errorf("%w: %s serializer %s cannot create", ErrUnsupportedOperation, s.def.Variant, s.def.Name)
	}
	if s.def.Create != nil {
		return s.def.Create(s, data)
	}
	return s.CreateModel(data)
}

// Update applies data to instance and persists it.
func (s *Serializer) Update(instance any, data Payload) (any, error) {
	if !s.Capabilities().CanUpdate {
		return nil, fmt.Errorf("%w: %s serializer %s cannot update", ErrUnsupportedOperation, s.def.Variant, s.def.Name)
	}
	return s.updateModel(instance, data)
}

// Representation is the outbound body. Write serializers never echo input:
// they answer with the current state of the saved instance.
func (s *Serializer) Representation() map[string]any {
	if s.Capabilities().CanRead {
		return s.resolve(s.def.Fields)
	}
	return s.Initial()
}

// Meta returns the definition's meta object, empty by default.
func (s *Serializer) Meta() (map[string]any, error) {
	if s.def.Meta == nil {
		return map[string]any{}, nil
	}
	m, err := s.def.Meta(s)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// MetaForCreate describes an empty form.
func (s *Serializer) MetaForCreate() (MetaPayload, error) {
	meta, err := s.Meta()
	if err != nil {
		return MetaPayload{}, err
	}
	return MetaPayload{Meta: meta, Initial: map[string]any{}, RenderConfig: s.RenderConfig()}, nil
}

// MetaForUpdate describes a form pre-populated from the bound instance.
func (s *Serializer) MetaForUpdate() (MetaPayload, error) {
	meta, err := s.Meta()
	if err != nil {
		return MetaPayload{}, err
	}
	return MetaPayload{Meta: meta, Initial: s.Initial(), RenderConfig: s.RenderConfig()}, nil
}
