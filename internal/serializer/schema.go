package serializer

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm/schema"
)

// Kind classifies an entity field for validation, render config and initial values.
type Kind int

const (
	KindUnknown Kind = iota
	KindScalar
	KindChoice
	KindRelation
	KindRelationMany
	KindFile
	KindImage
	KindPhone
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindChoice:
		return "choice"
	case KindRelation:
		return "relation"
	case KindRelationMany:
		return "relation_many"
	case KindFile:
		return "file"
	case KindImage:
		return "image"
	case KindPhone:
		return "phone"
	default:
		return "unknown"
	}
}

// Intrinsic field type tags exposed to the front end.
const (
	TypeAuto       = "AutoField"
	TypeUUID       = "UUIDField"
	TypeChar       = "CharField"
	TypeText       = "TextField"
	TypeEmail      = "EmailField"
	TypeURL        = "URLField"
	TypeInteger    = "IntegerField"
	TypeBoolean    = "BooleanField"
	TypeDate       = "DateField"
	TypeDateTime   = "DateTimeField"
	TypeJSON       = "JSONField"
	TypePhone      = "PhoneNumberField"
	TypeForeignKey = "ForeignKey"
	TypeManyToMany = "ManyToManyField"
	TypeFile       = "FileField"
	TypeImage      = "ImageField"
	TypeUnknown    = "UNKNOWN_CONTACT_DEVELOPER"
)

// Choice is one member of an enumerated choice set.
type Choice struct {
	Value string
	Label string
}

// Field describes one persisted attribute of an entity.
type Field struct {
	// Name is the wire key (snake_case).
	Name string
	// Attr is the Go struct field holding the value.
	Attr     string
	Kind     Kind
	Type     string
	Null     bool
	Label    string
	HelpText string
	Choices  []Choice
	// Related names the target entity of a relation.
	Related string
}

// IsRelation reports whether f references another entity.
func (f Field) IsRelation() bool {
	return f.Kind == KindRelation || f.Kind == KindRelationMany
}

// HasChoice reports whether value belongs to the field's choice set.
func (f Field) HasChoice(value string) bool {
	for _, c := range f.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

func unknownField(name string) Field {
	return Field{Name: name, Kind: KindUnknown, Type: TypeUnknown}
}

func defaultType(k Kind) string {
	switch k {
	case KindChoice, KindScalar:
		return TypeChar
	case KindRelation:
		return TypeForeignKey
	case KindRelationMany:
		return TypeManyToMany
	case KindFile:
		return TypeFile
	case KindImage:
		return TypeImage
	case KindPhone:
		return TypePhone
	default:
		return TypeUnknown
	}
}

// Entity is the statically declared field table of one model.
type Entity struct {
	Name string
	// Model is a pointer to a zero value of the gorm model.
	Model  any
	Fields []Field
	// FileField names the file/image field of a file-carrying entity.
	FileField string
}

// EntityInfo is a registered entity bound to its parsed gorm schema.
type EntityInfo struct {
	Entity
	Schema *schema.Schema
	byName map[string]Field
}

// Field returns the declared descriptor for name.
func (e *EntityInfo) Field(name string) (Field, bool) {
	f, ok := e.byName[name]
	return f, ok
}

// FileCarrying reports whether the entity stores an uploaded file.
func (e *EntityInfo) FileCarrying() bool { return e.FileField != "" }

// New returns a pointer to a fresh zero model value.
func (e *EntityInfo) New() reflect.Value {
	return reflect.New(e.Schema.ModelType)
}

// Relations lists the Go attribute names of all declared relation fields.
func (e *EntityInfo) Relations() []string {
	var out []string
	for _, f := range e.Fields {
		if f.IsRelation() {
			out = append(out, f.Attr)
		}
	}
	return out
}

// Registry holds every entity field table, populated once at startup.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*EntityInfo
	byType   map[reflect.Type]*EntityInfo
	cache    *sync.Map
	namer    schema.Namer
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*EntityInfo),
		byType:   make(map[reflect.Type]*EntityInfo),
		cache:    &sync.Map{},
		namer:    schema.NamingStrategy{},
	}
}

// Register parses the entity's gorm schema and checks every declared field
// against it. Relation kinds must match the gorm relationship type.
func (r *Registry) Register(e Entity) error {
	if e.Name == "" {
		return fmt.Errorf("entity name is required")
	}
	s, err := schema.Parse(e.Model, r.cache, r.namer)
	if err != nil {
		return fmt.Errorf("entity %s: parse model: %w", e.Name, err)
	}

	info := &EntityInfo{Entity: e, Schema: s, byName: make(map[string]Field, len(e.Fields))}
	info.Fields = make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Attr == "" {
			return fmt.Errorf("entity %s: field %s has no attribute", e.Name, f.Name)
		}
		if f.Kind == KindUnknown {
			return fmt.Errorf("entity %s: field %s has no kind", e.Name, f.Name)
		}
		if f.Type == "" {
			f.Type = defaultType(f.Kind)
		}
		if _, ok := s.FieldsByName[f.Attr]; !ok {
			return fmt.Errorf("entity %s: field %s: model has no attribute %s", e.Name, f.Name, f.Attr)
		}
		if f.IsRelation() {
			if err := checkRelation(s, f); err != nil {
				return fmt.Errorf("entity %s: %w", e.Name, err)
			}
		}
		if f.Kind == KindChoice && len(f.Choices) == 0 {
			return fmt.Errorf("entity %s: choice field %s has no choices", e.Name, f.Name)
		}
		if _, dup := info.byName[f.Name]; dup {
			return fmt.Errorf("entity %s: duplicate field %s", e.Name, f.Name)
		}
		info.byName[f.Name] = f
		info.Fields = append(info.Fields, f)
	}
	if e.FileField != "" {
		f, ok := info.byName[e.FileField]
		if !ok || (f.Kind != KindFile && f.Kind != KindImage) {
			return fmt.Errorf("entity %s: file field %s must be a declared file or image field", e.Name, e.FileField)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entities[e.Name]; dup {
		return fmt.Errorf("entity %s already registered", e.Name)
	}
	r.entities[e.Name] = info
	r.byType[s.ModelType] = info
	return nil
}

// MustRegister is Register for static tables declared at startup.
func (r *Registry) MustRegister(entities ...Entity) {
	for _, e := range entities {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
}

func checkRelation(s *schema.Schema, f Field) error {
	if f.Related == "" {
		return fmt.Errorf("relation %s has no related entity", f.Name)
	}
	rel, ok := s.Relationships.Relations[f.Attr]
	if !ok {
		return fmt.Errorf("field %s: %s is not a gorm relationship", f.Name, f.Attr)
	}
	switch f.Kind {
	case KindRelation:
		if rel.Type != schema.BelongsTo {
			return fmt.Errorf("field %s: expected belongs-to relationship, got %s", f.Name, rel.Type)
		}
		if len(rel.References) != 1 || rel.References[0].ForeignKey == nil {
			return fmt.Errorf("field %s: single-column foreign key required", f.Name)
		}
	case KindRelationMany:
		if rel.Type != schema.Many2Many {
			return fmt.Errorf("field %s: expected many-to-many relationship, got %s", f.Name, rel.Type)
		}
	}
	return nil
}

// Entity looks up a registered entity by name.
func (r *Registry) Entity(name string) (*EntityInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return info, nil
}

// EntityOf finds the entity registered for the model behind v.
func (r *Registry) EntityOf(v any) (*EntityInfo, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEntity, t)
	}
	return info, nil
}

// ResolveField returns the descriptor of entity.field. Misses never fail:
// they yield a KindUnknown sentinel tagged TypeUnknown and false.
func (r *Registry) ResolveField(entity, field string) (Field, bool) {
	info, err := r.Entity(entity)
	if err != nil {
		return unknownField(field), false
	}
	f, ok := info.Field(field)
	if !ok {
		return unknownField(field), false
	}
	return f, true
}

// IsFileCarrying reports whether entity is registered as file-carrying.
func (r *Registry) IsFileCarrying(entity string) bool {
	info, err := r.Entity(entity)
	return err == nil && info.FileCarrying()
}
