package serializer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hirehub/core/internal/pkg/phone"
)

// FieldOptions overrides the defaults of one declared serializer field.
type FieldOptions struct {
	Required  *bool
	AllowNull *bool
	// AllowEmpty rejects an empty list on many relations when false.
	AllowEmpty *bool
}

// Optional marks a write field as not required.
func Optional() FieldOptions {
	f := false
	return FieldOptions{Required: &f}
}

// FormField is a serializer field built from an entity descriptor.
type FormField struct {
	Name       string
	Schema     Field
	Required   bool
	AllowNull  bool
	AllowBlank bool
	AllowEmpty bool
	Messages   map[string]string
	// Child validates each item of a many relation.
	Child *FormField
}

var validate = validator.New()

func newFormField(name string, desc Field, required bool, opts FieldOptions) *FormField {
	f := &FormField{
		Name:       name,
		Schema:     desc,
		Required:   required,
		AllowNull:  desc.Null,
		AllowBlank: desc.Null,
		AllowEmpty: true,
		Messages:   make(map[string]string, len(defaultMessages)+1),
	}
	if opts.Required != nil {
		f.Required = *opts.Required
	}
	if opts.AllowNull != nil {
		f.AllowNull = *opts.AllowNull
		f.AllowBlank = *opts.AllowNull
	}
	if opts.AllowEmpty != nil {
		f.AllowEmpty = *opts.AllowEmpty
	}
	for k, v := range defaultMessages {
		f.Messages[k] = v
	}
	if msg := invalidMessage(desc); msg != "" {
		f.Messages[MsgInvalid] = msg
	}
	if desc.Kind == KindRelationMany {
		f.Child = &FormField{
			Name:     name,
			Schema:   Field{Name: name, Kind: KindRelation, Type: TypeForeignKey, Related: desc.Related},
			Required: true,
			Messages: make(map[string]string, len(defaultMessages)),
		}
		for k, v := range defaultMessages {
			f.Child.Messages[k] = v
		}
	}
	return f
}

func invalidMessage(desc Field) string {
	switch desc.Kind {
	case KindPhone:
		return "Enter a valid phone number."
	case KindFile, KindImage:
		return "The submitted data was not a file."
	}
	switch desc.Type {
	case TypeChar, TypeText, TypeUUID:
		return "Not a valid string."
	case TypeEmail:
		return "Enter a valid email address."
	case TypeURL:
		return "Enter a valid URL."
	case TypeInteger, TypeAuto:
		return "A valid integer is required."
	case TypeBoolean:
		return "Must be a valid boolean."
	case TypeDate:
		return "Date has wrong format. Use YYYY-MM-DD."
	case TypeDateTime:
		return "Datetime has wrong format. Use RFC 3339."
	}
	return ""
}

// fieldError is a single rejected value.
type fieldError struct{ msg string }

func (e fieldError) Error() string { return e.msg }

func (f *FormField) fail(key string, params ...string) error {
	return fieldError{msg: f.message(key, params...)}
}

// convert turns a decoded JSON value into the internal Go value for the
// field. Relations yield uint ids ([]uint for many); existence is checked
// by the caller in one query per relation.
func (f *FormField) convert(value any) (any, error) {
	if s, ok := value.(string); ok && f.Schema.IsRelation() && strings.TrimSpace(s) == "" {
		value = nil
	}
	if value == nil {
		if !f.AllowNull {
			return nil, f.fail(MsgNull)
		}
		return nil, nil
	}

	switch f.Schema.Kind {
	case KindRelation:
		id, ok := toID(value)
		if !ok {
			return nil, f.fail(MsgIncorrectType, "{data_type}", jsonType(value))
		}
		return id, nil
	case KindRelationMany:
		items, ok := value.([]any)
		if !ok {
			return nil, f.fail(MsgNotAList, "{input_type}", jsonType(value))
		}
		ids := make([]uint, 0, len(items))
		seen := make(map[uint]struct{}, len(items))
		for _, item := range items {
			id, ok := toID(item)
			if !ok {
				return nil, f.Child.fail(MsgIncorrectType, "{data_type}", jsonType(item))
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		if len(ids) == 0 && !f.AllowEmpty {
			return nil, f.fail(MsgEmpty)
		}
		return ids, nil
	case KindUnknown:
		return value, nil
	}

	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		if !f.AllowBlank {
			return nil, f.fail(MsgBlank)
		}
		return "", nil
	}

	switch f.Schema.Kind {
	case KindChoice:
		s, ok := value.(string)
		if !ok || !f.Schema.HasChoice(s) {
			return nil, f.fail(MsgInvalidChoice, "{input}", fmt.Sprint(value))
		}
		return s, nil
	case KindPhone:
		s, ok := value.(string)
		if !ok {
			return nil, f.fail(MsgInvalid)
		}
		n, err := phone.Parse(s, "")
		if err != nil {
			return nil, f.fail(MsgInvalid)
		}
		return n, nil
	case KindFile, KindImage:
		s, ok := value.(string)
		if !ok {
			return nil, f.fail(MsgInvalid)
		}
		return strings.TrimSpace(s), nil
	}
	return f.convertScalar(value)
}

func (f *FormField) convertScalar(value any) (any, error) {
	switch f.Schema.Type {
	case TypeChar, TypeText, TypeUUID, TypeEmail, TypeURL:
		var s string
		switch v := value.(type) {
		case string:
			s = strings.TrimSpace(v)
		case float64, json.Number:
			s = fmt.Sprint(v)
		default:
			return nil, f.fail(MsgInvalid)
		}
		switch f.Schema.Type {
		case TypeEmail:
			if validate.Var(s, "email") != nil {
				return nil, f.fail(MsgInvalid)
			}
		case TypeURL:
			if validate.Var(s, "url") != nil {
				return nil, f.fail(MsgInvalid)
			}
		}
		return s, nil
	case TypeInteger, TypeAuto:
		n, ok := toInt(value)
		if !ok {
			return nil, f.fail(MsgInvalid)
		}
		return n, nil
	case TypeBoolean:
		b, ok := toBool(value)
		if !ok {
			return nil, f.fail(MsgInvalid)
		}
		return b, nil
	case TypeDate:
		s, ok := value.(string)
		if !ok {
			return nil, f.fail(MsgInvalid)
		}
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
		if err != nil {
			return nil, f.fail(MsgInvalid)
		}
		return t, nil
	case TypeDateTime:
		s, ok := value.(string)
		if !ok {
			return nil, f.fail(MsgInvalid)
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return nil, f.fail(MsgInvalid)
		}
		return t, nil
	}
	return value, nil
}

func toID(v any) (uint, bool) {
	n, ok := toInt(v)
	if !ok || n <= 0 {
		return 0, false
	}
	return uint(n), true
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, outside the int64 range
		if n != math.Trunc(n) || n >= float64(math.MaxInt64) || n < float64(math.MinInt64) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		if b == 0 || b == 1 {
			return b == 1, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	}
	return false, false
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case float64, json.Number, int, int64:
		return "int"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	}
	return fmt.Sprintf("%T", v)
}
