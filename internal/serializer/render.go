package serializer

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Render types beyond the intrinsic field type tags.
const (
	RenderImageUpload = "ImageUpload"
	RenderFileUpload  = "FileUpload"
	RenderChoiceField = "ChoiceField"
)

// RenderField tells a front end how to present one serializer field.
type RenderField struct {
	Key         string       `json:"key"`
	Type        string       `json:"type"`
	OtherConfig RenderConfig `json:"other_config"`
}

// RenderConfig is empty for fields that could not be introspected.
type RenderConfig struct {
	Label     string
	HelpText  string
	AllowNull bool
	resolved  bool
}

// Resolved reports whether the field was found on the entity.
func (c RenderConfig) Resolved() bool { return c.resolved }

func (c RenderConfig) MarshalJSON() ([]byte, error) {
	if !c.resolved {
		return []byte("{}"), nil
	}
	var help *string
	if c.HelpText != "" {
		help = &c.HelpText
	}
	return json.Marshal(struct {
		Label     string  `json:"label"`
		HelpText  *string `json:"help_text"`
		AllowNull bool    `json:"allow_null"`
	}{c.Label, help, c.AllowNull})
}

// RenderConfig describes every declared field in declared order. A field
// that fails introspection is logged and rendered as unknown.
func (s *Serializer) RenderConfig() []RenderField {
	out := make([]RenderField, 0, len(s.def.Fields))
	for _, name := range s.def.Fields {
		rf, err := s.renderField(name)
		if err != nil {
			s.Log().Warn("render config",
				zap.String("serializer", s.def.Name),
				zap.String("field", name),
				zap.Error(err))
			rf = RenderField{Key: name, Type: TypeUnknown}
		}
		out = append(out, rf)
	}
	return out
}

func (s *Serializer) renderField(name string) (rf RenderField, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("introspect %s: %v", name, r)
		}
	}()

	rf = RenderField{Key: name, Type: TypeUnknown}
	desc, ok := s.Registry().ResolveField(s.def.Entity, name)
	if !ok {
		return rf, nil
	}

	switch {
	case desc.Kind == KindRelation && s.Registry().IsFileCarrying(desc.Related):
		if strings.Contains(name, "image") {
			rf.Type = RenderImageUpload
		} else {
			rf.Type = RenderFileUpload
		}
	case desc.Kind == KindChoice:
		rf.Type = RenderChoiceField
	case desc.Type != "":
		rf.Type = desc.Type
	}

	allowNull := desc.Null
	if f, ok := s.Field(name); ok {
		allowNull = f.AllowNull
	}
	rf.OtherConfig = RenderConfig{
		Label:     DisplayName(firstOf(desc.Label, name)),
		HelpText:  firstOf(desc.HelpText),
		AllowNull: allowNull,
		resolved:  true,
	}
	return rf, nil
}
