package serializer

import (
	"math"
	"testing"
	"time"

	"github.com/hirehub/core/internal/pkg/phone"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmpty(t *testing.T) {
	var nilPtr *string
	born := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)

	got := NormalizeEmpty(Payload{
		"blank":    "",
		"nil_ptr":  nilPtr,
		"map":      map[string]any{},
		"phone":    phone.Number{},
		"false":    false,
		"zero":     int64(0),
		"zero_f":   float64(0),
		"ids":      []uint{},
		"text":     "x",
		"born":     born,
		"zero_day": time.Time{},
	})

	assert.Nil(t, got["blank"])
	assert.Nil(t, got["nil_ptr"])
	assert.Nil(t, got["map"])
	assert.Nil(t, got["phone"])

	assert.Equal(t, false, got["false"])
	assert.Equal(t, int64(0), got["zero"])
	assert.Equal(t, float64(0), got["zero_f"])
	assert.Equal(t, []uint{}, got["ids"])
	assert.Equal(t, "x", got["text"])
	assert.Equal(t, born, got["born"])
	assert.Equal(t, time.Time{}, got["zero_day"])
}

func TestFormField_Convert(t *testing.T) {
	engine, _ := newEngine(t)
	s := engine.MustBind(profileDef(VariantCreate), anonymous(), nil)
	field := func(name string) *FormField {
		f, ok := s.Field(name)
		if !ok {
			t.Fatalf("no field %s", name)
		}
		return f
	}

	tests := []struct {
		name    string
		field   string
		in      any
		want    any
		wantErr string
	}{
		{"trims text", "name", "  Ada ", "Ada", ""},
		{"blank on non-null", "name", " ", nil, "Please enter your name"},
		{"null on non-null", "name", nil, nil, "Please enter your name"},
		{"blank on nullable", "nickname", "", "", ""},
		{"choice", "status", "closed", "closed", ""},
		{"bad choice", "status", "weird", nil, `"weird" is not a valid choice.`},
		{"integer", "score", float64(7), int64(7), ""},
		{"fractional integer", "score", 7.5, nil, "A valid integer is required."},
		{"integer above int64", "score", 1e20, nil, "A valid integer is required."},
		{"integer below int64", "score", -1e20, nil, "A valid integer is required."},
		{"integer at 2^63", "score", float64(1 << 63), nil, "A valid integer is required."},
		{"uint above int64", "score", uint(math.MaxUint64), nil, "A valid integer is required."},
		{"largest exact integer", "score", float64(1 << 53), int64(1 << 53), ""},
		{"boolean string", "visible", "false", false, ""},
		{"date", "born", "1990-04-01", time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC), ""},
		{"bad date", "born", "01/04/1990", nil, "Date has wrong format. Use YYYY-MM-DD."},
		{"bad phone", "mobile", "12", nil, "Enter a valid phone number."},
		{"relation id", "avatar_image", float64(4), uint(4), ""},
		{"relation blank", "avatar_image", "", nil, ""},
		{"relation type", "avatar_image", true, nil, "Please select a valid value"},
		{"relation id overflow", "avatar_image", 1e20, nil, "Please select a valid value"},
		{"many ids deduped", "tags", []any{float64(2), float64(1), float64(2)}, []uint{2, 1}, ""},
		{"many not a list", "tags", "1,2", nil, "Please select a list of values"},
		{"many bad item", "tags", []any{"a"}, nil, "Please select a valid value"},
		{"many null", "tags", nil, nil, "Please select at least one value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := field(tt.field).convert(tt.in)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := field("mobile").convert("+1 650-253-0000")
	assert.NoError(t, err)
	assert.Equal(t, "+16502530000", got.(phone.Number).E164)
}
