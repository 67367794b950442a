package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanize(t *testing.T) {
	assert.Equal(t, "first name", Humanize("first_name"))
	assert.Equal(t, "date of birth", Humanize("date-of-birth"))
	assert.Equal(t, "Date Of Birth", DisplayName("date_of_birth"))
	assert.Equal(t, "Email", DisplayName("email"))
}

func TestNormalizeMessages(t *testing.T) {
	engine, _ := newEngine(t)
	s, err := engine.Bind(profileDef(VariantCreate), anonymous(), nil)
	require.NoError(t, err)

	name, ok := s.Field("name")
	require.True(t, ok)
	assert.Equal(t, "Please enter your name", name.Messages[MsgRequired])
	assert.Equal(t, "Please enter your name", name.Messages[MsgBlank])
	assert.Equal(t, "Please enter your name", name.Messages[MsgNull])

	avatar, _ := s.Field("avatar_image")
	assert.Equal(t, "Please select a value", avatar.Messages[MsgRequired])
	assert.Equal(t, "The selected value does not exist", avatar.Messages[MsgDoesNotExist])
	assert.Equal(t, "Please select a valid value", avatar.Messages[MsgIncorrectType])

	tags, _ := s.Field("tags")
	assert.Equal(t, "Please select at least one value", tags.Messages[MsgRequired])
	assert.Equal(t, "Please select a list of values", tags.Messages[MsgNotAList])
	require.NotNil(t, tags.Child)
	assert.Equal(t, "The selected value does not exist", tags.Child.Messages[MsgDoesNotExist])
	assert.Equal(t, "Please select a valid value", tags.Child.Messages[MsgIncorrectType])

	// validation rules are untouched
	assert.True(t, name.Required)
	assert.False(t, name.AllowNull)
	nick, _ := s.Field("nickname")
	assert.True(t, nick.AllowNull)
}

func TestFormField_MessagePlaceholders(t *testing.T) {
	engine, _ := newEngine(t)
	s := engine.MustBind(profileDef(VariantCreate), anonymous(), nil)

	status, _ := s.Field("status")
	assert.Equal(t, `"weird" is not a valid choice.`, status.message(MsgInvalidChoice, "{input}", "weird"))
}

func TestFormField_AllowEmpty(t *testing.T) {
	engine, _ := newEngine(t)
	no := false
	def := profileDef(VariantCreate)
	def.Extra = map[string]FieldOptions{"tags": {AllowEmpty: &no}}
	s := engine.MustBind(def, anonymous(), nil)

	tags, _ := s.Field("tags")
	assert.False(t, tags.AllowEmpty)
	_, err := tags.convert([]any{})
	require.Error(t, err)
	assert.Equal(t, "Please select at least one value", err.Error())

	// duplicates collapse but a non-empty list passes
	ids, err := tags.convert([]any{float64(2), float64(2)})
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)
}
