package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	t.Run("accepts fixture tables", func(t *testing.T) {
		reg := NewRegistry()
		for _, e := range fixtureEntities {
			require.NoError(t, reg.Register(e), e.Name)
		}
		info, err := reg.Entity("profile")
		require.NoError(t, err)
		assert.Equal(t, []string{"AvatarImage", "Resume", "Owner", "Tags", "CreatedBy", "ModifiedBy"}, info.Relations())

		f, ok := info.Field("nickname")
		require.True(t, ok)
		assert.Equal(t, TypeChar, f.Type, "scalar type defaults to char")
	})

	t.Run("rejects missing attribute", func(t *testing.T) {
		err := NewRegistry().Register(Entity{Name: "tag", Model: &fxTag{}, Fields: []Field{
			{Name: "label", Attr: "Label", Kind: KindScalar},
		}})
		assert.ErrorContains(t, err, "model has no attribute Label")
	})

	t.Run("rejects relation kind mismatch", func(t *testing.T) {
		err := NewRegistry().Register(Entity{Name: "profile", Model: &fxProfile{}, Fields: []Field{
			{Name: "tags", Attr: "Tags", Kind: KindRelation, Related: "tag"},
		}})
		assert.ErrorContains(t, err, "expected belongs-to")

		err = NewRegistry().Register(Entity{Name: "profile", Model: &fxProfile{}, Fields: []Field{
			{Name: "owner", Attr: "Owner", Kind: KindRelationMany, Related: "account"},
		}})
		assert.ErrorContains(t, err, "expected many-to-many")
	})

	t.Run("rejects choice field without choices", func(t *testing.T) {
		err := NewRegistry().Register(Entity{Name: "profile", Model: &fxProfile{}, Fields: []Field{
			{Name: "status", Attr: "Status", Kind: KindChoice},
		}})
		assert.ErrorContains(t, err, "has no choices")
	})

	t.Run("rejects file field that is not a file", func(t *testing.T) {
		err := NewRegistry().Register(Entity{Name: "tag", Model: &fxTag{}, FileField: "name", Fields: []Field{
			{Name: "name", Attr: "Name", Kind: KindScalar},
		}})
		assert.ErrorContains(t, err, "must be a declared file or image field")
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		reg := NewRegistry()
		e := Entity{Name: "tag", Model: &fxTag{}, Fields: []Field{{Name: "name", Attr: "Name", Kind: KindScalar}}}
		require.NoError(t, reg.Register(e))
		assert.ErrorContains(t, reg.Register(e), "already registered")
	})
}

func TestRegistry_ResolveField(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(fixtureEntities...)

	f, ok := reg.ResolveField("profile", "avatar_image")
	require.True(t, ok)
	assert.Equal(t, KindRelation, f.Kind)
	assert.Equal(t, TypeForeignKey, f.Type)
	assert.True(t, reg.IsFileCarrying(f.Related))

	f, ok = reg.ResolveField("profile", "full_name")
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, f.Kind)
	assert.Equal(t, TypeUnknown, f.Type)

	f, ok = reg.ResolveField("nope", "name")
	assert.False(t, ok)
	assert.Equal(t, TypeUnknown, f.Type)

	assert.False(t, reg.IsFileCarrying("tag"))

	info, err := reg.EntityOf(&fxProfile{})
	require.NoError(t, err)
	assert.Equal(t, "profile", info.Name)

	_, err = reg.EntityOf(struct{}{})
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestRegistry_EmbeddedPrimaryKey(t *testing.T) {
	engine, _ := newEngine(t)
	for _, e := range fixtureEntities {
		info, err := engine.Registry.Entity(e.Name)
		require.NoError(t, err)
		require.NotNil(t, info.Schema.PrioritizedPrimaryField, e.Name)
		assert.Equal(t, "id", info.Schema.PrioritizedPrimaryField.DBName, e.Name)
	}

	profile, err := engine.Registry.Entity("profile")
	require.NoError(t, err)
	rel := profile.Schema.Relationships.Relations["AvatarImage"]
	require.NotNil(t, rel)
	assert.Equal(t, "avatar_image_id", rel.References[0].ForeignKey.DBName)
}
