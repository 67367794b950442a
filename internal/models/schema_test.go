package models

import (
	"testing"

	"github.com/hirehub/core/internal/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.True(t, reg.IsFileCarrying(EntityImageUpload))
	assert.True(t, reg.IsFileCarrying(EntityFileUpload))
	assert.False(t, reg.IsFileCarrying(EntityUserDetail))

	f, ok := reg.ResolveField(EntityUserDetail, "skills")
	require.True(t, ok)
	assert.Equal(t, serializer.KindRelationMany, f.Kind)

	f, ok = reg.ResolveField(EntityUserDetail, "created_by")
	require.True(t, ok)
	assert.Equal(t, EntityUser, f.Related)

	info, err := reg.Entity(EntityUserDetail)
	require.NoError(t, err)
	assert.NotNil(t, info.Schema.LookUpField(serializer.CreatedByColumn))
	assert.NotNil(t, info.Schema.LookUpField(serializer.ModifiedByColumn))
}

func TestBase(t *testing.T) {
	b := Base{ID: 7}
	assert.Equal(t, uint(7), b.PK())

	require.NoError(t, b.BeforeCreate(nil))
	assert.Len(t, b.UUID, 36)
	prev := b.UUID
	require.NoError(t, b.BeforeCreate(nil))
	assert.Equal(t, prev, b.UUID)
}

func TestUserModel_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&UserModel{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&UserModel{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&UserModel{LastName: "Lovelace"}).FullName())
}
