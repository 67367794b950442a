package serializer

import (
	"context"
	"testing"
	"time"

	"github.com/hirehub/core/internal/database/dbtest"
	"github.com/hirehub/core/internal/pkg/phone"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FxBase is exported so gorm embeds its columns.
type FxBase struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b FxBase) PK() uint { return b.ID }

type fxAccount struct {
	FxBase
	Email    string
	Password string
}

type fxTag struct {
	FxBase
	Name string
}

type fxPhoto struct {
	FxBase
	Image string
}

type fxDocument struct {
	FxBase
	File string
}

type fxProfile struct {
	FxBase
	Name          string
	Nickname      *string
	Status        string
	Score         int64
	Visible       bool
	Born          *time.Time
	Mobile        *phone.Number
	Password      string
	AvatarImageID *uint
	AvatarImage   *fxPhoto
	ResumeID      *uint
	Resume        *fxDocument
	OwnerID       *uint
	Owner         *fxAccount
	Tags          []*fxTag `gorm:"many2many:fx_profile_tags"`
	CreatedByID   *uint
	CreatedBy     *fxAccount
	ModifiedByID  *uint
	ModifiedBy    *fxAccount
}

var fxStatuses = []Choice{{Value: "open"}, {Value: "closed", Label: "Closed for now"}}

var fixtureEntities = []Entity{
	{Name: "account", Model: &fxAccount{}, Fields: []Field{
		{Name: "id", Attr: "ID", Kind: KindScalar, Type: TypeAuto},
		{Name: "email", Attr: "Email", Kind: KindScalar, Type: TypeEmail},
		{Name: "password", Attr: "Password", Kind: KindScalar},
	}},
	{Name: "tag", Model: &fxTag{}, Fields: []Field{
		{Name: "id", Attr: "ID", Kind: KindScalar, Type: TypeAuto},
		{Name: "name", Attr: "Name", Kind: KindScalar},
	}},
	{Name: "photo", Model: &fxPhoto{}, FileField: "image", Fields: []Field{
		{Name: "id", Attr: "ID", Kind: KindScalar, Type: TypeAuto},
		{Name: "image", Attr: "Image", Kind: KindImage},
	}},
	{Name: "document", Model: &fxDocument{}, FileField: "file", Fields: []Field{
		{Name: "id", Attr: "ID", Kind: KindScalar, Type: TypeAuto},
		{Name: "file", Attr: "File", Kind: KindFile},
	}},
	{Name: "profile", Model: &fxProfile{}, Fields: []Field{
		{Name: "id", Attr: "ID", Kind: KindScalar, Type: TypeAuto},
		{Name: "name", Attr: "Name", Kind: KindScalar, HelpText: "Shown on the card"},
		{Name: "nickname", Attr: "Nickname", Kind: KindScalar, Null: true},
		{Name: "status", Attr: "Status", Kind: KindChoice, Choices: fxStatuses},
		{Name: "score", Attr: "Score", Kind: KindScalar, Type: TypeInteger},
		{Name: "visible", Attr: "Visible", Kind: KindScalar, Type: TypeBoolean},
		{Name: "born", Attr: "Born", Kind: KindScalar, Type: TypeDate, Null: true, Label: "date_of_birth"},
		{Name: "mobile", Attr: "Mobile", Kind: KindPhone, Null: true},
		{Name: "password", Attr: "Password", Kind: KindScalar},
		{Name: "avatar_image", Attr: "AvatarImage", Kind: KindRelation, Related: "photo", Null: true},
		{Name: "resume", Attr: "Resume", Kind: KindRelation, Related: "document", Null: true},
		{Name: "owner", Attr: "Owner", Kind: KindRelation, Related: "account", Null: true},
		{Name: "tags", Attr: "Tags", Kind: KindRelationMany, Related: "tag"},
		{Name: "created_by", Attr: "CreatedBy", Kind: KindRelation, Related: "account", Null: true},
		{Name: "modified_by", Attr: "ModifiedBy", Kind: KindRelation, Related: "account", Null: true},
	}},
}

type prefixURLs string

func (p prefixURLs) URL(key string) string { return string(p) + key }

func newEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t, &fxAccount{}, &fxTag{}, &fxPhoto{}, &fxDocument{}, &fxProfile{})
	reg := NewRegistry()
	require.NoError(t, func() error {
		for _, e := range fixtureEntities {
			if err := reg.Register(e); err != nil {
				return err
			}
		}
		return nil
	}())
	return &Engine{Registry: reg, DB: db, Files: prefixURLs("https://cdn.test/"), Log: zap.NewNop()}, db
}

func anonymous() Request { return Request{Ctx: context.Background(), Actor: Anonymous()} }

func as(id uint) Request { return Request{Ctx: context.Background(), Actor: UserActor(id)} }

var profileFields = []string{"name", "nickname", "status", "score", "visible", "born", "mobile", "avatar_image", "resume", "tags"}

func profileDef(v Variant) *Definition {
	return &Definition{Name: "profile_" + v.String(), Entity: "profile", Variant: v, Fields: profileFields}
}

func validProfile() map[string]any {
	return map[string]any{
		"name":         "Ada",
		"nickname":     "ada",
		"status":       "open",
		"score":        float64(3),
		"visible":      true,
		"born":         "1990-04-01",
		"mobile":       "+1 650-253-0000",
		"avatar_image": nil,
		"resume":       nil,
		"tags":         []any{},
	}
}
