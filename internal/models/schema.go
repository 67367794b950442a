package models

import "github.com/hirehub/core/internal/serializer"

// Entity names used by serializer definitions.
const (
	EntityUser        = "user"
	EntityUserDetail  = "user_detail"
	EntitySkill       = "skill"
	EntityFileUpload  = "file_upload"
	EntityImageUpload = "image_upload"
)

var UserTypeChoices = []serializer.Choice{
	{Value: UserTypeRecruiter, Label: "Recruiter"},
	{Value: UserTypeJobSeeker, Label: "Job Seeker"},
}

var GenderChoices = []serializer.Choice{
	{Value: GenderMale, Label: "Male"},
	{Value: GenderFemale, Label: "Female"},
	{Value: GenderTransgender, Label: "Transgender"},
}

func baseFields(fields ...serializer.Field) []serializer.Field {
	return append([]serializer.Field{
		{Name: "id", Attr: "ID", Kind: serializer.KindScalar, Type: serializer.TypeAuto, Label: "ID"},
		{Name: "uuid", Attr: "UUID", Kind: serializer.KindScalar, Type: serializer.TypeUUID, Label: "UUID"},
		{Name: "created", Attr: "CreatedAt", Kind: serializer.KindScalar, Type: serializer.TypeDateTime},
		{Name: "modified", Attr: "UpdatedAt", Kind: serializer.KindScalar, Type: serializer.TypeDateTime},
		{Name: "is_active", Attr: "IsActive", Kind: serializer.KindScalar, Type: serializer.TypeBoolean},
	}, fields...)
}

func auditFields() []serializer.Field {
	return []serializer.Field{
		{Name: "created_by", Attr: "CreatedBy", Kind: serializer.KindRelation, Related: EntityUser, Null: true},
		{Name: "modified_by", Attr: "ModifiedBy", Kind: serializer.KindRelation, Related: EntityUser, Null: true},
	}
}

// Entities returns the field tables of every model.
func Entities() []serializer.Entity {
	return []serializer.Entity{
		{
			Name:  EntityUser,
			Model: &UserModel{},
			Fields: baseFields(
				serializer.Field{Name: "email", Attr: "Email", Kind: serializer.KindScalar, Type: serializer.TypeEmail, Label: "email address"},
				serializer.Field{Name: "username", Attr: "Username", Kind: serializer.KindScalar,
					HelpText: "Required. 150 characters or fewer. Letters, digits and @/./+/-/_ only."},
				serializer.Field{Name: "first_name", Attr: "FirstName", Kind: serializer.KindScalar},
				serializer.Field{Name: "last_name", Attr: "LastName", Kind: serializer.KindScalar},
				serializer.Field{Name: "password", Attr: "Password", Kind: serializer.KindScalar},
				serializer.Field{Name: "phone_number", Attr: "PhoneNumber", Kind: serializer.KindPhone, Null: true},
				serializer.Field{Name: "type", Attr: "Type", Kind: serializer.KindChoice, Null: true, Choices: UserTypeChoices},
				serializer.Field{Name: "is_staff", Attr: "IsStaff", Kind: serializer.KindScalar, Type: serializer.TypeBoolean,
					HelpText: "Designates whether the user can manage other accounts."},
				serializer.Field{Name: "last_login", Attr: "LastLoginTime", Kind: serializer.KindScalar, Type: serializer.TypeDateTime, Null: true},
			),
		},
		{
			Name:   EntitySkill,
			Model:  &SkillModel{},
			Fields: baseFields(serializer.Field{Name: "name", Attr: "Name", Kind: serializer.KindScalar}),
		},
		{
			Name:      EntityFileUpload,
			Model:     &FileUploadModel{},
			FileField: "file",
			Fields: baseFields(
				serializer.Field{Name: "file", Attr: "File", Kind: serializer.KindFile},
				serializer.Field{Name: "original_name", Attr: "OriginalName", Kind: serializer.KindScalar, Null: true},
				serializer.Field{Name: "size", Attr: "Size", Kind: serializer.KindScalar, Type: serializer.TypeInteger},
				serializer.Field{Name: "content_type", Attr: "ContentType", Kind: serializer.KindScalar, Null: true},
			),
		},
		{
			Name:      EntityImageUpload,
			Model:     &ImageUploadModel{},
			FileField: "image",
			Fields: baseFields(
				serializer.Field{Name: "image", Attr: "Image", Kind: serializer.KindImage},
				serializer.Field{Name: "original_name", Attr: "OriginalName", Kind: serializer.KindScalar, Null: true},
				serializer.Field{Name: "size", Attr: "Size", Kind: serializer.KindScalar, Type: serializer.TypeInteger},
				serializer.Field{Name: "content_type", Attr: "ContentType", Kind: serializer.KindScalar, Null: true},
			),
		},
		{
			Name:  EntityUserDetail,
			Model: &UserDetailModel{},
			Fields: baseFields(append([]serializer.Field{
				{Name: "user", Attr: "User", Kind: serializer.KindRelation, Related: EntityUser},
				{Name: "address", Attr: "Address", Kind: serializer.KindScalar, Type: serializer.TypeJSON, Null: true},
				{Name: "date_of_birth", Attr: "DateOfBirth", Kind: serializer.KindScalar, Type: serializer.TypeDate, Null: true},
				{Name: "gender", Attr: "Gender", Kind: serializer.KindChoice, Choices: GenderChoices},
				{Name: "profile_image", Attr: "ProfileImage", Kind: serializer.KindRelation, Related: EntityImageUpload, Null: true},
				{Name: "resume", Attr: "Resume", Kind: serializer.KindRelation, Related: EntityFileUpload, Null: true},
				{Name: "skills", Attr: "Skills", Kind: serializer.KindRelationMany, Related: EntitySkill},
			}, auditFields()...)...),
		},
	}
}

// NewRegistry registers every entity table.
func NewRegistry() (*serializer.Registry, error) {
	reg := serializer.NewRegistry()
	for _, e := range Entities() {
		if err := reg.Register(e); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
