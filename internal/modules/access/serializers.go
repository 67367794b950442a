package access

import (
	"github.com/hirehub/core/internal/models"
	"github.com/hirehub/core/internal/serializer"
)

var userCreateFields = []string{"email", "first_name", "last_name", "phone_number"}

// Serializers are the definitions of the access endpoints. Create hooks go
// through the service so passwords are always hashed.
type Serializers struct {
	UserCreate       *serializer.Definition
	RecruiterCreate  *serializer.Definition
	UserList         *serializer.Definition
	UserDetailCreate *serializer.Definition
	UserDetailUpdate *serializer.Definition
	UserDetailRead   *serializer.Definition
}

func NewSerializers(svc *Service) *Serializers {
	return &Serializers{
		UserCreate: &serializer.Definition{
			Name:    "UserCreateModelSerializer",
			Entity:  models.EntityUser,
			Variant: serializer.VariantModel,
			Fields:  append(append([]string{}, userCreateFields...), "password"),
			Extra: map[string]serializer.FieldOptions{
				"phone_number": serializer.Optional(),
				"password":     serializer.Optional(),
			},
			Validate: func(s *serializer.Serializer, attrs serializer.Payload) (serializer.Payload, error) {
				if err := svc.checkEmailFree(s, attrs); err != nil {
					return nil, err
				}
				attrs["type"] = models.UserTypeJobSeeker
				return attrs, nil
			},
			Create: svc.createUser,
		},
		RecruiterCreate: &serializer.Definition{
			Name:    "RecruiterUserCreateSerializer",
			Entity:  models.EntityUser,
			Variant: serializer.VariantCreate,
			Fields:  userCreateFields,
			Extra:   map[string]serializer.FieldOptions{"phone_number": serializer.Optional()},
			Validate: func(s *serializer.Serializer, attrs serializer.Payload) (serializer.Payload, error) {
				if err := svc.checkEmailFree(s, attrs); err != nil {
					return nil, err
				}
				attrs["type"] = models.UserTypeRecruiter
				return attrs, nil
			},
			Create: svc.createUser,
		},
		UserList: &serializer.Definition{
			Name:    "UserListModelSerializer",
			Entity:  models.EntityUser,
			Variant: serializer.VariantReadOnly,
			Fields:  []string{"id", "email", "first_name", "last_name", "username", "phone_number", "type"},
		},
		UserDetailCreate: userDetailWrite("UserDetailCreateSerializer", serializer.VariantCreate),
		UserDetailUpdate: userDetailWrite("UserDetailUpdateSerializer", serializer.VariantUpdate),
		UserDetailRead: &serializer.Definition{
			Name:    "UserDetailReadSerializer",
			Entity:  models.EntityUserDetail,
			Variant: serializer.VariantReadOnly,
			Fields: []string{
				"id", "uuid", "user", "address", "date_of_birth", "gender",
				"profile_image", "resume", "skills",
				"created", "modified", "created_by", "modified_by",
			},
		},
	}
}

func userDetailWrite(name string, v serializer.Variant) *serializer.Definition {
	optional := serializer.Optional()
	return &serializer.Definition{
		Name:    name,
		Entity:  models.EntityUserDetail,
		Variant: v,
		Fields:  []string{"user", "address", "date_of_birth", "gender", "profile_image", "resume", "skills"},
		Extra: map[string]serializer.FieldOptions{
			"address":       optional,
			"date_of_birth": optional,
			"profile_image": optional,
			"resume":        optional,
			"skills":        optional,
		},
		Meta: userDetailMeta,
	}
}

func userDetailMeta(s *serializer.Serializer) (map[string]any, error) {
	var skills []models.SkillModel
	if err := s.DB().Order("name").Find(&skills).Error; err != nil {
		return nil, err
	}
	options := make([]map[string]any, 0, len(skills))
	for _, sk := range skills {
		options = append(options, map[string]any{"id": sk.ID, "identity": sk.Name})
	}
	return map[string]any{
		"gender": serializer.SerializeChoiceSet(models.GenderChoices),
		"skills": options,
	}, nil
}
