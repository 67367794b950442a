// Package models holds the persisted entities and their schema tables.
package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&UserModel{},
		&SkillModel{},
		&FileUploadModel{},
		&ImageUploadModel{},
		&UserDetailModel{},
	}
}
