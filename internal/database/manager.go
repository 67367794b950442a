package database

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrNone fetches the single row matching query. No row and more than one
// row both yield (nil, nil); only driver failures are errors.
func GetOrNone[T any](db *gorm.DB, query any, args ...any) (*T, error) {
	var rows []T
	err := db.Where(query, args...).Limit(2).Find(&rows).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetByUUID is GetOrNone by the public uuid column. A malformed uuid is not found.
func GetByUUID[T any](db *gorm.DB, raw string) (*T, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, nil
	}
	return GetOrNone[T](db, "uuid = ?", id.String())
}
