package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every entity. ID is the numeric key used by relations
// and the API; UUID is an opaque public identifier generated on insert.
type Base struct {
	ID        uint           `json:"id"       gorm:"primaryKey;autoIncrement"`
	UUID      string         `json:"uuid"     gorm:"type:char(36);uniqueIndex;not null"`
	CreatedAt time.Time      `json:"created"`
	UpdatedAt time.Time      `json:"modified"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == "" {
		b.UUID = uuid.New().String()
	}
	return nil
}

// PK returns the primary key. Relations collapse to it in API output.
func (b Base) PK() uint { return b.ID }
