package models

import (
	"time"

	"github.com/google/uuid"
)

// OptionSet stores one personalization template document. The Fields column
// holds the template JSON exactly as the editor serialized it; decoding and
// defaulting happen in the template package.
type OptionSet struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	Description *string            `gorm:"column:description"`
	Fields      string             `gorm:"column:fields;type:text;not null"`
	IsActive    bool               `gorm:"column:is_active;not null"`
	Links       []ProductOptionSet `gorm:"foreignKey:OptionSetID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
