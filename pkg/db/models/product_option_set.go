package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductOptionSet links an external product to its template. ProductID is the
// external numeric product identifier as a string, with any platform GID
// prefix already stripped. At most one active link exists per product
// (enforced by a partial unique index).
type ProductOptionSet struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     string     `gorm:"column:product_id;not null"`
	ProductTitle  string     `gorm:"column:product_title;not null;default:''"`
	ProductHandle string     `gorm:"column:product_handle;not null;default:''"`
	OptionSetID   uuid.UUID  `gorm:"column:option_set_id;type:uuid;not null"`
	OptionSet     *OptionSet `gorm:"foreignKey:OptionSetID"`
	IsActive      bool       `gorm:"column:is_active;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
