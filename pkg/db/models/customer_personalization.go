package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerPersonalization records a serialized customer submission as it was
// attached to a cart line item. Rows are best-effort: the storefront contract
// never depends on this table.
type CustomerPersonalization struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   string    `gorm:"column:product_id;not null"`
	Submission  string    `gorm:"column:submission;type:text;not null"`
	SubmittedAt time.Time `gorm:"column:submitted_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
