package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a local snapshot of a storefront product, synced from the
// commerce platform so the admin listing does not hit the platform API on
// every page load.
type Product struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopDomain string         `gorm:"column:shop_domain;not null"`
	ExternalID string         `gorm:"column:external_id;not null"`
	Title      string         `gorm:"column:title;not null"`
	Handle     string         `gorm:"column:handle;not null;default:''"`
	Vendor     string         `gorm:"column:vendor;not null;default:''"`
	Status     string         `gorm:"column:status;not null;default:'active'"`
	ImageURLs  pq.StringArray `gorm:"column:image_urls;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
