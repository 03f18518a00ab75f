// Package catalog maintains the product snapshot the admin browses when
// assigning personalization templates.
package catalog

import (
	"context"

	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles product snapshot persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertProducts(ctx context.Context, products []models.Product) error
	FindProduct(ctx context.Context, shopDomain, externalID string) (*models.Product, error)
	ListProducts(ctx context.Context, params ListProductsQuery) ([]ProductRow, *pagination.Cursor, error)
}

// ProductRow is a product joined with its personalization status.
type ProductRow struct {
	models.Product
	HasTemplate bool `gorm:"column:has_template"`
}

// ListProductsQuery configures product list queries.
type ListProductsQuery struct {
	ShopDomain string
	Search     string
	Vendor     string
	Status     string
	Limit      int
	Cursor     *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertProducts writes a synced page of products, updating rows that already
// exist for the shop.
func (r *repository) UpsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_domain"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "handle", "vendor", "status", "image_urls", "updated_at",
		}),
	}).Create(&products).Error
}

func (r *repository) FindProduct(ctx context.Context, shopDomain, externalID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND external_id = ?", shopDomain, externalID).
		First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, params ListProductsQuery) ([]ProductRow, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(`products.*, EXISTS (
			SELECT 1 FROM product_option_sets
			WHERE product_option_sets.product_id = products.external_id
			  AND product_option_sets.is_active
		) AS has_template`).
		Where("products.shop_domain = ?", params.ShopDomain)

	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("products.title LIKE ? OR products.handle LIKE ?", like, like)
	}
	if params.Vendor != "" {
		query = query.Where("products.vendor = ?", params.Vendor)
	}
	if params.Status != "" {
		query = query.Where("products.status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(products.created_at, products.id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []ProductRow
	if err := query.Order("products.created_at DESC, products.id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		return rows, &pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}, nil
	}

	return rows, nil, nil
}
