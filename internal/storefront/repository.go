package storefront

import (
	"context"
	"time"

	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists customer personalization records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePersonalization(ctx context.Context, record *models.CustomerPersonalization) error
	ListPersonalizationsByProduct(ctx context.Context, productID string, limit int) ([]models.CustomerPersonalization, error)
	DeletePersonalizationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a storefront repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePersonalization(ctx context.Context, record *models.CustomerPersonalization) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListPersonalizationsByProduct(ctx context.Context, productID string, limit int) ([]models.CustomerPersonalization, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.CustomerPersonalization
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) DeletePersonalizationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("submitted_at < ?", cutoff).
		Delete(&models.CustomerPersonalization{})
	return result.RowsAffected, result.Error
}
