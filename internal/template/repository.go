package template

import (
	"context"

	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles option set persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOptionSet(ctx context.Context, set *models.OptionSet) error
	UpdateOptionSet(ctx context.Context, set *models.OptionSet) error
	FindOptionSetByID(ctx context.Context, id uuid.UUID) (*models.OptionSet, error)
	FindActiveByProduct(ctx context.Context, productID string) (*models.ProductOptionSet, error)
	FindLinkByProduct(ctx context.Context, productID string) (*models.ProductOptionSet, error)
	CreateLink(ctx context.Context, link *models.ProductOptionSet) error
	UpdateLink(ctx context.Context, link *models.ProductOptionSet) error
	DeactivateLinksForProduct(ctx context.Context, productID string) error
	ListOptionSets(ctx context.Context, params ListOptionSetsQuery) ([]models.OptionSet, *pagination.Cursor, error)
	ListOrphanedOptionSets(ctx context.Context, limit int) ([]models.OptionSet, error)
	DeleteOptionSet(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// ListOptionSetsQuery configures option set list queries.
type ListOptionSetsQuery struct {
	Limit      int
	Cursor     *pagination.Cursor
	ActiveOnly bool
}

// NewRepository returns an option set repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOptionSet(ctx context.Context, set *models.OptionSet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

func (r *repository) UpdateOptionSet(ctx context.Context, set *models.OptionSet) error {
	return r.db.WithContext(ctx).Save(set).Error
}

func (r *repository) FindOptionSetByID(ctx context.Context, id uuid.UUID) (*models.OptionSet, error) {
	var set models.OptionSet
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&set).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

func (r *repository) FindActiveByProduct(ctx context.Context, productID string) (*models.ProductOptionSet, error) {
	var link models.ProductOptionSet
	if err := r.db.WithContext(ctx).
		Preload("OptionSet").
		Where("product_id = ? AND is_active", productID).
		First(&link).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// FindLinkByProduct returns the most recent link for the product regardless
// of active flag, so saves reuse the existing row instead of piling up links.
func (r *repository) FindLinkByProduct(ctx context.Context, productID string) (*models.ProductOptionSet, error) {
	var link models.ProductOptionSet
	if err := r.db.WithContext(ctx).
		Preload("OptionSet").
		Where("product_id = ?", productID).
		Order("updated_at DESC").
		First(&link).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *repository) CreateLink(ctx context.Context, link *models.ProductOptionSet) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) UpdateLink(ctx context.Context, link *models.ProductOptionSet) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *repository) DeactivateLinksForProduct(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductOptionSet{}).
		Where("product_id = ? AND is_active", productID).
		Update("is_active", false).Error
}

func (r *repository) ListOptionSets(ctx context.Context, params ListOptionSetsQuery) ([]models.OptionSet, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.OptionSet{})
	if params.ActiveOnly {
		query = query.Where("is_active")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var sets []models.OptionSet
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&sets).Error; err != nil {
		return nil, nil, err
	}

	if len(sets) > limit {
		sets = sets[:limit]
		last := sets[limit-1]
		return sets, &pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}, nil
	}

	return sets, nil, nil
}

// ListOrphanedOptionSets returns option sets with no remaining product links.
func (r *repository) ListOrphanedOptionSets(ctx context.Context, limit int) ([]models.OptionSet, error) {
	if limit <= 0 {
		limit = 250
	}
	var sets []models.OptionSet
	if err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM product_option_sets WHERE product_option_sets.option_set_id = option_sets.id)").
		Order("updated_at ASC").
		Limit(limit).
		Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *repository) DeleteOptionSet(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OptionSet{}, "id = ?", id).Error
}
