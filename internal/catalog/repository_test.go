package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/craftlane/personalizer-backend/pkg/cache"
	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  shop_domain TEXT NOT NULL,
  external_id TEXT NOT NULL,
  title TEXT NOT NULL,
  handle TEXT NOT NULL DEFAULT '',
  vendor TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT '',
  image_urls TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (shop_domain, external_id)
);`,
		`CREATE TABLE IF NOT EXISTS product_option_sets (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  product_title TEXT NOT NULL DEFAULT '',
  product_handle TEXT NOT NULL DEFAULT '',
  option_set_id TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newProduct(t *testing.T, db *gorm.DB, externalID, title, vendor string) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		ShopDomain: "demo.myshopify.com",
		ExternalID: externalID,
		Title:      title,
		Vendor:     vendor,
		Status:     "active",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func linkTemplate(t *testing.T, db *gorm.DB, productID string) {
	t.Helper()

	require.NoError(t, db.Create(&models.ProductOptionSet{
		ID:          uuid.New(),
		ProductID:   productID,
		OptionSetID: uuid.New(),
		IsActive:    true,
	}).Error)
}

func TestRepositoryListProductsHasTemplateFlag(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newProduct(t, db, "1001", "Coffee Mug", "Acme")
	newProduct(t, db, "1002", "Tote Bag", "Acme")
	linkTemplate(t, db, "1001")

	rows, _, err := repo.ListProducts(ctx, ListProductsQuery{ShopDomain: "demo.myshopify.com"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[string]ProductRow{}
	for _, row := range rows {
		byID[row.ExternalID] = row
	}
	assert.True(t, byID["1001"].HasTemplate)
	assert.False(t, byID["1002"].HasTemplate)
}

func TestRepositoryListProductsFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newProduct(t, db, "1001", "Coffee Mug", "Acme")
	newProduct(t, db, "1002", "Tote Bag", "Globex")

	rows, _, err := repo.ListProducts(ctx, ListProductsQuery{
		ShopDomain: "demo.myshopify.com",
		Search:     "Mug",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1001", rows[0].ExternalID)

	rows, _, err = repo.ListProducts(ctx, ListProductsQuery{
		ShopDomain: "demo.myshopify.com",
		Vendor:     "Globex",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1002", rows[0].ExternalID)

	rows, _, err = repo.ListProducts(ctx, ListProductsQuery{ShopDomain: "other.myshopify.com"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryListProductsPagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		newProduct(t, db, uuid.NewString(), "Product", "Acme")
	}

	first, next, err := repo.ListProducts(ctx, ListProductsQuery{
		ShopDomain: "demo.myshopify.com",
		Limit:      3,
	})
	require.NoError(t, err)
	assert.Len(t, first, 3)
	require.NotNil(t, next)

	second, last, err := repo.ListProducts(ctx, ListProductsQuery{
		ShopDomain: "demo.myshopify.com",
		Limit:      3,
		Cursor:     next,
	})
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Nil(t, last)

	// Walking both pages must visit every product exactly once.
	seen := map[string]bool{}
	for _, row := range append(first, second...) {
		assert.False(t, seen[row.ExternalID], "product %s returned twice", row.ExternalID)
		seen[row.ExternalID] = true
	}
	assert.Len(t, seen, 5)
}

func TestServiceSyncUpserts(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		Cache:  cache.NewMemory(cache.Options{}),
		Logger: logger.New(logger.Options{Output: io.Discard}),
	})
	require.NoError(t, err)
	ctx := context.Background()

	count, err := svc.Sync(ctx, "demo.myshopify.com", []SyncProduct{
		{ExternalID: "gid://shopify/Product/1001", Title: "Coffee Mug", Vendor: "Acme", Status: "active"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	repo := NewRepository(db)
	product, err := repo.FindProduct(ctx, "demo.myshopify.com", "1001")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Coffee Mug", product.Title)

	// Re-syncing the same external id updates in place.
	_, err = svc.Sync(ctx, "demo.myshopify.com", []SyncProduct{
		{ExternalID: "1001", Title: "Coffee Mug XL", Vendor: "Acme", Status: "active"},
	})
	require.NoError(t, err)

	product, err = repo.FindProduct(ctx, "demo.myshopify.com", "1001")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Coffee Mug XL", product.Title)

	var total int64
	require.NoError(t, db.Model(&models.Product{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestServiceSyncValidation(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		Cache:  cache.NewMemory(cache.Options{}),
		Logger: logger.New(logger.Options{Output: io.Discard}),
	})
	require.NoError(t, err)

	_, err = svc.Sync(context.Background(), "", []SyncProduct{{ExternalID: "1", Title: "X"}})
	assert.Error(t, err)

	_, err = svc.Sync(context.Background(), "demo.myshopify.com", []SyncProduct{{Title: "X"}})
	assert.Error(t, err)
}
