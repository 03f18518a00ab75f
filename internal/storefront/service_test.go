package storefront

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/craftlane/personalizer-backend/internal/template"
	"github.com/craftlane/personalizer-backend/pkg/cache"
	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStorefrontTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS option_sets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  fields TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
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
		`CREATE TABLE IF NOT EXISTS customer_personalizations (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  submission TEXT NOT NULL,
  submitted_at DATETIME NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedTemplate(t *testing.T, db *gorm.DB, productID, fields string, active bool) {
	t.Helper()

	set := &models.OptionSet{
		ID:       uuid.New(),
		Name:     "Mug Front",
		Fields:   fields,
		IsActive: active,
	}
	require.NoError(t, db.Create(set).Error)
	require.NoError(t, db.Create(&models.ProductOptionSet{
		ID:          uuid.New(),
		ProductID:   productID,
		OptionSetID: set.ID,
		IsActive:    active,
	}).Error)
}

func newStorefrontService(t *testing.T, db *gorm.DB) (Service, Repository) {
	t.Helper()

	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{
		Templates: template.NewRepository(db),
		Repo:      repo,
		Cache:     cache.NewMemory(cache.Options{}),
		Logger:    logger.New(logger.Options{Output: io.Discard}),
		Now:       func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, repo
}

const validFields = `{
	"viewName": "Front",
	"canvasWidth": 1000,
	"canvasHeight": 1000,
	"additionalCharge": 4.5,
	"elements": [
		{"id":"text_1","type":"text","x":100,"y":100,"width":200,"height":50,
		 "properties":{"maxLength":50,"multiline":true}}
	]
}`

func TestTemplateForProduct(t *testing.T) {
	db := setupStorefrontTestDB(t)
	seedTemplate(t, db, "1001", validFields, true)
	svc, _ := newStorefrontService(t, db)
	ctx := context.Background()

	result, err := svc.TemplateForProduct(ctx, "gid://shopify/Product/1001")
	require.NoError(t, err)
	assert.True(t, result.HasTemplate)
	assert.Equal(t, "Mug Front", result.Name)
	assert.Equal(t, "4.5", result.AdditionalCharge.String())
	require.NotNil(t, result.Template)
	assert.Len(t, result.Template.Elements, 1)
}

func TestTemplateForProductMissingOrInactive(t *testing.T) {
	db := setupStorefrontTestDB(t)
	seedTemplate(t, db, "2002", validFields, false)
	svc, _ := newStorefrontService(t, db)
	ctx := context.Background()

	result, err := svc.TemplateForProduct(ctx, "9999")
	require.NoError(t, err)
	assert.False(t, result.HasTemplate)

	result, err = svc.TemplateForProduct(ctx, "2002")
	require.NoError(t, err)
	assert.False(t, result.HasTemplate)
}

func TestTemplateForProductMalformedIsHidden(t *testing.T) {
	db := setupStorefrontTestDB(t)
	seedTemplate(t, db, "3003", `{"canvasWidth":0}`, true)
	svc, _ := newStorefrontService(t, db)

	result, err := svc.TemplateForProduct(context.Background(), "3003")
	require.NoError(t, err)
	assert.False(t, result.HasTemplate)
}

func TestTemplateForProductServedFromCache(t *testing.T) {
	db := setupStorefrontTestDB(t)
	seedTemplate(t, db, "1001", validFields, true)
	svc, _ := newStorefrontService(t, db)
	ctx := context.Background()

	first, err := svc.TemplateForProduct(ctx, "1001")
	require.NoError(t, err)

	// Dropping the table proves the second read never touches the database.
	require.NoError(t, db.Exec("DROP TABLE product_option_sets").Error)

	second, err := svc.TemplateForProduct(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPreview(t *testing.T) {
	db := setupStorefrontTestDB(t)
	seedTemplate(t, db, "1001", validFields, true)
	svc, _ := newStorefrontService(t, db)

	result, err := svc.Preview(context.Background(), PreviewRequest{
		ProductID: "1001",
		Inputs: []Input{
			{Field: InputName, Value: "Alex"},
			{Field: InputTextColor, Value: "#ff0000"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alex", result.View.DisplayText)
	assert.Equal(t, "#ff0000", result.View.TextColor)
	assert.Equal(t, "Alex", result.Submission.Name)
	assert.Equal(t, "#ff0000", result.Submission.TextColor)
}

func TestPreviewNoTemplate(t *testing.T) {
	db := setupStorefrontTestDB(t)
	svc, _ := newStorefrontService(t, db)

	_, err := svc.Preview(context.Background(), PreviewRequest{ProductID: "404"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestCartPropertiesRecordsSubmission(t *testing.T) {
	db := setupStorefrontTestDB(t)
	seedTemplate(t, db, "1001", validFields, true)
	svc, repo := newStorefrontService(t, db)
	ctx := context.Background()

	sub := NewSubmission()
	sub.Name = "Alex"

	result, err := svc.CartProperties(ctx, CartRequest{
		ProductID:  "1001",
		Submission: sub,
	})
	require.NoError(t, err)

	serialized := result.Properties[CartPropertyKey]
	require.NotEmpty(t, serialized)
	parsed, err := ParseSubmission(serialized)
	require.NoError(t, err)
	assert.Equal(t, "Alex", parsed.Name)
	assert.Equal(t, "2025-06-15T12:00:00Z", parsed.Timestamp)
	assert.Equal(t, "4.50", result.Properties["properties[_personalization_charge]"])

	records, err := repo.ListPersonalizationsByProduct(ctx, "1001", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, serialized, records[0].Submission)
}

func TestCartPropertiesSurfacesPendingUploads(t *testing.T) {
	db := setupStorefrontTestDB(t)
	seedTemplate(t, db, "1001", validFields, true)
	svc, _ := newStorefrontService(t, db)

	result, err := svc.CartProperties(context.Background(), CartRequest{
		ProductID:      "1001",
		Submission:     NewSubmission(),
		PendingUploads: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.PendingUploads)
}

func TestRepositoryRetention(t *testing.T) {
	db := setupStorefrontTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	old := &models.CustomerPersonalization{
		ID:          uuid.New(),
		ProductID:   "1001",
		Submission:  "{}",
		SubmittedAt: time.Now().AddDate(0, 0, -120),
	}
	fresh := &models.CustomerPersonalization{
		ID:          uuid.New(),
		ProductID:   "1001",
		Submission:  "{}",
		SubmittedAt: time.Now(),
	}
	require.NoError(t, repo.CreatePersonalization(ctx, old))
	require.NoError(t, repo.CreatePersonalization(ctx, fresh))

	removed, err := repo.DeletePersonalizationsBefore(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	records, err := repo.ListPersonalizationsByProduct(ctx, "1001", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fresh.ID, records[0].ID)
}
