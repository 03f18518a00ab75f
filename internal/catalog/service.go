package catalog

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/craftlane/personalizer-backend/internal/template"
	"github.com/craftlane/personalizer-backend/pkg/cache"
	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Service exposes the admin product catalog.
type Service interface {
	List(ctx context.Context, params ListParams) ([]ProductRow, *pagination.Cursor, error)
	Sync(ctx context.Context, shopDomain string, products []SyncProduct) (int, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo   Repository
	Cache  *cache.Memory
	Logger *logger.Logger
}

type service struct {
	repo  Repository
	cache *cache.Memory
	logg  *logger.Logger
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, stdErrors.New("repo is required")
	}
	if params.Cache == nil {
		return nil, stdErrors.New("cache is required")
	}
	if params.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &service{
		repo:  params.Repo,
		cache: params.Cache,
		logg:  params.Logger,
	}, nil
}

// ListParams filters the admin product listing.
type ListParams struct {
	ShopDomain string
	Search     string
	Vendor     string
	Status     string
	Limit      int
	Cursor     string
}

// SyncProduct is one product as posted by the admin sync endpoint. IDs may
// arrive in GID form.
type SyncProduct struct {
	ExternalID string   `json:"id" validate:"required"`
	Title      string   `json:"title" validate:"required"`
	Handle     string   `json:"handle"`
	Vendor     string   `json:"vendor"`
	Status     string   `json:"status"`
	ImageURLs  []string `json:"image_urls"`
}

// List returns the product snapshot with the has-template flag, serving an
// unfiltered first page from cache.
func (s *service) List(ctx context.Context, params ListParams) ([]ProductRow, *pagination.Cursor, error) {
	if params.ShopDomain == "" {
		return nil, nil, errors.New(errors.CodeValidation, "shop domain is required")
	}

	plainFirstPage := params.Cursor == "" && params.Search == "" && params.Vendor == "" && params.Status == ""
	limit := pagination.NormalizeLimit(params.Limit)
	key := cache.ProductsKey(limit)
	if plainFirstPage {
		if cached, ok := s.cache.Get(key); ok {
			if rows, ok := cached.([]ProductRow); ok {
				return rows, nil, nil
			}
		}
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListProducts(ctx, ListProductsQuery{
		ShopDomain: params.ShopDomain,
		Search:     params.Search,
		Vendor:     params.Vendor,
		Status:     params.Status,
		Limit:      params.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeInternal, err, "listing products")
	}

	if plainFirstPage {
		s.cache.Set(key, rows, 0)
	}
	return rows, next, nil
}

// Sync upserts a page of products for the shop and invalidates the cached
// listings.
func (s *service) Sync(ctx context.Context, shopDomain string, products []SyncProduct) (int, error) {
	if shopDomain == "" {
		return 0, errors.New(errors.CodeValidation, "shop domain is required")
	}
	if len(products) == 0 {
		return 0, nil
	}

	rows := make([]models.Product, 0, len(products))
	for _, p := range products {
		externalID := template.CleanProductID(p.ExternalID)
		if externalID == "" || p.Title == "" {
			return 0, errors.New(errors.CodeValidation, "every product needs an id and title")
		}
		rows = append(rows, models.Product{
			ID:         uuid.New(),
			ShopDomain: shopDomain,
			ExternalID: externalID,
			Title:      p.Title,
			Handle:     p.Handle,
			Vendor:     p.Vendor,
			Status:     p.Status,
			ImageURLs:  pq.StringArray(p.ImageURLs),
		})
	}

	if err := s.repo.UpsertProducts(ctx, rows); err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "syncing products")
	}

	// Any cached product page may now be stale.
	for _, key := range s.cache.Stats().Keys {
		if strings.HasPrefix(key, "products:") || strings.HasPrefix(key, "product:") {
			s.cache.Delete(key)
		}
	}
	s.logg.Info(s.logg.WithShopDomain(ctx, shopDomain), "products synced")
	return len(rows), nil
}
