package template

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/craftlane/personalizer-backend/pkg/cache"
	"github.com/craftlane/personalizer-backend/pkg/db"
	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service orchestrates saving and loading personalization templates.
type Service interface {
	Save(ctx context.Context, input SaveInput) (*SaveResult, error)
	Load(ctx context.Context, productID string) (*LoadResult, error)
	List(ctx context.Context, params pagination.Params) ([]Summary, *pagination.Cursor, error)
	Deactivate(ctx context.Context, productID string) error
}

// ServiceParams groups dependencies for the template service.
type ServiceParams struct {
	DB     *db.Client
	Repo   Repository
	Cache  *cache.Memory
	Logger *logger.Logger
}

type service struct {
	db    *db.Client
	repo  Repository
	cache *cache.Memory
	logg  *logger.Logger
}

// NewService builds a template service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, stdErrors.New("db client is required")
	}
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
		db:    params.DB,
		repo:  params.Repo,
		cache: params.Cache,
		logg:  params.Logger,
	}, nil
}

// SaveInput is a template save request from the admin editor.
type SaveInput struct {
	ProductID     string
	ProductTitle  string
	ProductHandle string
	TemplateName  string
	Template      []byte
}

// SaveResult reports the persisted option set and link.
type SaveResult struct {
	OptionSetID uuid.UUID
	LinkID      uuid.UUID
	Created     bool
}

// LoadResult carries a decoded template plus its persistence identifiers.
type LoadResult struct {
	OptionSetID uuid.UUID
	Name        string
	Template    *Template
	UpdatedAt   time.Time
}

// Summary is one row in the admin template listing.
type Summary struct {
	OptionSetID uuid.UUID `json:"option_set_id"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Save validates and persists a template for a product. An existing link for
// the product is updated in place; otherwise a new option set and link are
// created. The whole write runs in one transaction.
func (s *service) Save(ctx context.Context, input SaveInput) (*SaveResult, error) {
	productID := CleanProductID(input.ProductID)
	if productID == "" {
		return nil, errors.New(errors.CodeValidation, "product id is required")
	}
	if _, err := Decode(input.Template); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "template payload is invalid")
	}

	name := input.TemplateName
	if name == "" {
		name = fmt.Sprintf("Personalization for product %s", productID)
	}

	ctx = s.logg.WithProductID(ctx, productID)
	result := &SaveResult{}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		link, err := repo.FindLinkByProduct(ctx, productID)
		if err != nil {
			return err
		}

		if link != nil && link.OptionSet != nil {
			set := link.OptionSet
			set.Name = name
			set.Fields = string(input.Template)
			set.IsActive = true
			if err := repo.UpdateOptionSet(ctx, set); err != nil {
				return err
			}
			link.ProductTitle = input.ProductTitle
			link.ProductHandle = input.ProductHandle
			link.IsActive = true
			if err := repo.UpdateLink(ctx, link); err != nil {
				return err
			}
			result.OptionSetID = set.ID
			result.LinkID = link.ID
			return nil
		}

		set := &models.OptionSet{
			ID:       uuid.New(),
			Name:     name,
			Fields:   string(input.Template),
			IsActive: true,
		}
		if err := repo.CreateOptionSet(ctx, set); err != nil {
			return err
		}
		newLink := &models.ProductOptionSet{
			ID:            uuid.New(),
			ProductID:     productID,
			ProductTitle:  input.ProductTitle,
			ProductHandle: input.ProductHandle,
			OptionSetID:   set.ID,
			IsActive:      true,
		}
		if err := repo.CreateLink(ctx, newLink); err != nil {
			return err
		}
		result.OptionSetID = set.ID
		result.LinkID = newLink.ID
		result.Created = true
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, errors.Wrap(errors.CodeConflict, err, "another template is already active for this product")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "saving template")
	}

	s.invalidateProduct(productID)
	s.logg.Info(ctx, "template saved")
	return result, nil
}

// Load fetches and decodes the active template for a product.
func (s *service) Load(ctx context.Context, productID string) (*LoadResult, error) {
	productID = CleanProductID(productID)
	if productID == "" {
		return nil, errors.New(errors.CodeValidation, "product id is required")
	}

	link, err := s.repo.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading template")
	}
	if link == nil || link.OptionSet == nil || !link.OptionSet.IsActive {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("no template for product %s", productID))
	}

	tmpl, err := Decode([]byte(link.OptionSet.Fields))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "stored template is malformed")
	}
	tmpl.ProductID = productID

	return &LoadResult{
		OptionSetID: link.OptionSetID,
		Name:        link.OptionSet.Name,
		Template:    tmpl,
		UpdatedAt:   link.OptionSet.UpdatedAt,
	}, nil
}

// List returns option set summaries for the admin, cached for the first page.
func (s *service) List(ctx context.Context, params pagination.Params) ([]Summary, *pagination.Cursor, error) {
	firstPage := params.Cursor == "" && params.Limit <= 0
	if firstPage {
		if cached, ok := s.cache.Get(cache.TemplatesKey()); ok {
			if summaries, ok := cached.([]Summary); ok {
				return summaries, nil, nil
			}
		}
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	sets, next, err := s.repo.ListOptionSets(ctx, ListOptionSetsQuery{
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeInternal, err, "listing templates")
	}

	summaries := make([]Summary, 0, len(sets))
	for _, set := range sets {
		summaries = append(summaries, Summary{
			OptionSetID: set.ID,
			Name:        set.Name,
			IsActive:    set.IsActive,
			CreatedAt:   set.CreatedAt,
			UpdatedAt:   set.UpdatedAt,
		})
	}

	if firstPage && next == nil {
		s.cache.Set(cache.TemplatesKey(), summaries, 0)
	}
	return summaries, next, nil
}

// Deactivate turns off personalization for a product without deleting its
// stored design.
func (s *service) Deactivate(ctx context.Context, productID string) error {
	productID = CleanProductID(productID)
	if productID == "" {
		return errors.New(errors.CodeValidation, "product id is required")
	}

	link, err := s.repo.FindActiveByProduct(ctx, productID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deactivating template")
	}
	if link == nil {
		return errors.New(errors.CodeNotFound, fmt.Sprintf("no active template for product %s", productID))
	}
	if err := s.repo.DeactivateLinksForProduct(ctx, productID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deactivating template")
	}

	s.invalidateProduct(productID)
	s.logg.Info(s.logg.WithProductID(ctx, productID), "template deactivated")
	return nil
}

func (s *service) invalidateProduct(productID string) {
	s.cache.Delete(cache.ProductOptionsKey(productID))
	s.cache.Delete(cache.TemplatesKey())
}
