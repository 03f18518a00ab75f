package storefront

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/craftlane/personalizer-backend/internal/template"
	"github.com/craftlane/personalizer-backend/pkg/cache"
	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Service is the storefront-facing personalization surface.
type Service interface {
	TemplateForProduct(ctx context.Context, productID string) (*TemplateResult, error)
	Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error)
	CartProperties(ctx context.Context, req CartRequest) (*CartResult, error)
}

// ServiceParams groups dependencies for the storefront service.
type ServiceParams struct {
	Templates template.Repository
	Repo      Repository
	Cache     *cache.Memory
	Logger    *logger.Logger
	Metrics   *metrics.PreviewMetrics
	// TemplateTTL bounds how stale a cached storefront template may be.
	TemplateTTL time.Duration
	Now         func() time.Time
}

type service struct {
	templates   template.Repository
	repo        Repository
	cache       *cache.Memory
	logg        *logger.Logger
	metrics     *metrics.PreviewMetrics
	templateTTL time.Duration
	now         func() time.Time
}

// NewService builds a storefront service.
func NewService(params ServiceParams) (Service, error) {
	if params.Templates == nil {
		return nil, stdErrors.New("template repository is required")
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
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		templates:   params.Templates,
		repo:        params.Repo,
		cache:       params.Cache,
		logg:        params.Logger,
		metrics:     params.Metrics,
		templateTTL: params.TemplateTTL,
		now:         now,
	}, nil
}

// TemplateResult is what the storefront widget boots from. HasTemplate is
// false when the product has no active template or its stored design cannot
// be decoded; the widget simply stays hidden in both cases.
type TemplateResult struct {
	HasTemplate      bool
	Name             string
	Template         *template.Template
	AdditionalCharge decimal.Decimal
}

// PreviewRequest is a stateless recompute: the widget posts all current
// inputs and receives the rendered view back.
type PreviewRequest struct {
	ProductID string
	Inputs    []Input
	Scale     float64
}

// PreviewResult pairs the rendered view with the submission it implies, so
// the widget can keep its hidden cart fields in sync with what is shown.
type PreviewResult struct {
	View       View       `json:"view"`
	Submission Submission `json:"submission"`
}

// CartRequest serializes a finished personalization for add-to-cart.
type CartRequest struct {
	ProductID      string
	Submission     Submission
	PendingUploads int
}

// CartResult carries the line-item properties plus a warning signal when
// uploads were still in flight at serialization time.
type CartResult struct {
	Properties     map[string]string `json:"properties"`
	PendingUploads int               `json:"pending_uploads"`
}

// TemplateForProduct loads the active template for a product, serving from
// cache when possible. Malformed stored templates are logged and reported as
// "no template" so the product page never breaks.
func (s *service) TemplateForProduct(ctx context.Context, productID string) (*TemplateResult, error) {
	productID = template.CleanProductID(productID)
	if productID == "" {
		return nil, errors.New(errors.CodeValidation, "product id is required")
	}
	ctx = s.logg.WithProductID(ctx, productID)

	key := cache.ProductOptionsKey(productID)
	if cached, ok := s.cache.Get(key); ok {
		if result, ok := cached.(*TemplateResult); ok {
			s.metrics.IncCacheHit()
			return result, nil
		}
	}
	s.metrics.IncCacheMiss()

	link, err := s.templates.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading storefront template")
	}

	result := &TemplateResult{}
	if link != nil && link.OptionSet != nil && link.OptionSet.IsActive {
		tmpl, err := template.Decode([]byte(link.OptionSet.Fields))
		if err != nil {
			s.logg.Error(ctx, "stored template is malformed, hiding widget", err)
		} else {
			tmpl.ProductID = productID
			result.HasTemplate = true
			result.Name = link.OptionSet.Name
			result.Template = tmpl
			result.AdditionalCharge = tmpl.AdditionalCharge
		}
	}

	s.cache.Set(key, result, s.templateTTL)
	return result, nil
}

// Preview recomputes the rendered view for the posted inputs. Debouncing is a
// client concern; the server applies every input and renders once.
func (s *service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	result, err := s.TemplateForProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !result.HasTemplate {
		return nil, errors.New(errors.CodeNotFound, "no template for product")
	}

	engine := NewEngine(*result.Template, EngineOptions{Scale: req.Scale})
	defer engine.Stop()
	for _, in := range req.Inputs {
		engine.HandleChange(in)
	}
	s.metrics.IncRecompute()

	return &PreviewResult{
		View:       engine.View(),
		Submission: engine.Submission(),
	}, nil
}

// CartProperties serializes the submission into line-item properties and
// records it for fulfillment. The record write is best effort; a failed
// insert never blocks add-to-cart.
func (s *service) CartProperties(ctx context.Context, req CartRequest) (*CartResult, error) {
	result, err := s.TemplateForProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !result.HasTemplate {
		return nil, errors.New(errors.CodeNotFound, "no template for product")
	}

	now := s.now()
	serialized, err := req.Submission.Serialize(now)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "serializing submission")
	}

	record := &models.CustomerPersonalization{
		ProductID:   template.CleanProductID(req.ProductID),
		Submission:  serialized,
		SubmittedAt: now.UTC(),
	}
	if err := s.repo.CreatePersonalization(ctx, record); err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, record.ProductID), "recording personalization failed", err)
	}

	if req.PendingUploads > 0 {
		s.logg.Warn(s.logg.WithProductID(ctx, record.ProductID), "submission serialized with uploads still in flight")
	}

	return &CartResult{
		Properties:     CartProperties(serialized, result.AdditionalCharge),
		PendingUploads: req.PendingUploads,
	}, nil
}
