package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/craftlane/personalizer-backend/api/controllers"
	"github.com/craftlane/personalizer-backend/api/middleware"
	"github.com/craftlane/personalizer-backend/internal/catalog"
	"github.com/craftlane/personalizer-backend/internal/storefront"
	"github.com/craftlane/personalizer-backend/internal/template"
	"github.com/craftlane/personalizer-backend/pkg/config"
	"github.com/craftlane/personalizer-backend/pkg/db"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/redis"
)

// NewRouter wires every HTTP surface: health probes, the admin API behind
// shop-context and idempotency middleware, and the public storefront API
// behind per-IP rate limiting.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	templateService template.Service,
	catalogService catalog.Service,
	storefrontService storefront.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	storefrontPolicy := middleware.NewRateLimitPolicy(
		"storefront",
		cfg.Storefront.RateLimitWindow,
		cfg.Storefront.RateLimitPerIP,
	)

	var cachePinger db.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(
			middleware.AdminCORS(cfg.App.AdminOrigins),
			middleware.ShopContext(logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Get("/ping", controllers.AdminPing())

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", controllers.AdminSaveTemplate(templateService, logg))
			r.Get("/", controllers.AdminListTemplates(templateService, logg))
			r.Get("/{productID}", controllers.AdminLoadTemplate(templateService, logg))
			r.Delete("/{productID}", controllers.AdminDeactivateTemplate(templateService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(catalogService, logg))
			r.Post("/sync", controllers.AdminSyncProducts(catalogService, logg))
		})
	})

	r.Route("/api/v1/storefront", func(r chi.Router) {
		r.Use(middleware.StorefrontCORS())

		r.Route("/products/{productID}", func(r chi.Router) {
			// Inside this group the product id is already routed, so the
			// limiter can scope its counters per IP and product.
			r.Use(middleware.RateLimit(storefrontPolicy, redisClient, logg))

			r.Get("/template", controllers.StorefrontTemplate(storefrontService, logg))
			r.Post("/preview", controllers.StorefrontPreview(storefrontService, logg))
			r.Post("/cart-properties", controllers.StorefrontCartProperties(storefrontService, logg))
		})
	})

	return r
}
