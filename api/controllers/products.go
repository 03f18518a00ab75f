package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/craftlane/personalizer-backend/api/middleware"
	"github.com/craftlane/personalizer-backend/api/responses"
	"github.com/craftlane/personalizer-backend/api/validators"
	"github.com/craftlane/personalizer-backend/internal/catalog"
	pkgerrors "github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
)

type productView struct {
	ID          string   `json:"id"`
	ExternalID  string   `json:"external_id"`
	Title       string   `json:"title"`
	Handle      string   `json:"handle"`
	Vendor      string   `json:"vendor,omitempty"`
	Status      string   `json:"status"`
	ImageURLs   []string `json:"image_urls"`
	HasTemplate bool     `json:"has_template"`
	UpdatedAt   string   `json:"updated_at"`
}

type listProductsResponse struct {
	Products   []productView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func toProductView(row catalog.ProductRow) productView {
	return productView{
		ID:          row.ID.String(),
		ExternalID:  row.ExternalID,
		Title:       row.Title,
		Handle:      row.Handle,
		Vendor:      row.Vendor,
		Status:      row.Status,
		ImageURLs:   row.ImageURLs,
		HasTemplate: row.HasTemplate,
		UpdatedAt:   row.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type syncProductsRequest struct {
	Products []catalog.SyncProduct `json:"products" validate:"required,min=1,dive"`
}

type syncProductsResponse struct {
	Synced int `json:"synced"`
}

// AdminListProducts returns the shop's product catalog with a has_template
// flag per row so the picker can badge configured products.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		shopDomain := middleware.ShopDomainFromContext(r.Context())
		if shopDomain == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.ListParams{
			ShopDomain: shopDomain,
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), 255),
			Vendor:     validators.SanitizeString(r.URL.Query().Get("vendor"), 255),
			Status:     validators.SanitizeString(r.URL.Query().Get("status"), 32),
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		rows, next, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]productView, 0, len(rows))
		for _, row := range rows {
			views = append(views, toProductView(row))
		}

		resp := listProductsResponse{Products: views}
		if next != nil {
			resp.NextCursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminSyncProducts upserts a batch of products pushed from the shop.
func AdminSyncProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		shopDomain := middleware.ShopDomainFromContext(r.Context())
		if shopDomain == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing"))
			return
		}

		var payload syncProductsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.Sync(r.Context(), shopDomain, payload.Products)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, syncProductsResponse{Synced: count})
	}
}
