package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/craftlane/personalizer-backend/api/responses"
	"github.com/craftlane/personalizer-backend/api/validators"
	"github.com/craftlane/personalizer-backend/internal/template"
	pkgerrors "github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
)

type saveTemplateRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	ProductTitle  string          `json:"product_title,omitempty"`
	ProductHandle string          `json:"product_handle,omitempty"`
	TemplateName  string          `json:"template_name,omitempty"`
	Template      json.RawMessage `json:"template" validate:"required"`
}

type saveTemplateResponse struct {
	OptionSetID uuid.UUID `json:"option_set_id"`
	LinkID      uuid.UUID `json:"link_id"`
	Created     bool      `json:"created"`
}

type loadTemplateResponse struct {
	OptionSetID uuid.UUID       `json:"option_set_id"`
	Name        string          `json:"name"`
	Template    json.RawMessage `json:"template"`
	UpdatedAt   string          `json:"updated_at"`
}

type listTemplatesResponse struct {
	Templates  []template.Summary `json:"templates"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// AdminSaveTemplate creates or replaces the personalization template for a
// product.
func AdminSaveTemplate(svc template.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		var payload saveTemplateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Save(r.Context(), template.SaveInput{
			ProductID:     payload.ProductID,
			ProductTitle:  validators.SanitizeString(payload.ProductTitle, 255),
			ProductHandle: validators.SanitizeString(payload.ProductHandle, 255),
			TemplateName:  validators.SanitizeString(payload.TemplateName, 255),
			Template:      payload.Template,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, saveTemplateResponse{
			OptionSetID: result.OptionSetID,
			LinkID:      result.LinkID,
			Created:     result.Created,
		})
	}
}

// AdminLoadTemplate returns the stored template for the editor to resume.
func AdminLoadTemplate(svc template.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		result, err := svc.Load(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		encoded, err := template.Encode(*result.Template)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode template"))
			return
		}

		responses.WriteSuccess(w, loadTemplateResponse{
			OptionSetID: result.OptionSetID,
			Name:        result.Name,
			Template:    encoded,
			UpdatedAt:   result.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
}

// AdminListTemplates returns the paginated template listing.
func AdminListTemplates(svc template.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		summaries, next, err := svc.List(r.Context(), pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := listTemplatesResponse{Templates: summaries}
		if next != nil {
			resp.NextCursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminDeactivateTemplate removes the personalization widget from a product
// without deleting the stored template.
func AdminDeactivateTemplate(svc template.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		if err := svc.Deactivate(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
