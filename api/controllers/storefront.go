package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/craftlane/personalizer-backend/api/responses"
	"github.com/craftlane/personalizer-backend/api/validators"
	"github.com/craftlane/personalizer-backend/internal/storefront"
	"github.com/craftlane/personalizer-backend/internal/template"
	pkgerrors "github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
)

type storefrontTemplateResponse struct {
	HasTemplate      bool            `json:"has_template"`
	Name             string          `json:"name,omitempty"`
	Template         json.RawMessage `json:"template,omitempty"`
	AdditionalCharge string          `json:"additional_charge,omitempty"`
}

type previewRequest struct {
	Inputs []storefront.Input `json:"inputs"`
	Scale  float64            `json:"scale,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type cartPropertiesRequest struct {
	Submission     storefront.Submission `json:"submission"`
	PendingUploads int                   `json:"pending_uploads,omitempty" validate:"omitempty,min=0"`
}

// StorefrontTemplate tells the widget whether a product has an active
// template and, when it does, ships the decoded template along.
func StorefrontTemplate(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront service unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		result, err := svc.TemplateForProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := storefrontTemplateResponse{HasTemplate: result.HasTemplate}
		if result.HasTemplate && result.Template != nil {
			encoded, encodeErr := template.Encode(*result.Template)
			if encodeErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, encodeErr, "encode template"))
				return
			}
			resp.Name = result.Name
			resp.Template = encoded
			if result.AdditionalCharge.IsPositive() {
				resp.AdditionalCharge = result.AdditionalCharge.String()
			}
		}
		responses.WriteSuccess(w, resp)
	}
}

// StorefrontPreview recomputes the rendered preview from the widget's full
// input state.
func StorefrontPreview(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront service unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		var payload previewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Preview(r.Context(), storefront.PreviewRequest{
			ProductID: productID,
			Inputs:    payload.Inputs,
			Scale:     payload.Scale,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// StorefrontCartProperties serializes a finished personalization into the
// line-item properties the widget writes into the cart form.
func StorefrontCartProperties(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront service unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		var payload cartPropertiesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CartProperties(r.Context(), storefront.CartRequest{
			ProductID:      productID,
			Submission:     payload.Submission,
			PendingUploads: payload.PendingUploads,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
