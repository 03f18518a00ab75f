package controllers

import (
	"net/http"

	"github.com/craftlane/personalizer-backend/api/middleware"
	"github.com/craftlane/personalizer-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "admin", "status": "ok"}
		if shop := middleware.ShopDomainFromContext(r.Context()); shop != "" {
			payload["shop_domain"] = shop
		}
		responses.WriteSuccess(w, payload)
	}
}
