package middleware

import (
	"net/http"
	"strings"

	"github.com/craftlane/personalizer-backend/api/responses"
	pkgerrors "github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
)

const shopDomainHeader = "X-Shop-Domain"

// ShopContext reads the shop domain header and injects it into the request
// context. Admin routes refuse requests without it.
func ShopContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shopDomain := strings.TrimSpace(r.Header.Get(shopDomainHeader))
			if shopDomain == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing"))
				return
			}

			ctx := WithShopDomain(r.Context(), shopDomain)
			if logg != nil {
				ctx = logg.WithShopDomain(ctx, shopDomain)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
