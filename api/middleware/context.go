package middleware

import "context"

type contextKey string

const ctxShopDomain contextKey = "shop_domain"

func ShopDomainFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxShopDomain).(string); ok {
		return v
	}
	return ""
}

// WithShopDomain injects the shop domain into the context for downstream
// handlers.
func WithShopDomain(ctx context.Context, shopDomain string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxShopDomain, shopDomain)
}
