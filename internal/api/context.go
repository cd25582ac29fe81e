package api

import (
	"context"

	"github.com/capsule-corp/now-shopify-auth/internal/shop"
)

type ctxKey string

const ctxKeyShop ctxKey = "shop"

func WithShop(ctx context.Context, s *shop.Shop) context.Context {
	return context.WithValue(ctx, ctxKeyShop, s)
}

// ShopFromContext returns the shop set by ShopifySessionAuth, or nil.
func ShopFromContext(ctx context.Context) *shop.Shop {
	s, _ := ctx.Value(ctxKeyShop).(*shop.Shop)
	return s
}
