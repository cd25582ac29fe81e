package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/capsule-corp/now-shopify-auth/internal/shop"
	"github.com/capsule-corp/now-shopify-auth/pkg/shopify"
)

type ShopFinder interface {
	FindByDomain(ctx context.Context, domain string) (*shop.Shop, error)
}

// ShopifySessionAuth validates App Bridge session tokens on API calls made from
// the embedded admin and attaches the installed shop to the context.
//
// Expected header:
// - Authorization: Bearer <JWT>
func ShopifySessionAuth(apiKey, apiSecret string, shops ShopFinder, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
				return
			}

			vs, err := shopify.VerifySessionToken(strings.TrimSpace(authz[7:]), apiKey, apiSecret, time.Now())
			if err != nil {
				logger.InfoContext(r.Context(), "session token rejected", "error", err)
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}

			s, err := shops.FindByDomain(r.Context(), vs.ShopDomain)
			if errors.Is(err, shop.ErrNotFound) {
				// Installed shops always have a row; a missing one has to go through OAuth.
				w.Header().Set("X-Shopify-API-Request-Failure-Reauthorize", "1")
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "shop not installed")
				return
			}
			if err != nil {
				logger.ErrorContext(r.Context(), "load shop", "shopOrigin", vs.ShopDomain, "error", err)
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load shop")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithShop(r.Context(), s)))
		})
	}
}
