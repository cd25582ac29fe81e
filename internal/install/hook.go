package install

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/capsule-corp/now-shopify-auth/internal/audit"
	"github.com/capsule-corp/now-shopify-auth/internal/auth"
	"github.com/capsule-corp/now-shopify-auth/internal/shop"
	"github.com/capsule-corp/now-shopify-auth/pkg/shopify"
)

type ShopStore interface {
	Upsert(ctx context.Context, domain, accessToken, scope string) (*shop.Shop, error)
	SetPlan(ctx context.Context, domain, plan string) error
}

// Hook is the AfterAuth implementation of this app: it stores the token, starts
// the browser session and lands the merchant on the app home.
type Hook struct {
	Shops      ShopStore
	Cookies    auth.CookieStore
	HTTPClient *http.Client
	APIVersion string
	HomePath   string

	// PublicBaseURL enables app/uninstalled registration when set.
	PublicBaseURL string

	// Audit is optional.
	Audit  audit.Recorder
	Logger *slog.Logger
}

func (h Hook) AfterAuth(w http.ResponseWriter, r *http.Request, p auth.AfterAuthParams) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx := r.Context()

	s, err := h.Shops.Upsert(ctx, p.ShopOrigin, p.ShopifyToken, p.Scope)
	if err != nil {
		logger.ErrorContext(ctx, "save shop", "shopOrigin", p.ShopOrigin, "error", err)
		http.Error(w, "failed to save shop", http.StatusInternalServerError)
		return
	}

	client := shopify.Client{
		HTTPClient:  h.HTTPClient,
		ShopDomain:  p.ShopOrigin,
		AccessToken: p.ShopifyToken,
		APIVersion:  h.APIVersion,
	}
	if info, err := client.GetShop(ctx); err != nil {
		logger.WarnContext(ctx, "fetch shop plan", "shopOrigin", p.ShopOrigin, "error", err)
	} else if err := h.Shops.SetPlan(ctx, p.ShopOrigin, info.PlanName); err != nil {
		logger.WarnContext(ctx, "save shop plan", "shopOrigin", p.ShopOrigin, "error", err)
	}

	if base := strings.TrimRight(strings.TrimSpace(h.PublicBaseURL), "/"); base != "" {
		if _, err := client.CreateWebhook(ctx, "app/uninstalled", base+"/webhooks/shopify/app_uninstalled"); err != nil {
			// Reinstalls hit "already exists"; the subscription from the first install still holds.
			logger.WarnContext(ctx, "register app/uninstalled webhook", "shopOrigin", p.ShopOrigin, "error", err)
		}
	}

	if h.Audit != nil {
		meta := map[string]string{"scope": p.Scope, "shopId": s.ID}
		if err := h.Audit.Record(ctx, s.Domain, audit.ActionInstalled, audit.ActorMerchant, meta); err != nil {
			logger.WarnContext(ctx, "audit install", "shopOrigin", s.Domain, "error", err)
		}
	}

	h.Cookies.Set(w, auth.ShopOriginCookie, s.Domain)
	h.Cookies.Set(w, auth.ShopifyTokenCookie, p.ShopifyToken)
	h.Cookies.Set(w, auth.ShopSettingsIDCookie, s.ID)

	home := h.HomePath
	if home == "" {
		home = "/"
	}
	logger.InfoContext(ctx, "shop installed", "shopOrigin", s.Domain, "shopId", s.ID)
	http.Redirect(w, r, home+"?"+url.Values{"shop": {s.Domain}}.Encode(), http.StatusFound)
}
