package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/capsule-corp/now-shopify-auth/internal/api"
	"github.com/capsule-corp/now-shopify-auth/internal/audit"
)

type ShopDeleter interface {
	DeleteByDomain(ctx context.Context, domain string) error
}

// Handler receives lifecycle webhooks. Uninstalls and shop redaction drop the
// stored token so the next visit goes through OAuth again.
type Handler struct {
	Secret string
	Shops  ShopDeleter
	Audit  audit.Recorder // optional
	Logger *slog.Logger
}

const maxBody = 1 << 20

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Prefer Shopify's topic header; fall back to route param.
	topic := strings.TrimSpace(r.Header.Get("X-Shopify-Topic"))
	if topic == "" {
		topic = chi.URLParam(r, "topic")
	}
	topic = NormalizeTopic(topic)
	shopDomain := strings.TrimSpace(r.Header.Get("X-Shopify-Shop-Domain"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	if !VerifyShopifyWebhook(body, strings.TrimSpace(r.Header.Get("X-Shopify-Hmac-Sha256")), h.Secret) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook signature")
		return
	}

	switch topic {
	case TopicAppUninstalled, TopicShopRedact:
		if shopDomain == "" {
			break
		}
		if err := h.Shops.DeleteByDomain(r.Context(), shopDomain); err != nil {
			logger.ErrorContext(r.Context(), "webhook delete shop", "topic", topic, "shopOrigin", shopDomain, "error", err)
			// Non-2xx makes Shopify retry.
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		logger.InfoContext(r.Context(), "shop removed", "topic", topic, "shopOrigin", shopDomain)
		if h.Audit != nil {
			action := audit.ActionUninstalled
			if topic == TopicShopRedact {
				action = audit.ActionRedacted
			}
			meta := map[string]string{"webhookId": r.Header.Get("X-Shopify-Webhook-Id")}
			if err := h.Audit.Record(r.Context(), shopDomain, action, audit.ActorShopify, meta); err != nil {
				logger.WarnContext(r.Context(), "audit webhook", "topic", topic, "shopOrigin", shopDomain, "error", err)
			}
		}
	default:
		// Unknown topic: accept (no retries).
	}

	w.WriteHeader(http.StatusOK)
}
