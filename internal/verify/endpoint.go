package verify

import (
	"encoding/json"
	"net/http"

	"github.com/capsule-corp/now-shopify-auth/internal/api"
	"github.com/capsule-corp/now-shopify-auth/internal/auth"
	"github.com/capsule-corp/now-shopify-auth/pkg/shopify"
)

// TokenStatus answers the delegated probe: it reads the session cookies, probes
// the shop directly and replies 401 when there is nothing valid to vouch for.
func (v Verifier) TokenStatus(w http.ResponseWriter, r *http.Request) {
	cookies := v.cookies()
	shop := cookies.Get(r, auth.ShopOriginCookie)
	token := cookies.Get(r, auth.ShopifyTokenCookie)
	if shop == "" || token == "" {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing shop session")
		return
	}
	if !v.validShop(shop) {
		v.logger().WarnContext(r.Context(), "verify-token: invalid shopOrigin cookie", "shopOrigin", shop)
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid shop")
		return
	}

	c := shopify.Client{HTTPClient: v.HTTPClient, ShopDomain: shop, AccessToken: token}
	status, err := c.ProbeToken(r.Context())
	if err != nil {
		v.logger().WarnContext(r.Context(), "verify-token probe failed", "shopOrigin", shop, "error", err)
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "could not verify access token")
		return
	}
	if status == http.StatusUnauthorized {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "access token rejected")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"shopOrigin": shop, "status": "ok"})
}
