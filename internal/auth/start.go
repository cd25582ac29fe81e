package auth

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// ShopDomainRegexp matches "<label>.<myShopifyDomain>" case-insensitively.
func ShopDomainRegexp(myShopifyDomain string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9\-]*[a-z0-9]\.` + regexp.QuoteMeta(myShopifyDomain) + `$`)
}

func (a *ShopifyAuth) ValidShop(shop string) bool {
	return shop != "" && a.shopRe.MatchString(shop)
}

// OAuthStart validates the shop, issues a fresh nonce and redirects to the shop's
// authorize page.
func (a *ShopifyAuth) OAuthStart(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if !a.ValidShop(shop) {
		writeAuthError(w, r, a.log, ShopParamMissing, shop)
		return
	}

	a.cookies.Destroy(w, TopLevelOAuthCookie)

	nonce, err := a.newNonce()
	if err != nil {
		a.log.ErrorContext(r.Context(), "oauth start: generate nonce", "shopOrigin", shop, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	a.cookies.Set(w, NonceCookie, nonce)
	oauthResults.WithLabelValues(resultStarted).Inc()

	http.Redirect(w, r, "https://"+shop+"/admin/oauth/authorize?"+a.authorizeQuery(nonce), http.StatusFound)
}

// authorizeQuery keeps Shopify's parameter order; keys are constants and left as-is.
func (a *ShopifyAuth) authorizeQuery(nonce string) string {
	params := [][2]string{
		{"state", nonce},
		{"scope", strings.Join(a.opts.Scopes, ", ")},
		{"client_id", a.opts.APIKey},
		{"redirect_uri", "https://" + a.opts.AppURL + a.CallbackPath()},
	}
	if a.opts.AccessMode == AccessModeOnline {
		params = append(params, [2]string{"grant_options[]", "per-user"})
	}

	var b strings.Builder
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}
